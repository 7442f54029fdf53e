// internal/service/seckill/application/admission.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"seckill/internal/service/seckill/domain"
	"seckill/internal/service/seckill/token"
)

// AdmissionService 决定一个秒杀当前是否可以参与，可以参与时派发口令。
// 商品读取走两级 ItemReader（缓存 + 存储），所以暴露判断可能基于一份
// 略旧的快照；这只会影响暴露决策，购买本身总是在事务内重新校验
type AdmissionService struct {
	items  domain.ItemReader
	tokens *token.Generator
	tracer trace.Tracer
	now    func() time.Time
}

// NewAdmissionService 创建一个新的准入服务实例
func NewAdmissionService(items domain.ItemReader, tokens *token.Generator) *AdmissionService {
	return &AdmissionService{
		items:  items,
		tokens: tokens,
		tracer: otel.Tracer("seckill-admission"),
		now:    time.Now,
	}
}

// Expose 输出秒杀接口的暴露结果。
// 商品不存在 -> 不暴露且不带时间信息；不在窗口内 -> 不暴露但带上
// now/start/end；否则暴露并派发口令。除了缓存回填外没有任何副作用
func (s *AdmissionService) Expose(ctx context.Context, seckillID int64) (*Exposer, error) {
	ctx, span := s.tracer.Start(ctx, "admission.Expose")
	defer span.End()
	span.SetAttributes(attribute.Int64("seckill.id", seckillID))

	item, err := s.items.QueryByID(ctx, seckillID)
	if err != nil {
		if errors.Is(err, domain.ErrSeckillNotFound) {
			span.AddEvent("seckill not found")
			return &Exposer{Exposed: false, SeckillID: seckillID}, nil
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, "query seckill")
	}

	now := s.now()
	if !item.WithinWindow(now) {
		span.AddEvent("seckill window closed")
		return &Exposer{
			Exposed:   false,
			SeckillID: seckillID,
			Now:       now.UnixMilli(),
			Start:     item.StartTime.UnixMilli(),
			End:       item.EndTime.UnixMilli(),
		}, nil
	}

	return &Exposer{
		Exposed:   true,
		SeckillID: seckillID,
		MD5:       s.tokens.Derive(seckillID),
	}, nil
}
