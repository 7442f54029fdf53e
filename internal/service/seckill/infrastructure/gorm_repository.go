// internal/service/seckill/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seckill/internal/service/seckill/domain"
)

// GormInventoryStore 是 domain.InventoryStore 的 GORM + MySQL 实现。
// 防超卖不依赖应用层锁：条件扣减编译成单条 UPDATE，并发请求在
// MySQL 的行锁上排队，受影响行数告诉我们扣减是否真的发生了
type GormInventoryStore struct {
	db *gorm.DB
}

// NewGormInventoryStore 创建一个新的库存存储实例
func NewGormInventoryStore(db *gorm.DB) *GormInventoryStore {
	return &GormInventoryStore{db: db}
}

// QueryByID 按商品ID查询秒杀商品
func (r *GormInventoryStore) QueryByID(ctx context.Context, seckillID int64) (*domain.Seckill, error) {
	var model SeckillModel
	err := r.db.WithContext(ctx).Where("seckill_id = ?", seckillID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSeckillNotFound
		}
		return nil, errors.Wrap(err, "query seckill by id")
	}
	return toDomainSeckill(&model), nil
}

// QueryAll 按创建时间倒序分页查询秒杀商品
func (r *GormInventoryStore) QueryAll(ctx context.Context, offset, limit int) ([]*domain.Seckill, error) {
	var models []*SeckillModel
	err := r.db.WithContext(ctx).
		Order("create_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "query all seckills")
	}

	seckills := make([]*domain.Seckill, len(models))
	for i, m := range models {
		seckills[i] = toDomainSeckill(m)
	}
	return seckills, nil
}

// QueryPurchase 读取成功明细
func (r *GormInventoryStore) QueryPurchase(ctx context.Context, seckillID, userPhone int64) (*domain.PurchaseRecord, error) {
	return queryPurchase(ctx, r.db, seckillID, userPhone)
}

// InTransaction 在单个数据库事务内执行 fn。
// fn 返回错误或发生 panic 时 GORM 回滚整个事务，任何出口都不会留下
// 部分写入；fn 正常返回则提交
func (r *GormInventoryStore) InTransaction(ctx context.Context, fn func(tx domain.InventoryOps) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryOps{db: tx})
	})
}

// gormInventoryOps 把事务句柄包装成 domain.InventoryOps
type gormInventoryOps struct {
	db *gorm.DB
}

// InsertPurchaseIfAbsent 以 INSERT IGNORE 幂等写入成功明细。
// 唯一键冲突不报错，只表现为受影响行数为 0
func (o *gormInventoryOps) InsertPurchaseIfAbsent(ctx context.Context, seckillID, userPhone int64) (int64, error) {
	model := SuccessKilledModel{
		SeckillID: seckillID,
		UserPhone: userPhone,
		State:     0,
	}
	res := o.db.WithContext(ctx).Clauses(clause.Insert{Modifier: "IGNORE"}).Create(&model)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "insert success_killed")
	}
	return res.RowsAffected, nil
}

// ConditionalDecrement 单条原子 UPDATE：库存为正且 killTime 在窗口内
// 才扣减。两个并发请求在这里通过行锁串行化，最多只有库存数个成功
func (o *gormInventoryOps) ConditionalDecrement(ctx context.Context, seckillID int64, killTime time.Time) (int64, error) {
	res := o.db.WithContext(ctx).Model(&SeckillModel{}).
		Where("seckill_id = ? AND number > 0 AND start_time <= ? AND end_time > ?", seckillID, killTime, killTime).
		UpdateColumn("number", gorm.Expr("number - 1"))
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "reduce seckill number")
	}
	return res.RowsAffected, nil
}

// QueryPurchase 事务内读取成功明细
func (o *gormInventoryOps) QueryPurchase(ctx context.Context, seckillID, userPhone int64) (*domain.PurchaseRecord, error) {
	return queryPurchase(ctx, o.db, seckillID, userPhone)
}

func queryPurchase(ctx context.Context, db *gorm.DB, seckillID, userPhone int64) (*domain.PurchaseRecord, error) {
	var model SuccessKilledModel
	err := db.WithContext(ctx).
		Where("seckill_id = ? AND user_phone = ?", seckillID, userPhone).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, errors.Wrap(err, "query success_killed")
	}
	return toDomainPurchase(&model), nil
}
