// internal/service/seckill/infrastructure/cache/codec.go
package cache

import (
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"seckill/internal/service/seckill/domain"
)

// 缓存条目采用 protobuf wire 格式编码，不走代码生成。
// 字段编号构成二进制模式的一部分，只增不改，否则旧缓存条目将无法解码
const (
	fieldSeckillID  = 1
	fieldName       = 2
	fieldNumber     = 3
	fieldStartTime  = 4 // 毫秒时间戳
	fieldEndTime    = 5
	fieldCreateTime = 6
)

// marshalSeckill 将秒杀商品编码为紧凑的二进制条目
func marshalSeckill(s *domain.Seckill) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSeckillID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.SeckillID))
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte(s.Name))
	b = protowire.AppendTag(b, fieldNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Number))
	b = protowire.AppendTag(b, fieldStartTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.StartTime.UnixMilli()))
	b = protowire.AppendTag(b, fieldEndTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.EndTime.UnixMilli()))
	b = protowire.AppendTag(b, fieldCreateTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.CreateTime.UnixMilli()))
	return b
}

// unmarshalSeckill 解码缓存条目，遇到未知字段跳过以保持前向兼容
func unmarshalSeckill(b []byte) (*domain.Seckill, error) {
	s := &domain.Seckill{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.New("cache entry: malformed tag")
		}
		b = b[n:]

		switch {
		case num == fieldName && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, errors.New("cache entry: malformed name field")
			}
			s.Name = string(v)
			b = b[n:]
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, errors.New("cache entry: malformed varint field")
			}
			b = b[n:]
			switch num {
			case fieldSeckillID:
				s.SeckillID = int64(v)
			case fieldNumber:
				s.Number = int32(v)
			case fieldStartTime:
				s.StartTime = time.UnixMilli(int64(v))
			case fieldEndTime:
				s.EndTime = time.UnixMilli(int64(v))
			case fieldCreateTime:
				s.CreateTime = time.UnixMilli(int64(v))
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, errors.New("cache entry: malformed field value")
			}
			b = b[n:]
		}
	}
	return s, nil
}
