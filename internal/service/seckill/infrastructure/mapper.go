// internal/service/seckill/infrastructure/mapper.go
package infrastructure

import "seckill/internal/service/seckill/domain"

// 数据库模型与领域模型之间的转换函数

func toDomainSeckill(model *SeckillModel) *domain.Seckill {
	return &domain.Seckill{
		SeckillID:  model.SeckillID,
		Name:       model.Name,
		Number:     model.Number,
		StartTime:  model.StartTime,
		EndTime:    model.EndTime,
		CreateTime: model.CreateTime,
	}
}

func toDomainPurchase(model *SuccessKilledModel) *domain.PurchaseRecord {
	return &domain.PurchaseRecord{
		SeckillID:  model.SeckillID,
		UserPhone:  model.UserPhone,
		State:      model.State,
		CreateTime: model.CreateTime,
	}
}
