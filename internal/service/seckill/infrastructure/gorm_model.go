// internal/service/seckill/infrastructure/gorm_model.go
package infrastructure

import "time"

// SeckillModel 对应数据库中的 seckill 表
type SeckillModel struct {
	SeckillID  int64     `gorm:"column:seckill_id;primaryKey"`
	Name       string    `gorm:"column:name;size:120;not null"`
	Number     int32     `gorm:"column:number;not null"`
	StartTime  time.Time `gorm:"column:start_time;not null"`
	EndTime    time.Time `gorm:"column:end_time;not null"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName 指定 GORM 应该使用的表名
func (SeckillModel) TableName() string {
	return "seckill"
}

// SuccessKilledModel 对应数据库中的 success_killed 表。
// (seckill_id, user_phone) 联合主键承担幂等约束
type SuccessKilledModel struct {
	SeckillID  int64     `gorm:"column:seckill_id;primaryKey"`
	UserPhone  int64     `gorm:"column:user_phone;primaryKey"`
	State      int16     `gorm:"column:state;not null;default:0"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName 指定 GORM 应该使用的表名
func (SuccessKilledModel) TableName() string {
	return "success_killed"
}
