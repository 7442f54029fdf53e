// cmd/seckill-service/main.go
package main

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"seckill/internal/pkg/bootstrap"
	"seckill/internal/pkg/logger"
	"seckill/internal/pkg/mq"
	"seckill/internal/pkg/redis"
	"seckill/internal/service/seckill/application"
	"seckill/internal/service/seckill/infrastructure"
	"seckill/internal/service/seckill/infrastructure/adapter"
	"seckill/internal/service/seckill/infrastructure/cache"
	"seckill/internal/service/seckill/interfaces"
	"seckill/internal/service/seckill/token"
)

const serviceName = "seckill-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)

	// 持久存储
	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	store := infrastructure.NewGormInventoryStore(db)

	// 缓存与两级读取
	redisClient := redis.New(cfg.Infra.Redis.Addr)
	itemCache := cache.NewSeckillCache(redisClient)
	items := cache.NewCachedItemReader(itemCache, store)

	// 口令生成器，盐值来自进程配置
	tokens := token.NewGenerator(cfg.App.Salt)

	// 可选的单往返过程路径
	procedure, err := adapter.NewPurchaseProcedureAdapter(redisClient)
	if err != nil {
		log.Fatalf("failed to init purchase procedure adapter: %v", err)
	}

	// 成功通知
	writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.NotificationTopic)
	notifier := adapter.NewNotificationKafkaAdapter(writer)

	admission := application.NewAdmissionService(items, tokens)
	engine := application.NewExecutionEngine(store, tokens, procedure, notifier)
	query := application.NewQueryService(items, store)

	handler := interfaces.NewSeckillHandler(admission, engine, query)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})

	// StartService 返回即进入关停收尾
	if err := notifier.Close(); err != nil {
		log.Printf("Error closing kafka writer: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing redis client: %v", err)
	}
}
