// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 是整个进程的显式配置。
// 所有组件都在组装根处从这里取值，不允许散落的全局读取
type Config struct {
	App   AppConfig   `yaml:"app"`
	Infra InfraConfig `yaml:"infra"`
}

type AppConfig struct {
	ServiceName string `yaml:"serviceName"`
	Port        int    `yaml:"port"`
	// Salt 是派生秒杀口令的进程级盐值，启动后不可变
	Salt string `yaml:"salt"`
}

type InfraConfig struct {
	Mysql  MysqlConfig  `yaml:"mysql"`
	Redis  RedisConfig  `yaml:"redis"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Jaeger JaegerConfig `yaml:"jaeger"`
	Nacos  NacosConfig  `yaml:"nacos"`
}

type MysqlConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	NotificationTopic string   `yaml:"notificationTopic"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type NacosConfig struct {
	ServerAddrs string `yaml:"serverAddrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

var (
	currentConfig *Config
	configOnce    sync.Once
)

// Init 从 CONFIG_PATH 指向的 YAML 文件加载配置，个别敏感项允许环境变量覆盖。
// 配置加载失败直接终止进程：没有配置的服务起不来比带错误配置跑起来要好
func Init() {
	configOnce.Do(func() {
		path := getEnv("CONFIG_PATH", "configs/config.yaml")
		cfg, err := loadConfig(path)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		currentConfig = cfg
	})
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.App.Salt == "" {
		return nil, fmt.Errorf("app.salt is required (or set SECKILL_SALT)")
	}
	return cfg, nil
}

// GetCurrentConfig 返回进程配置，必须在 Init 之后调用
func GetCurrentConfig() *Config {
	if currentConfig == nil {
		log.Fatalf("FATAL: bootstrap.Init must be called before GetCurrentConfig")
	}
	return currentConfig
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			ServiceName: "seckill-service",
			Port:        8080,
		},
		Infra: InfraConfig{
			Mysql:  MysqlConfig{DSN: "root:root@tcp(localhost:3306)/seckill?charset=utf8mb4&parseTime=True&loc=Local"},
			Redis:  RedisConfig{Addr: "localhost:6379"},
			Kafka:  KafkaConfig{Brokers: []string{"localhost:9092"}, NotificationTopic: "seckill-notifications"},
			Jaeger: JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
			Nacos:  NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
		},
	}
}

// applyEnvOverrides 允许部署环境覆盖个别配置项，优先级高于文件
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("SECKILL_SALT"); ok {
		cfg.App.Salt = v
	}
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		cfg.Infra.Mysql.DSN = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("NACOS_SERVER_ADDRS"); ok {
		cfg.Infra.Nacos.ServerAddrs = v
	}
}

// getEnv 从环境变量中读取配置，读不到时使用缺省值
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
