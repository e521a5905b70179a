// internal/pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 聚合了所有服务共享的配置。
// 配置优先级: 环境变量 > YAML 配置文件 > 默认值。
type Config struct {
	App   AppConfig   `yaml:"app"`
	Infra InfraConfig `yaml:"infra"`
}

type AppConfig struct {
	// InventoryTimeout 是一次库存查询调用的最长等待时间。
	InventoryTimeout time.Duration `yaml:"inventoryTimeout"`
	// InventoryRetries 是库存服务连接失败时的额外重试次数（不含首次调用）。
	InventoryRetries int `yaml:"inventoryRetries"`
	// InventoryRetryBackoff 是两次重试之间的基础退避时间。
	InventoryRetryBackoff time.Duration `yaml:"inventoryRetryBackoff"`
}

type InfraConfig struct {
	Jaeger JaegerConfig `yaml:"jaeger"`
	Nacos  NacosConfig  `yaml:"nacos"`
	Mysql  MysqlConfig  `yaml:"mysql"`
	Redis  RedisConfig  `yaml:"redis"`
	Kafka  KafkaConfig  `yaml:"kafka"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type NacosConfig struct {
	ServerAddrs string `yaml:"serverAddrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

type MysqlConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type KafkaConfig struct {
	Brokers          []string `yaml:"brokers"`
	OrderEventsTopic string   `yaml:"orderEventsTopic"`
}

var current atomic.Pointer[Config]

// Init 加载配置并生成全局快照。必须在 Get 之前调用一次（通常在 bootstrap 中）。
func Init() error {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	current.Store(cfg)
	return nil
}

// Get 返回当前的配置快照。
func Get() *Config {
	if c := current.Load(); c != nil {
		return c
	}
	// 未显式 Init 时退化为默认值，方便单元测试
	cfg := defaults()
	applyEnvOverrides(cfg)
	current.Store(cfg)
	return current.Load()
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			InventoryTimeout:      2 * time.Second,
			InventoryRetries:      2,
			InventoryRetryBackoff: 100 * time.Millisecond,
		},
		Infra: InfraConfig{
			Jaeger: JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
			Nacos:  NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
			Mysql:  MysqlConfig{DSN: "root:root@tcp(localhost:3306)/webshop?charset=utf8mb4&parseTime=True&loc=Local"},
			Redis:  RedisConfig{Addr: "localhost:6379"},
			Kafka:  KafkaConfig{Brokers: []string{"localhost:9092"}, OrderEventsTopic: "order-events-topic"},
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Infra.Jaeger.Endpoint, "JAEGER_ENDPOINT")
	setString(&cfg.Infra.Nacos.ServerAddrs, "NACOS_SERVER_ADDRS")
	setString(&cfg.Infra.Nacos.Namespace, "NACOS_NAMESPACE")
	setString(&cfg.Infra.Nacos.Group, "NACOS_GROUP")
	setString(&cfg.Infra.Mysql.DSN, "MYSQL_DSN")
	setString(&cfg.Infra.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Infra.Kafka.OrderEventsTopic, "KAFKA_ORDER_EVENTS_TOPIC")
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("INVENTORY_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.App.InventoryTimeout = d
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}
