// internal/pkg/config/config.go
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 聚合了所有服务共享的配置。
// 配置从 yaml 文件加载，个别关键项可以被环境变量覆盖，
// 方便在容器编排环境下按实例注入差异化配置。
type Config struct {
	App struct {
		Env string `yaml:"env"` // dev / staging / prod
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	Marketplace struct {
		// 挂牌有效期检查的延迟级别，对应 delay-scheduler 支持的延迟主题
		ListingExpiryDelayTopic string `yaml:"listingExpiryDelayTopic"`
		// 挂牌过期规则，CEL 表达式，可以在不发版的情况下调整
		ListingExpiryRule string `yaml:"listingExpiryRule"`
	} `yaml:"marketplace"`
}

// Load 从指定路径加载 yaml 配置并应用环境变量覆盖。
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 没有配置文件时完全依赖默认值 + 环境变量，便于本地快速启动
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default 返回一份指向本地基础设施的默认配置。
func Default() *Config {
	cfg := &Config{}
	cfg.App.Env = "dev"
	cfg.Infra.Mysql.DSN = "verdant:verdant@tcp(localhost:3306)/verdant?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Nacos.ServerAddrs = "localhost:8848"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	cfg.Marketplace.ListingExpiryDelayTopic = "delay-topic-10m"
	cfg.Marketplace.ListingExpiryRule = `now - listing.published_at >= duration("720h")`
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.Mysql.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ZK_SERVERS"); v != "" {
		cfg.Infra.Zookeeper.Servers = strings.Split(v, ",")
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Infra.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Infra.Nacos.Group = v
	}
}
