package config

import (
	"os"
	"strings"

	commoncfg "github.com/bw-isys-53203/Module3/internal/common/config"
)

// 存储后端
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// 刷新通知方式
const (
	NotifyNone   = "none"
	NotifyMQTT   = "mqtt"
	NotifyStream = "stream"
)

// Config sleeplog 服务配置
type Config struct {
	HTTP struct {
		Addr string
	}
	// memory | redis | postgres；postgres 连接失败时回退到 memory
	StorageBackend string
	Database       commoncfg.DatabaseConfig
	Redis          commoncfg.RedisConfig
	Log            struct {
		Level  string
		Format string
	}
	MQTT   MQTTConfig
	Notify NotifyConfig
}

// MQTTConfig 远程点击输入与刷新通知
type MQTTConfig struct {
	commoncfg.MQTTConfig
	Enabled      bool
	CommandTopic string // 订阅：{"subject","hour","date"}
	RefreshTopic string // 发布：刷新事件
}

// NotifyConfig 刷新通知配置
type NotifyConfig struct {
	Mode   string // none | mqtt | stream
	Stream string // NOTIFY_MODE=stream 时使用的 Redis Stream
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory))

	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "sleeplog",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// MQTT（默认禁用）
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "sleeplog"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.CommandTopic = getEnv("MQTT_COMMAND_TOPIC", "sleeplog/command/toggle")
	cfg.MQTT.RefreshTopic = getEnv("MQTT_REFRESH_TOPIC", "sleeplog/event/refresh")

	cfg.Notify.Mode = strings.ToLower(getEnv("NOTIFY_MODE", NotifyNone))
	cfg.Notify.Stream = getEnv("NOTIFY_STREAM", "sleeplog:stream:refresh")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
