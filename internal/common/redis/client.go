package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bw-isys-53203/Module3/internal/common/config"

	"github.com/go-redis/redis/v8"
)

// Client 上层只依赖这个别名，不直接 import go-redis
type Client = redis.Client

const connectTimeout = 3 * time.Second

// Connect 创建客户端并 PING 一次；不可达时关闭客户端并返回错误
func Connect(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: connectTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr, err)
	}
	return client, nil
}
