package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nisal-dev/portfolio-backend/config"
)

// OpenRedis connects to Redis for webhook delivery deduplication. Redis is
// optional: with no address configured, or an unreachable server, the app
// runs without dedup rather than failing startup.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		log.Println("REDIS_ADDR not set, webhook dedup disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis ping failed, webhook dedup disabled: %v", err)
		_ = client.Close()
		return nil
	}

	return client
}
