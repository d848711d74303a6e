package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis returns nil when no redis is configured or reachable; callers
// then run without cache.
func OpenRedis(ctx context.Context, cfg Config, log *slog.Logger) *redis.Client {
	var opt *redis.Options
	switch {
	case cfg.RedisURL != "":
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn("failed to parse redis url, running without cache", "action", "redis_connect", "error", err)
			return nil
		}
		opt = parsed
	case cfg.RedisAddr != "":
		opt = &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	default:
		log.Info("redis not configured, running without cache", "action", "redis_connect")
		return nil
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis connection failed, running without cache", "action", "redis_connect", "error", err)
		_ = client.Close()
		return nil
	}
	log.Info("redis connected", "action", "redis_connect", "addr", opt.Addr)
	return client
}
