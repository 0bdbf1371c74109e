package ratelimit

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/config"
)

// Module provides a Redis backed limiter when REDIS_ADDR is set and an
// in-memory one otherwise.
var Module = fx.Provide(newLimiter)

type limiterParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newLimiter(p limiterParams) Limiter {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("rate limiter uses process memory")
		return NewMemoryLimiter()
	}

	client := redis.NewClient(&redis.Options{Addr: p.Config.RedisAddr})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis is unreachable, rate limiting fails open", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisLimiter(client)
}
