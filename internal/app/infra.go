package app

import (
	"context"

	"go.uber.org/zap"

	"signin-service/internal/config"
	"signin-service/internal/ratelimit"
	"signin-service/internal/redis"
	"signin-service/internal/session"
)

// Infra holds the shared state backends. Redis is nil when REDIS_ADDR is
// empty, in which case sessions and rate-limit counters live in memory.
type Infra struct {
	Redis    *redis.Client
	Sessions session.Store
	Limiter  ratelimit.Limiter
}

func setupInfra(ctx context.Context, cfg config.Config, log *zap.Logger) (*Infra, error) {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, using in-memory session store and rate limiter")
		return &Infra{
			Sessions: session.NewMemoryStore(),
			Limiter:  ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		}, nil
	}

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	log.Info("redis ready", zap.String("addr", cfg.RedisAddr))

	return &Infra{
		Redis:    redisClient,
		Sessions: session.NewRedisStore(redisClient.Client),
		Limiter:  ratelimit.NewRedisLimiter(redisClient.Client, cfg.RateLimitMax, cfg.RateLimitWindow),
	}, nil
}

func (i *Infra) Close() error {
	if i.Redis != nil {
		return i.Redis.Close()
	}
	return nil
}
