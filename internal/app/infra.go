package app

import (
	"phantom-gateway/internal/config"
	"phantom-gateway/internal/logger"
	"phantom-gateway/internal/redis"
)

type Infra struct {
	Redis *redis.Client
}

func setupInfra(cfg config.Config) (*Infra, error) {
	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisTimeout)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	return &Infra{
		Redis: redisClient,
	}, nil
}
