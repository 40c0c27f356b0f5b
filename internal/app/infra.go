package app

import (
	"context"

	"hatake-api/internal/config"
	"hatake-api/internal/db"
	"hatake-api/internal/logger"
	"hatake-api/internal/redis"

	"github.com/pkg/errors"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if err := db.RunMigration(ctx, database.DB); err != nil {
		_ = database.Close()
		return nil, errors.Wrap(err, "run migration")
	}

	logger.Info("database ready", nil)

	infra := &Infra{DB: database}

	if cfg.SessionBackend == config.SessionBackendRedis {
		redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = database.Close()
			return nil, errors.Wrap(err, "connect redis")
		}
		infra.Redis = redisClient

		logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})
	}

	return infra, nil
}

func (i *Infra) Close() error {
	var err error
	if i.Redis != nil {
		err = i.Redis.Close()
	}
	if dbErr := i.DB.Close(); dbErr != nil {
		err = dbErr
	}
	return err
}
