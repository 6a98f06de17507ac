package app

import (
	"context"
	"log"
	"time"

	"competence-exchange/internal/config"
	"competence-exchange/internal/database"
	dbpostgres "competence-exchange/internal/database/postgres"
	"competence-exchange/internal/infrastructure/cache"
)

type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
}

func NewContainer(cfg config.Config) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config: cfg,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, log.Default()),
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
