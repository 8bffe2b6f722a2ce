// Package di wires shared infrastructure and module dependencies.
package di

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crstnmac/estate-broker-manager/internal/auth"
	"github.com/crstnmac/estate-broker-manager/internal/auth/adapter/persistence/postgres"
	"github.com/crstnmac/estate-broker-manager/internal/auth/config"
	"github.com/crstnmac/estate-broker-manager/internal/shared/database"
	"github.com/crstnmac/estate-broker-manager/internal/shared/logger"
)

// Container holds the application's shared infrastructure and modules.
type Container struct {
	Config *config.Config
	Logger logger.Logger
	DB     *sql.DB
	Redis  *redis.Client

	AuthModule *auth.AuthModule
}

// NewContainer creates an empty container with config and logger.
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	return &Container{Config: cfg, Logger: log}
}

// InitializeAuth connects Postgres (running migrations) and the optional
// Redis throttle store, then wires the auth module.
func (c *Container) InitializeAuth(ctx context.Context) error {
	db, err := database.OpenPostgres(ctx, c.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	c.DB = db

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if c.Config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
			DB:       c.Config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		c.Redis = client
	} else {
		c.Logger.Warn("REDIS_ADDR not set, login throttling disabled")
	}

	c.AuthModule = auth.NewAuthModule(c.DB, c.Redis, c.Config, c.Logger)
	return nil
}

// HealthCheck pings every connected backend.
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.DB != nil {
		if err := database.Health(ctx, c.DB); err != nil {
			return fmt.Errorf("postgres unhealthy: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unhealthy: %w", err)
		}
	}
	return nil
}

// Close releases all held connections.
func (c *Container) Close() error {
	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
