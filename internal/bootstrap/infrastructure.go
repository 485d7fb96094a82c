package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ProvideRedisClient returns nil when REDIS_ADDR is empty, which disables
// the screen context log.
func ProvideRedisClient(lc fx.Lifecycle, cfg *Config, log *slog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, screen context log disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

// ProvideDatabase opens postgres for postgres URLs and sqlite for anything
// else. An empty DSN disables turn history.
func ProvideDatabase(cfg *Config, log *slog.Logger) (*gorm.DB, error) {
	if cfg.HistoryDSN == "" {
		log.Info("history database not configured, turn history disabled")
		return nil, nil
	}
	return gorm.Open(dialector(cfg.HistoryDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideDatabase,
	),
)
