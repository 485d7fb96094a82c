package bootstrap

import (
	"github.com/eleven-am/screen-assistant/internal/history"
	"github.com/eleven-am/screen-assistant/internal/ocr"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideHistoryStore(db *gorm.DB) *history.Store {
	if db == nil {
		return nil
	}
	return history.NewStore(db)
}

func ProvideContextLog(redisClient *redis.Client, cfg *Config) *ocr.Store {
	if redisClient == nil {
		return nil
	}
	return ocr.NewStore(redisClient, cfg.ContextTTL)
}

func RunMigrations(historyStore *history.Store) error {
	if historyStore == nil {
		return nil
	}
	return historyStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideHistoryStore,
		ProvideContextLog,
	),
	fx.Invoke(RunMigrations),
)
