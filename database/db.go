package database

import (
	"fmt"

	"ayurbook/config"
	"ayurbook/database/repository/localstore"
	"ayurbook/utils"

	"go.uber.org/zap"
)

// OpenLocalStore returns the durable store selected by STORAGE_DRIVER.
func OpenLocalStore(logger *zap.Logger) (localstore.Store, error) {
	switch config.AppConfig.StorageDriver {
	case "", "memory":
		logger.Info("local store: using in-memory driver")
		return localstore.NewMemoryStore(), nil
	case "redis":
		client, err := utils.GetPrefsClient()
		if err != nil {
			return nil, err
		}
		logger.Info("local store: connected to Redis", zap.String("addr", config.AppConfig.RedisAddr))
		return localstore.NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", config.AppConfig.StorageDriver)
}
