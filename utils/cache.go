// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"ayurbook/config"

	"github.com/go-redis/redis/v8"
)

// PrefsClient backs the durable local storage (auth token, display currency).
var PrefsClient *redis.Client

// InitPrefsCache connects the preferences client using the DB from AppConfig.
func InitPrefsCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPrefsDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis (Prefs): %w", err)
	}
	PrefsClient = client
	return nil
}

// GetPrefsClient returns the preferences client, connecting on first use.
func GetPrefsClient() (*redis.Client, error) {
	if PrefsClient == nil {
		if err := InitPrefsCache(); err != nil {
			return nil, err
		}
	}
	return PrefsClient, nil
}
