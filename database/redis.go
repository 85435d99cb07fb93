package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"smart_apartment/config"
)

var Redis *redis.Client

// InitRedis инициализирует подключение к Redis.
// При REDIS_ENABLED=false возвращает nil клиент, кэш и лимиты отключаются.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		log.Println("⚠️ Redis отключен, кэширование и ограничение запросов не используются")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  cfg.Redis.Timeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  300 * time.Second,
	})

	// Проверяем подключение
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	Redis = client
	log.Println("✅ Успешно подключено к Redis")
	return client, nil
}

// GetRedis возвращает экземпляр Redis клиента
func GetRedis() *redis.Client {
	return Redis
}

// CloseRedis закрывает подключение к Redis
func CloseRedis() error {
	if Redis == nil {
		return nil
	}
	return Redis.Close()
}
