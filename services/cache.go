package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Ключи кэша
const (
	DashboardCacheKey = "dashboard:summary"
)

// Константы для TTL кэша
const (
	CacheTTLShort = 5 * time.Minute // Для часто изменяемых данных
)

// ErrCacheMiss ключ отсутствует в кэше или Redis не подключен
var ErrCacheMiss = errors.New("ключ не найден")

// CacheService предоставляет методы для кэширования
type CacheService struct {
	redis  *redis.Client
	logger *log.Logger
}

// NewCacheService создает новый экземпляр CacheService
func NewCacheService(redisClient *redis.Client, logger *log.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Enabled проверяет, подключен ли Redis
func (cs *CacheService) Enabled() bool {
	return cs != nil && cs.redis != nil
}

// Get получает значение из кэша
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	if !cs.Enabled() {
		return "", ErrCacheMiss
	}

	val, err := cs.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	return val, err
}

// Set сохраняет значение в кэш
func (cs *CacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if !cs.Enabled() {
		return nil // Не возвращаем ошибку, просто пропускаем кэширование
	}

	return cs.redis.Set(ctx, key, value, ttl).Err()
}

// Del удаляет значения из кэша
func (cs *CacheService) Del(ctx context.Context, keys ...string) error {
	if !cs.Enabled() || len(keys) == 0 {
		return nil
	}

	return cs.redis.Del(ctx, keys...).Err()
}

// GetJSON получает объект из кэша
func (cs *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := cs.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("ошибка десериализации кэша %s: %w", key, err)
	}
	return nil
}

// SetJSON сохраняет объект в кэш
func (cs *CacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !cs.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации кэша %s: %w", key, err)
	}
	return cs.Set(ctx, key, string(data), ttl)
}

// InvalidateDashboard сбрасывает кэш дашборда. Ошибки только логируются.
func (cs *CacheService) InvalidateDashboard(ctx context.Context) {
	if err := cs.Del(ctx, DashboardCacheKey); err != nil {
		cs.logf("⚠️ Не удалось инвалидировать кэш дашборда: %v", err)
	}
}

// GetCacheStats возвращает статистику использования кэша
func (cs *CacheService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	if !cs.Enabled() {
		return map[string]interface{}{
			"status": "disabled",
		}, nil
	}

	keyCount, err := cs.redis.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":    "enabled",
		"key_count": keyCount,
	}, nil
}

func (cs *CacheService) logf(format string, args ...interface{}) {
	if cs != nil && cs.logger != nil {
		cs.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
