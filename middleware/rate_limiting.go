package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"

	"smart_apartment/config"
)

// RateLimitConfig конфигурация rate limiting
type RateLimitConfig struct {
	Requests       int                       // Количество запросов
	Window         time.Duration             // Временное окно
	SkipSuccessful bool                      // Пропускать успешные запросы
	KeyGenerator   func(*gin.Context) string // Генератор ключей
}

// DefaultKeyGenerator генерирует ключ на основе IP адреса
func DefaultKeyGenerator(c *gin.Context) string {
	return c.ClientIP()
}

// UserKeyGenerator генерирует ключ на основе пользователя
func UserKeyGenerator(c *gin.Context) string {
	username := GetCurrentUser(c)
	if username == "" {
		return c.ClientIP()
	}
	return "user:" + username
}

// RateLimit создает middleware для ограничения частоты запросов.
// Без Redis запросы не ограничиваются.
func RateLimit(redisClient *redis.Client, config RateLimitConfig) gin.HandlerFunc {
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultKeyGenerator
	}

	return func(c *gin.Context) {
		if redisClient == nil || config.Requests <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "rate_limit:" + config.KeyGenerator(c)

		// Получаем текущее количество запросов
		current, err := redisClient.Get(ctx, key).Int()
		if err != nil && err != redis.Nil {
			// В случае ошибки Redis пропускаем запрос
			c.Next()
			return
		}

		// Проверяем превышение лимита
		if current >= config.Requests {
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"status": "error",
				"error": fmt.Sprintf("Too many requests. Limit: %d requests per %v",
					config.Requests, config.Window),
				"retry_after": config.Window.Seconds(),
			})
			c.Abort()
			return
		}

		if err := increment(ctx, redisClient, key, current, config.Window); err != nil {
			c.Next()
			return
		}

		// Устанавливаем заголовки rate limit
		remaining := config.Requests - current - 1
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

		c.Next()

		// Если настроено пропускать успешные запросы и запрос успешен
		if config.SkipSuccessful && c.Writer.Status() < 400 {
			redisClient.Decr(ctx, key)
		}
	}
}

func increment(ctx context.Context, redisClient *redis.Client, key string, current int, window time.Duration) error {
	pipe := redisClient.Pipeline()
	pipe.Incr(ctx, key)
	if current == 0 {
		// Устанавливаем TTL только для первого запроса
		pipe.Expire(ctx, key, window)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// APIRateLimit ограничение для API из настроек безопасности
func APIRateLimit(redisClient *redis.Client, security config.SecurityConfig) gin.HandlerFunc {
	return RateLimit(redisClient, RateLimitConfig{
		Requests:     security.RateLimitRequests,
		Window:       security.RateLimitWindow,
		KeyGenerator: UserKeyGenerator,
	})
}

// AuthRateLimit ограничение для выдачи токенов
func AuthRateLimit(redisClient *redis.Client) gin.HandlerFunc {
	return RateLimit(redisClient, RateLimitConfig{
		Requests:     5,
		Window:       time.Minute,
		KeyGenerator: DefaultKeyGenerator,
	})
}
