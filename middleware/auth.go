package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"smart_apartment/config"
)

// Claims содержимое токена управляющего
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthMiddleware проверяет аутентификацию пользователя
type AuthMiddleware struct {
	jwt     config.JWTConfig
	enabled bool
	now     func() time.Time
}

// NewAuthMiddleware создает новый экземпляр AuthMiddleware
func NewAuthMiddleware(jwtConfig config.JWTConfig, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtConfig, enabled: enabled, now: time.Now}
}

// Enabled проверяет, включена ли аутентификация
func (am *AuthMiddleware) Enabled() bool {
	return am.enabled
}

// IssueToken выпускает подписанный токен для пользователя
func (am *AuthMiddleware) IssueToken(username string) (string, time.Time, error) {
	if am.jwt.Secret == "" {
		return "", time.Time{}, errors.New("JWT secret не настроен")
	}

	now := am.now()
	expiresAt := now.Add(am.jwt.ExpiresIn)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    am.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(am.jwt.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// RequireAuth middleware для проверки аутентификации.
// При выключенной аутентификации пропускает все запросы.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.enabled {
			c.Next()
			return
		}

		// Получаем токен из заголовка
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Authorization header is required",
			})
			c.Abort()
			return
		}

		token := extractToken(authHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Invalid authorization format",
			})
			c.Abort()
			return
		}

		claims, err := am.validateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Invalid or expired token: " + err.Error(),
			})
			c.Abort()
			return
		}

		// Сохраняем информацию о пользователе в контексте
		c.Set("user", claims.Username)
		c.Set("token", token)

		c.Next()
	}
}

// extractToken извлекает токен из заголовка
func extractToken(authHeader string) string {
	switch {
	case strings.HasPrefix(authHeader, "Bearer "):
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	case strings.HasPrefix(authHeader, "Token "):
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Token "))
	default:
		return strings.TrimSpace(authHeader)
	}
}

// validateToken проверяет подпись и срок действия токена
func (am *AuthMiddleware) validateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(am.jwt.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(am.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	if am.jwt.Issuer != "" && claims.Issuer != am.jwt.Issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return claims, nil
}

// GetCurrentUser возвращает текущего пользователя из контекста
func GetCurrentUser(c *gin.Context) string {
	if user, exists := c.Get("user"); exists {
		if username, ok := user.(string); ok {
			return username
		}
	}
	return ""
}

// GetCurrentToken возвращает текущий токен из контекста
func GetCurrentToken(c *gin.Context) string {
	if token, exists := c.Get("token"); exists {
		if tokenStr, ok := token.(string); ok {
			return tokenStr
		}
	}
	return ""
}
