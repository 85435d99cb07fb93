package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"smart_apartment/config"
)

// SetupTestConfig настраивает тестовую конфигурацию через переменные окружения
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("APP_ENV", "test")
	t.Setenv("STORAGE_BACKEND", "database")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	return cfg
}
