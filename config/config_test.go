package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("AUDIT_CRON", "")
	t.Setenv("AUDIT_FAULT_PROBABILITY", "")
	t.Setenv("AUTH_ENABLED", "")
	t.Setenv("APP_ENV", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDatabase, cfg.Storage.Backend)
	assert.Equal(t, "0 0 9 * * *", cfg.Audit.Cron)
	assert.Equal(t, 10, cfg.Audit.FaultProbability)
	assert.False(t, cfg.Equipment.StrictFactory)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "FILE")
	t.Setenv("DATA_DIR", "/tmp/apartment")
	t.Setenv("AUDIT_FAULT_PROBABILITY", "25")
	t.Setenv("FACTORY_STRICT", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/apartment", cfg.Storage.DataDir)
	assert.Equal(t, 25, cfg.Audit.FaultProbability)
	assert.True(t, cfg.Equipment.StrictFactory)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Security.RateLimitWindow)
	assert.Same(t, cfg, GlobalConfig)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfigStruct{Env: "development"},
			Storage:  StorageConfig{Backend: StorageDatabase, DataDir: "data"},
			Database: DatabaseConfig{Type: "sqlite", Path: "test.db"},
			Audit:    AuditConfig{FaultProbability: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, "STORAGE_BACKEND"},
		{"unknown db type", func(c *Config) { c.Database.Type = "mysql" }, "DB_TYPE"},
		{"probability out of range", func(c *Config) { c.Audit.FaultProbability = 120 }, "AUDIT_FAULT_PROBABILITY"},
		{"auth without secret", func(c *Config) { c.Auth.Enabled = true }, "JWT_SECRET"},
		{"production short secret", func(c *Config) {
			c.App.Env = "production"
			c.JWT.Secret = "short"
		}, "at least 32"},
		{"file backend", func(c *Config) { c.Storage.Backend = StorageFile }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_GetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Type: "sqlite", Path: "apartment.db"}}
	assert.Equal(t, "apartment.db", cfg.GetDatabaseDSN())

	cfg.Database = DatabaseConfig{Type: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
