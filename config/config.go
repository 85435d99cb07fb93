package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Бэкенды хранилища
const (
	StorageDatabase = "database"
	StorageFile     = "file"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	// Основные настройки приложения
	App AppConfigStruct `json:"app"`

	// Хранилище
	Storage StorageConfig `json:"storage"`

	// База данных
	Database DatabaseConfig `json:"database"`

	// Redis
	Redis RedisConfig `json:"redis"`

	// JWT и вход управляющего
	JWT  JWTConfig  `json:"jwt"`
	Auth AuthConfig `json:"auth"`

	// CORS
	CORS CORSConfig `json:"cors"`

	// Безопасность
	Security SecurityConfig `json:"security"`

	// Уведомления
	Notifications NotificationsConfig `json:"notifications"`

	// Аудит и фабрика оборудования
	Audit     AuditConfig     `json:"audit"`
	Equipment EquipmentConfig `json:"equipment"`
}

type AppConfigStruct struct {
	Env     string `json:"env"`
	Port    string `json:"port"`
	Host    string `json:"host"`
	Version string `json:"version"`
	Debug   bool   `json:"debug"`
}

type StorageConfig struct {
	Backend string `json:"backend"`
	DataDir string `json:"data_dir"`
}

type DatabaseConfig struct {
	Type            string        `json:"type"`
	Host            string        `json:"host"`
	Port            string        `json:"port"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	Name            string        `json:"name"`
	SSLMode         string        `json:"ssl_mode"`
	Path            string        `json:"path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool          `json:"enabled"`
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	URL      string        `json:"url"`
	Timeout  time.Duration `json:"timeout"`
}

type JWTConfig struct {
	Secret    string        `json:"secret"`
	ExpiresIn time.Duration `json:"expires_in"`
	Issuer    string        `json:"issuer"`
}

type AuthConfig struct {
	Enabled             bool   `json:"enabled"`
	ManagerUsername     string `json:"manager_username"`
	ManagerPasswordHash string `json:"-"`
}

type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type SecurityConfig struct {
	RateLimitRequests int           `json:"rate_limit_requests"`
	RateLimitWindow   time.Duration `json:"rate_limit_window"`
}

type NotificationsConfig struct {
	ManagerName     string     `json:"manager_name"`
	ManagerEmail    string     `json:"manager_email"`
	TechnicianPhone string     `json:"technician_phone"`
	SMTP            SMTPConfig `json:"smtp"`

	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
	TLS      bool   `json:"tls"`
}

type AuditConfig struct {
	Cron             string `json:"cron"`
	FaultProbability int    `json:"fault_probability"`
	Enabled          bool   `json:"enabled"`
}

type EquipmentConfig struct {
	StrictFactory bool `json:"strict_factory"`
}

var GlobalConfig *Config

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем .env файл если он существует
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	config := &Config{
		App: AppConfigStruct{
			Env:     getEnv("APP_ENV", "development"),
			Port:    getEnv("APP_PORT", "8080"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Version: getEnv("API_VERSION", "v1"),
			Debug:   getEnvBool("DEBUG_MODE", false),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageDatabase)),
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Database: DatabaseConfig{
			Type:            strings.ToLower(getEnv("DB_TYPE", "postgres")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "smart_apartment"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			Path:            getEnv("DB_PATH", "smart_apartment.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			URL:      getEnv("REDIS_URL", ""),
			Timeout:  getEnvDuration("REDIS_TIMEOUT", 5*time.Second),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", ""),
			ExpiresIn: getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
			Issuer:    getEnv("JWT_ISSUER", "smart-apartment"),
		},
		Auth: AuthConfig{
			Enabled:             getEnvBool("AUTH_ENABLED", false),
			ManagerUsername:     getEnv("MANAGER_USERNAME", "manager"),
			ManagerPasswordHash: getEnv("MANAGER_PASSWORD_HASH", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvInt("CORS_MAX_AGE", 86400),
		},
		Security: SecurityConfig{
			RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Notifications: NotificationsConfig{
			ManagerName:     getEnv("MANAGER_NAME", "Apartment Manager"),
			ManagerEmail:    getEnv("MANAGER_EMAIL", ""),
			TechnicianPhone: getEnv("TECHNICIAN_PHONE", ""),
			SMTP: SMTPConfig{
				Host:     getEnv("SMTP_HOST", ""),
				Port:     getEnvInt("SMTP_PORT", 587),
				User:     getEnv("SMTP_USER", ""),
				Password: getEnv("SMTP_PASSWORD", ""),
				From:     getEnv("SMTP_FROM", ""),
				FromName: getEnv("SMTP_FROM_NAME", "Smart Apartment"),
				TLS:      getEnvBool("SMTP_TLS", false),
			},
			TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Audit: AuditConfig{
			Cron:             getEnv("AUDIT_CRON", "0 0 9 * * *"),
			FaultProbability: getEnvInt("AUDIT_FAULT_PROBABILITY", 10),
			Enabled:          getEnvBool("AUDIT_ENABLED", true),
		},
		Equipment: EquipmentConfig{
			StrictFactory: getEnvBool("FACTORY_STRICT", false),
		},
	}

	// Валидация критически важных настроек
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	GlobalConfig = config
	return config, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	// Проверяем обязательные поля для продакшена
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
		}
		if c.Storage.Backend == StorageDatabase && c.Database.Type == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required in production")
		}
	}

	switch c.Storage.Backend {
	case StorageDatabase:
		if c.Database.Type != "postgres" && c.Database.Type != "sqlite" {
			return fmt.Errorf("DB_TYPE must be postgres or sqlite, got %q", c.Database.Type)
		}
		if c.Database.Type == "postgres" && c.Database.Name == "" {
			return fmt.Errorf("DB_NAME cannot be empty")
		}
	case StorageFile:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("DATA_DIR cannot be empty")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be database or file, got %q", c.Storage.Backend)
	}

	if c.Audit.FaultProbability < 0 || c.Audit.FaultProbability > 100 {
		return fmt.Errorf("AUDIT_FAULT_PROBABILITY must be between 0 and 100")
	}
	if c.Auth.Enabled {
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED=true")
		}
		if c.Auth.ManagerPasswordHash == "" {
			return fmt.Errorf("MANAGER_PASSWORD_HASH is required when AUTH_ENABLED=true")
		}
	}

	return nil
}

// GetConfig возвращает текущую конфигурацию
func GetConfig() *Config {
	if GlobalConfig == nil {
		log.Fatal("Config not loaded. Call LoadConfig() first.")
	}
	return GlobalConfig
}

// Вспомогательные функции для получения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Warning: Invalid boolean value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: Invalid duration value for %s: %s, using default: %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшене
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// GetDatabaseDSN возвращает строку подключения к БД
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Type == "sqlite" {
		return c.Database.Path
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// GetRedisAddr возвращает адрес Redis
func (c *Config) GetRedisAddr() string {
	if c.Redis.URL != "" {
		return c.Redis.URL
	}
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// LogConfig выводит конфигурацию в лог (без секретных данных)
func (c *Config) LogConfig() {
	log.Printf("=== Application Configuration ===")
	log.Printf("Environment: %s", c.App.Env)
	log.Printf("Port: %s", c.App.Port)
	log.Printf("Storage Backend: %s", c.Storage.Backend)
	if c.Storage.Backend == StorageFile {
		log.Printf("Data Dir: %s", c.Storage.DataDir)
	} else if c.Database.Type == "sqlite" {
		log.Printf("Database: sqlite %s", c.Database.Path)
	} else {
		log.Printf("Database Host: %s:%s", c.Database.Host, c.Database.Port)
		log.Printf("Database Name: %s", c.Database.Name)
	}
	log.Printf("Redis Enabled: %t", c.Redis.Enabled)
	log.Printf("Auth Enabled: %t", c.Auth.Enabled)
	log.Printf("Audit Cron: %s (probability %d%%)", c.Audit.Cron, c.Audit.FaultProbability)
	log.Printf("Strict Factory: %t", c.Equipment.StrictFactory)
	log.Printf("Debug Mode: %t", c.App.Debug)
	log.Printf("================================")
}
