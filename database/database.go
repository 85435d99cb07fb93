package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart_apartment/config"
	"smart_apartment/models"
)

var DB *gorm.DB

// CreateDatabaseIfNotExists создает базу данных PostgreSQL, если она не существует
func CreateDatabaseIfNotExists(cfg config.DatabaseConfig) error {
	if cfg.Type != "postgres" {
		return nil
	}

	// Подключаемся к PostgreSQL без указания конкретной БД (к postgres по умолчанию)
	adminDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.SSLMode)

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к PostgreSQL: %w", err)
	}
	defer db.Close()

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		return fmt.Errorf("не удалось проверить подключение к PostgreSQL: %w", err)
	}

	// Проверяем, существует ли база данных
	var exists bool
	query := "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1);"
	if err := db.QueryRow(query, cfg.Name).Scan(&exists); err != nil {
		return fmt.Errorf("ошибка при проверке существования базы данных: %w", err)
	}

	if exists {
		log.Printf("✅ База данных '%s' уже существует", cfg.Name)
		return nil
	}

	createQuery := fmt.Sprintf("CREATE DATABASE %q;", cfg.Name)
	if _, err := db.Exec(createQuery); err != nil {
		return fmt.Errorf("не удалось создать базу данных '%s': %w", cfg.Name, err)
	}

	log.Printf("✅ База данных '%s' успешно создана", cfg.Name)
	return nil
}

// Open открывает подключение к базе данных по типу из конфигурации
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.App.Debug {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var dialector gorm.Dialector
	switch cfg.Database.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDatabaseDSN())
	case "postgres":
		dialector = postgres.Open(cfg.GetDatabaseDSN())
	default:
		return nil, fmt.Errorf("неподдерживаемый тип базы данных: %s", cfg.Database.Type)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить пул соединений: %w", err)
	}
	if cfg.Database.Type == "sqlite" {
		// SQLite допускает одного писателя
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	log.Printf("✅ Успешно подключено к %s", cfg.Database.Type)
	return db, nil
}

// ConnectDatabase создает базу при необходимости, подключается и выполняет миграции
func ConnectDatabase(cfg *config.Config) error {
	if err := CreateDatabaseIfNotExists(cfg.Database); err != nil {
		log.Printf("⚠️ %v", err)
	}

	db, err := Open(cfg)
	if err != nil {
		return err
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("ошибка автомиграции: %w", err)
	}
	if err := CreatePerformanceIndexes(db); err != nil {
		return err
	}

	DB = db
	return nil
}

// GetDB возвращает экземпляр базы данных
func GetDB() *gorm.DB {
	return DB
}

// AutoMigrate выполняет автомиграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Equipment{},
		&models.WorkOrder{},
		&models.HistoryLog{},
		&models.NotificationLog{},
	)
	if err != nil {
		return err
	}

	log.Println("✅ Автомиграция моделей выполнена успешно")
	return nil
}
