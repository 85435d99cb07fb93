package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart_apartment/models"
	"smart_apartment/storage"
)

// SetupTestDB создает и настраивает тестовую базу данных в памяти
// Эта функция должна использоваться во всех тестах для обеспечения консистентности
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Каждое новое соединение к :memory: открывает пустую базу
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Equipment{},
		&models.WorkOrder{},
		&models.HistoryLog{},
		&models.NotificationLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// CleanupTestDB очищает тестовую базу данных
func CleanupTestDB(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTestStore возвращает хранилище на тестовой базе и закрывает ее по завершении теста
func SetupTestStore(t *testing.T) (*gorm.DB, storage.Store) {
	t.Helper()

	db, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(db) })

	return db, storage.NewGormStore(db)
}

// CreateTestEquipment добавляет оборудование напрямую в хранилище, минуя журнал
func CreateTestEquipment(t *testing.T, store storage.Store, kind models.EquipmentKind, name string, status models.EquipmentStatus) models.Equipment {
	t.Helper()

	item := models.Equipment{
		ID:           uuid.New().String(),
		Name:         name,
		Kind:         kind,
		Location:     "Room 1",
		PurchaseDate: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		InitialCost:  decimal.NewFromInt(100),
		Status:       status,
	}
	switch kind {
	case models.KindRouter:
		item.Details.Router = &models.RouterDetails{IPAddress: "192.168.0.1", SSID: "SmartApartment"}
	case models.KindChair:
		item.Details.Chair = &models.ChairDetails{FabricType: "Cotton"}
	case models.KindTable:
		item.Details.Table = &models.TableDetails{Material: "Wood", Seats: 4}
	case models.KindMicroscope:
		item.Details.Microscope = &models.MicroscopeDetails{Magnification: "1000x"}
	default:
		item.Details.General = &models.GeneralDetails{Category: string(kind)}
	}

	require.NoError(t, store.Equipment().Add(context.Background(), item))
	return item
}
