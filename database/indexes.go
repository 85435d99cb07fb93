package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// DatabaseIndex представляет индекс базы данных
type DatabaseIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// PerformanceIndexes индексы для частых выборок
var PerformanceIndexes = []DatabaseIndex{
	// Список оборудования в порядке регистрации с фильтром по статусу
	{
		Name:    "idx_equipment_status_seq",
		Table:   "equipment",
		Columns: []string{"status", "seq"},
	},
	{
		Name:    "idx_equipment_location",
		Table:   "equipment",
		Columns: []string{"location"},
	},

	// История обслуживания по оборудованию
	{
		Name:    "idx_work_orders_equipment_created",
		Table:   "work_orders",
		Columns: []string{"equipment_id", "created_at"},
	},
	{
		Name:    "idx_work_orders_status_seq",
		Table:   "work_orders",
		Columns: []string{"status", "seq"},
	},

	// Журнал изменений по объекту
	{
		Name:    "idx_history_logs_target_timestamp",
		Table:   "history_logs",
		Columns: []string{"target_id", "timestamp"},
	},

	{
		Name:    "idx_notification_logs_channel_status",
		Table:   "notification_logs",
		Columns: []string{"channel", "status"},
	},
}

// CreatePerformanceIndexes создает индексы. Ошибка одного индекса не прерывает остальные.
func CreatePerformanceIndexes(db *gorm.DB) error {
	log.Printf("Creating performance indexes...")

	failed := 0
	for _, index := range PerformanceIndexes {
		if err := CreateIndex(db, index); err != nil {
			log.Printf("Failed to create index %s: %v", index.Name, err)
			failed++
			continue
		}
	}

	if failed == len(PerformanceIndexes) && failed > 0 {
		return fmt.Errorf("не удалось создать ни одного индекса")
	}
	log.Printf("Performance indexes creation completed")
	return nil
}

// CreateIndex создает B-tree индекс, если его еще нет
func CreateIndex(db *gorm.DB, index DatabaseIndex) error {
	uniqueStr := ""
	if index.Unique {
		uniqueStr = "UNIQUE "
	}

	sql := fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		uniqueStr, index.Name, index.Table, strings.Join(index.Columns, ", "),
	)
	return db.Exec(sql).Error
}

// DropIndex удаляет индекс
func DropIndex(db *gorm.DB, indexName string) error {
	sql := fmt.Sprintf("DROP INDEX IF EXISTS %s", indexName)
	return db.Exec(sql).Error
}
