package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WorkOrderStatus статус заявки на обслуживание
type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "Pending"
	WorkOrderInProgress WorkOrderStatus = "In Progress"
	WorkOrderCompleted  WorkOrderStatus = "Completed"
)

// ParseWorkOrderStatus разбирает статус заявки без учета регистра
func ParseWorkOrderStatus(value string) (WorkOrderStatus, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), "_", " ")) {
	case "pending":
		return WorkOrderPending, nil
	case "in progress", "inprogress":
		return WorkOrderInProgress, nil
	case "completed":
		return WorkOrderCompleted, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("неизвестный статус заявки: %q", value))
}

// WorkOrder представляет заявку на обслуживание оборудования.
// EquipmentID не является внешним ключом: оборудование может быть удалено.
type WorkOrder struct {
	ID             string          `json:"id" gorm:"primarykey;type:varchar(36)"`
	Seq            int64           `json:"-" gorm:"index"`
	EquipmentID    string          `json:"equipment_id" gorm:"not null;type:varchar(36);index"`
	Description    string          `json:"description" gorm:"type:text"`
	Status         WorkOrderStatus `json:"status" gorm:"default:'Pending';type:varchar(20);index"`
	CreatedAt      time.Time       `json:"created_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	StrategyUsed   string          `json:"strategy_used,omitempty" gorm:"type:varchar(30)"`
	TechnicianNote string          `json:"technician_note,omitempty" gorm:"type:text"`
	Cost           decimal.Decimal `json:"cost" gorm:"type:decimal(10,2)"`
}

// TableName задает имя таблицы для модели WorkOrder
func (WorkOrder) TableName() string {
	return "work_orders"
}

// EntityID возвращает идентификатор записи
func (w WorkOrder) EntityID() string {
	return w.ID
}

// Position возвращает порядковый номер вставки
func (w WorkOrder) Position() int64 {
	return w.Seq
}

// WithPosition возвращает копию с порядковым номером
func (w WorkOrder) WithPosition(seq int64) WorkOrder {
	w.Seq = seq
	return w
}

// IsOpen проверяет, что заявка еще не закрыта
func (w *WorkOrder) IsOpen() bool {
	return w.Status != WorkOrderCompleted
}

// String форматирует заявку для журнала обслуживания
func (w WorkOrder) String() string {
	return fmt.Sprintf("[%s] Strategy: %s | Cost: $%s | Note: %s",
		w.CreatedAt.Format("2006-01-02 15:04"), w.StrategyUsed, w.Cost.StringFixed(2), w.TechnicianNote)
}
