package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EquipmentStatus статус жизненного цикла оборудования
type EquipmentStatus string

const (
	StatusActive      EquipmentStatus = "Active"
	StatusFaulty      EquipmentStatus = "Faulty"
	StatusUnderRepair EquipmentStatus = "UnderRepair"
)

// IsValid проверяет, что статус входит в перечисление
func (s EquipmentStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusFaulty, StatusUnderRepair:
		return true
	}
	return false
}

// IsHealthy проверяет, что оборудование в рабочем состоянии
func (s EquipmentStatus) IsHealthy() bool {
	return s == StatusActive
}

// CanTransition проверяет переход, разрешенный при прямой смене статуса.
// Возврат в Active выполняется только закрытием заявки.
func CanTransition(from, to EquipmentStatus) bool {
	switch {
	case from == StatusActive && to == StatusFaulty:
		return true
	case from == StatusFaulty && to == StatusUnderRepair:
		return true
	}
	return false
}

// ParseEquipmentStatus разбирает статус без учета регистра
func ParseEquipmentStatus(value string) (EquipmentStatus, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	switch normalized {
	case "active":
		return StatusActive, nil
	case "faulty":
		return StatusFaulty, nil
	case "underrepair":
		return StatusUnderRepair, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("неизвестный статус: %q", value))
}

// EquipmentKind дискриминатор варианта оборудования
type EquipmentKind string

const (
	KindRouter     EquipmentKind = "Router"
	KindChair      EquipmentKind = "Chair"
	KindTable      EquipmentKind = "Table"
	KindMicroscope EquipmentKind = "Microscope"
	KindGeneral    EquipmentKind = "General"
)

// KnownKinds варианты со специфичными полями
var KnownKinds = []EquipmentKind{KindRouter, KindChair, KindTable, KindMicroscope}

// RouterDetails поля маршрутизатора
type RouterDetails struct {
	IPAddress string `json:"ip_address"`
	SSID      string `json:"ssid"`
}

// ChairDetails поля стула
type ChairDetails struct {
	FabricType string `json:"fabric_type"`
}

// TableDetails поля стола
type TableDetails struct {
	Material string `json:"material"`
	Seats    int    `json:"seats"`
}

// MicroscopeDetails поля микроскопа
type MicroscopeDetails struct {
	Magnification string `json:"magnification"`
}

// GeneralDetails универсальный вариант для неизвестных типов
type GeneralDetails struct {
	Category string `json:"category"`
}

// EquipmentDetails вариантная часть оборудования.
// Заполнено ровно одно поле, соответствующее Kind.
type EquipmentDetails struct {
	Router     *RouterDetails     `json:"router,omitempty"`
	Chair      *ChairDetails      `json:"chair,omitempty"`
	Table      *TableDetails      `json:"table,omitempty"`
	Microscope *MicroscopeDetails `json:"microscope,omitempty"`
	General    *GeneralDetails    `json:"general,omitempty"`
}

// Equipment представляет оборудование квартиры
type Equipment struct {
	ID           string           `json:"id" gorm:"primarykey;type:varchar(36)"`
	Seq          int64            `json:"-" gorm:"index"`
	Name         string           `json:"name" gorm:"not null;type:varchar(100)"`
	Kind         EquipmentKind    `json:"kind" gorm:"not null;type:varchar(30)"`
	Details      EquipmentDetails `json:"details" gorm:"serializer:json;type:text"`
	Location     string           `json:"location" gorm:"type:varchar(100)"`
	PurchaseDate time.Time        `json:"purchase_date"`
	InitialCost  decimal.Decimal  `json:"initial_cost" gorm:"type:decimal(10,2)"`
	Status       EquipmentStatus  `json:"status" gorm:"default:'Active';type:varchar(20);index"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName задает имя таблицы для модели Equipment
func (Equipment) TableName() string {
	return "equipment"
}

// EntityID возвращает идентификатор записи
func (e Equipment) EntityID() string {
	return e.ID
}

// Position возвращает порядковый номер вставки
func (e Equipment) Position() int64 {
	return e.Seq
}

// WithPosition возвращает копию с порядковым номером
func (e Equipment) WithPosition(seq int64) Equipment {
	e.Seq = seq
	return e
}

// TypeName возвращает пользовательское название типа
func (e *Equipment) TypeName() string {
	if e.Kind == KindGeneral && e.Details.General != nil && e.Details.General.Category != "" {
		return e.Details.General.Category
	}
	return string(e.Kind)
}

// Describe возвращает описание с учетом варианта
func (e *Equipment) Describe() string {
	switch e.Kind {
	case KindRouter:
		if d := e.Details.Router; d != nil {
			return fmt.Sprintf("[Router] %s (IP %s, SSID %s)", e.Name, d.IPAddress, d.SSID)
		}
	case KindChair:
		if d := e.Details.Chair; d != nil {
			return fmt.Sprintf("[Chair] %s (%s)", e.Name, d.FabricType)
		}
	case KindTable:
		if d := e.Details.Table; d != nil {
			return fmt.Sprintf("[Table] %s (%s, %d seats)", e.Name, d.Material, d.Seats)
		}
	case KindMicroscope:
		if d := e.Details.Microscope; d != nil {
			return fmt.Sprintf("[Microscope] %s (%s)", e.Name, d.Magnification)
		}
	}
	return fmt.Sprintf("[%s] %s", e.TypeName(), e.Name)
}

// Summary короткое описание для журнала изменений
func (e *Equipment) Summary() string {
	return fmt.Sprintf("%s (%s) at %s", e.Name, e.TypeName(), e.Location)
}

// IsAvailable проверяет, доступно ли оборудование для использования
func (e *Equipment) IsAvailable() bool {
	return e.Status.IsHealthy()
}

// Condition возвращает состояние в терминах веб-интерфейса
func (e *Equipment) Condition() string {
	switch e.Status {
	case StatusActive:
		return "Good"
	case StatusUnderRepair:
		return "Poor"
	default:
		return "Broken"
	}
}

// NeedsAttention проверяет, требует ли оборудование внимания
func (e *Equipment) NeedsAttention() bool {
	return e.Status == StatusFaulty
}

// EquipmentStats агрегированные счетчики по статусам
type EquipmentStats struct {
	Active      int `json:"active"`
	Faulty      int `json:"faulty"`
	UnderRepair int `json:"under_repair"`
}

// Total возвращает общее количество оборудования
func (s EquipmentStats) Total() int {
	return s.Active + s.Faulty + s.UnderRepair
}
