package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart_apartment/models"
)

// Значения полей вариантов по умолчанию
const (
	DefaultRouterIP          = "192.168.0.1"
	DefaultRouterSSID        = "SmartApartment"
	DefaultChairFabric       = "Cotton"
	DefaultTableMaterial     = "Wood"
	DefaultTableSeats        = 4
	DefaultMicroscopeMagnify = "1000x"
)

// Clock источник текущего времени
type Clock func() time.Time

// EquipmentFactory создает оборудование по пользовательскому названию типа
type EquipmentFactory struct {
	// Strict запрещает неизвестные типы вместо подстановки General
	Strict bool
	Now    Clock
}

// NewEquipmentFactory создает новый экземпляр EquipmentFactory
func NewEquipmentFactory(strict bool) *EquipmentFactory {
	return &EquipmentFactory{Strict: strict, Now: time.Now}
}

// ResolveKind сопоставляет название типа с вариантом без учета регистра
func (f *EquipmentFactory) ResolveKind(typeName string) (models.EquipmentKind, error) {
	normalized := strings.TrimSpace(typeName)
	if normalized == "" {
		return "", models.NewValidationError("type", "тип оборудования обязателен")
	}

	for _, kind := range models.KnownKinds {
		if strings.EqualFold(normalized, string(kind)) {
			return kind, nil
		}
	}

	if f.Strict {
		return "", fmt.Errorf("%w: %s", models.ErrUnknownType, normalized)
	}
	return models.KindGeneral, nil
}

// Create собирает новое оборудование в статусе Active. Ничего не сохраняет.
func (f *EquipmentFactory) Create(typeName, name, location string, price decimal.Decimal) (models.Equipment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Equipment{}, models.NewValidationError("name", "название оборудования обязательно")
	}
	if price.IsNegative() {
		return models.Equipment{}, models.NewValidationError("cost", "стоимость не может быть отрицательной")
	}

	kind, err := f.ResolveKind(typeName)
	if err != nil {
		return models.Equipment{}, err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	return models.Equipment{
		ID:           uuid.New().String(),
		Name:         name,
		Kind:         kind,
		Details:      defaultDetails(kind, strings.TrimSpace(typeName)),
		Location:     strings.TrimSpace(location),
		PurchaseDate: now(),
		InitialCost:  price,
		Status:       models.StatusActive,
	}, nil
}

func defaultDetails(kind models.EquipmentKind, rawType string) models.EquipmentDetails {
	switch kind {
	case models.KindRouter:
		return models.EquipmentDetails{Router: &models.RouterDetails{IPAddress: DefaultRouterIP, SSID: DefaultRouterSSID}}
	case models.KindChair:
		return models.EquipmentDetails{Chair: &models.ChairDetails{FabricType: DefaultChairFabric}}
	case models.KindTable:
		return models.EquipmentDetails{Table: &models.TableDetails{Material: DefaultTableMaterial, Seats: DefaultTableSeats}}
	case models.KindMicroscope:
		return models.EquipmentDetails{Microscope: &models.MicroscopeDetails{Magnification: DefaultMicroscopeMagnify}}
	default:
		return models.EquipmentDetails{General: &models.GeneralDetails{Category: rawType}}
	}
}
