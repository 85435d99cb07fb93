package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_apartment/models"
)

func TestEquipmentFactory_Create(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	factory := &EquipmentFactory{Now: func() time.Time { return fixed }}

	tests := []struct {
		name     string
		typeName string
		wantKind models.EquipmentKind
		check    func(t *testing.T, d models.EquipmentDetails)
	}{
		{"router", "Router", models.KindRouter, func(t *testing.T, d models.EquipmentDetails) {
			require.NotNil(t, d.Router)
			assert.Equal(t, DefaultRouterIP, d.Router.IPAddress)
			assert.Equal(t, DefaultRouterSSID, d.Router.SSID)
		}},
		{"chair lowercase", "chair", models.KindChair, func(t *testing.T, d models.EquipmentDetails) {
			require.NotNil(t, d.Chair)
			assert.Equal(t, DefaultChairFabric, d.Chair.FabricType)
		}},
		{"table", "TABLE", models.KindTable, func(t *testing.T, d models.EquipmentDetails) {
			require.NotNil(t, d.Table)
			assert.Equal(t, DefaultTableSeats, d.Table.Seats)
		}},
		{"microscope", "Microscope", models.KindMicroscope, func(t *testing.T, d models.EquipmentDetails) {
			require.NotNil(t, d.Microscope)
			assert.Equal(t, DefaultMicroscopeMagnify, d.Microscope.Magnification)
		}},
		{"unknown falls back to general", "Lamp", models.KindGeneral, func(t *testing.T, d models.EquipmentDetails) {
			require.NotNil(t, d.General)
			assert.Equal(t, "Lamp", d.General.Category)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := factory.Create(tt.typeName, " Item ", "Room 1", decimal.NewFromInt(50))
			require.NoError(t, err)

			assert.NotEmpty(t, item.ID)
			assert.Equal(t, "Item", item.Name)
			assert.Equal(t, tt.wantKind, item.Kind)
			assert.Equal(t, models.StatusActive, item.Status)
			assert.Equal(t, fixed, item.PurchaseDate)
			tt.check(t, item.Details)
		})
	}
}

func TestEquipmentFactory_Validation(t *testing.T) {
	factory := NewEquipmentFactory(false)

	_, err := factory.Create("Router", "  ", "Room", decimal.Zero)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = factory.Create("Router", "R1", "Room", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = factory.Create("", "R1", "Room", decimal.Zero)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestEquipmentFactory_Strict(t *testing.T) {
	factory := NewEquipmentFactory(true)

	_, err := factory.Create("Lamp", "L1", "Hall", decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnknownType))
	assert.True(t, errors.Is(err, models.ErrValidation))

	item, err := factory.Create("router", "R1", "Hall", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, models.KindRouter, item.Kind)
}

func TestEquipmentFactory_UniqueIDs(t *testing.T) {
	factory := NewEquipmentFactory(false)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		item, err := factory.Create("Chair", "C", "Room", decimal.Zero)
		require.NoError(t, err)
		assert.False(t, seen[item.ID])
		seen[item.ID] = true
	}
}
