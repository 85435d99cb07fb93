package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_apartment/models"
)

func TestStrategies_RestoreActive(t *testing.T) {
	registry := NewStrategyRegistry()

	for _, name := range registry.Names() {
		t.Run(name, func(t *testing.T) {
			strategy, err := registry.Get(name)
			require.NoError(t, err)

			item := models.Equipment{Name: "R1", Status: models.StatusFaulty}
			result, err := strategy.Execute(&item, MaintenanceParams{Note: "fixed", Cost: decimal.NewFromInt(5)})
			require.NoError(t, err)

			assert.True(t, result.Success)
			assert.Equal(t, models.StatusActive, item.Status)
			assert.NotEmpty(t, result.Note)
		})
	}
}

func TestStrategies_Details(t *testing.T) {
	item := models.Equipment{Name: "M1", Status: models.StatusUnderRepair}

	result, err := FalseReportStrategy{}.Execute(&item, MaintenanceParams{})
	require.NoError(t, err)
	assert.Equal(t, "Verified False Report - Item Operational", result.Note)
	assert.True(t, result.Cost.IsZero())

	result, err = CombineRepairStrategy{}.Execute(&item, MaintenanceParams{Note: " replaced fuse ", Cost: decimal.NewFromInt(25)})
	require.NoError(t, err)
	assert.Equal(t, "replaced fuse", result.Note)
	assert.True(t, result.Cost.Equal(decimal.NewFromInt(25)))

	_, err = CombineRepairStrategy{}.Execute(&item, MaintenanceParams{Cost: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, models.ErrValidation)

	result, err = DeepRepairStrategy{}.Execute(&item, MaintenanceParams{})
	require.NoError(t, err)
	assert.Len(t, result.Steps, 4)
	assert.Contains(t, result.Note, "M1")
}

func TestStrategyRegistry_Lookup(t *testing.T) {
	registry := NewStrategyRegistry()

	assert.Equal(t, []string{"combine", "deep", "false", "inspect", "quick"}, registry.Names())

	for _, name := range []string{"QUICK", " quick ", "Inspection", "false-report", "False_Report"} {
		_, err := registry.Get(name)
		assert.NoError(t, err, name)
	}

	_, err := registry.Get("magic")
	assert.ErrorIs(t, err, models.ErrUnknownStrategy)
	assert.ErrorIs(t, err, models.ErrValidation)

	registry.Register("Custom Fix", QuickRepairStrategy{})
	strategy, err := registry.Get("custom-fix")
	require.NoError(t, err)
	assert.Equal(t, "quick", strategy.Name())
}
