package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_apartment/models"
)

// sequenceRandom возвращает заранее заданные значения по кругу
type sequenceRandom struct {
	values []int
	pos    int
}

func (r *sequenceRandom) Intn(n int) int {
	v := r.values[r.pos%len(r.values)]
	r.pos++
	return v % n
}

func TestAuditScheduler_RunAudit(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	a := env.register(t, "Router", "A", "Hall", 1)
	b := env.register(t, "Chair", "B", "Kitchen", 1)
	c := env.register(t, "Table", "C", "Office", 1)
	_, err := env.equipment.UpdateStatus(ctx, c.ID, models.StatusFaulty)
	require.NoError(t, err)
	_, err = env.equipment.UpdateStatus(ctx, c.ID, models.StatusUnderRepair)
	require.NoError(t, err)

	// A: 5 < 10 ломается, B: 50 остается исправным, C не проверяется
	audit := NewAuditScheduler(env.equipment, env.notifier, &sequenceRandom{values: []int{5, 50}}, 10, env.metrics)

	report, err := audit.RunAudit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Checked)
	require.Len(t, report.Faults, 1)
	assert.Equal(t, a.ID, report.Faults[0].ID)

	stored, err := env.equipment.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFaulty, stored.Status)

	stored, err = env.equipment.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)

	stored, err = env.equipment.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderRepair, stored.Status)

	assert.Equal(t, []string{"Audit Alert: voltage spike detected in A (Hall)"}, env.notifier.Messages())
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.auditFaults))
}

// hookRandom вызывает before перед каждым значением
type hookRandom struct {
	before func()
	value  int
}

func (r *hookRandom) Intn(n int) int {
	if r.before != nil {
		r.before()
	}
	return r.value % n
}

func TestAuditScheduler_SkipsItemsChangedAfterSnapshot(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	faulted := env.register(t, "Router", "A", "Hall", 1)
	repaired := env.register(t, "Chair", "B", "Kitchen", 1)

	calls := 0
	random := &hookRandom{value: 0, before: func() {
		calls++
		switch calls {
		case 1:
			_, err := env.maintenance.ReportFault(ctx, faulted.ID, "reported while auditing")
			require.NoError(t, err)
		case 2:
			order, err := env.maintenance.ReportFault(ctx, repaired.ID, "")
			require.NoError(t, err)
			_, err = env.maintenance.StartWorkOrder(ctx, order.ID)
			require.NoError(t, err)
		}
	}}
	audit := NewAuditScheduler(env.equipment, env.notifier, random, 10, env.metrics)

	report, err := audit.RunAudit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Faults)
	assert.Equal(t, float64(0), testutil.ToFloat64(env.metrics.auditFaults))
	for _, message := range env.notifier.Messages() {
		assert.NotContains(t, message, "Audit Alert")
	}

	stored, err := env.equipment.GetByID(ctx, repaired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderRepair, stored.Status)
}

func TestAuditScheduler_ProbabilityBounds(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	env.register(t, "Router", "A", "Hall", 1)
	env.register(t, "Router", "B", "Hall", 1)

	never := NewAuditScheduler(env.equipment, nil, NewRandomSource(1), 0, nil)
	report, err := never.RunAudit(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Faults)

	always := NewAuditScheduler(env.equipment, nil, NewRandomSource(1), 100, nil)
	report, err = always.RunAudit(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Faults, 2)

	stats, err := env.equipment.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentStats{Faulty: 2}, stats)
}

func TestAuditScheduler_StartStop(t *testing.T) {
	env := setupServices(t)
	audit := NewAuditScheduler(env.equipment, nil, nil, 250, nil)
	assert.Equal(t, DefaultAuditProbability, audit.probability)

	assert.Error(t, audit.Start("not a cron"))

	require.NoError(t, audit.Start(""))
	assert.NotNil(t, audit.NextRun())
	assert.Error(t, audit.Start(""))

	audit.Stop()
	audit.Stop()
}
