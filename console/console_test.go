package console

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_apartment/config"
	"smart_apartment/models"
	"smart_apartment/services"
	"smart_apartment/storage"
)

func init() {
	color.NoColor = true
}

func newTestContainer(t *testing.T) *services.Container {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return services.NewContainer(&config.Config{Audit: config.AuditConfig{FaultProbability: 100}}, store, nil, nil)
}

func runConsole(t *testing.T, container *services.Container, input string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(strings.NewReader(input), &out, container.Equipment, container.Maintenance, container.Audit)
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestConsole_AddAndViewInventory(t *testing.T) {
	container := newTestContainer(t)

	out := runConsole(t, container, "2\nRouter\nR1\nRoom 1\n150\n3\n10\n")
	assert.Contains(t, out, "[Success] [Router] R1 (IP 192.168.0.1, SSID SmartApartment) added")
	assert.Contains(t, out, "Active | Room 1 | $150.00")

	items, err := container.Equipment.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].InitialCost.Equal(decimal.NewFromInt(150)))
}

func TestConsole_FaultAndMaintenance(t *testing.T) {
	container := newTestContainer(t)
	ctx := context.Background()
	item, err := container.Equipment.Register(ctx, "Chair", "C1", "Hall", decimal.NewFromInt(20))
	require.NoError(t, err)

	input := fmt.Sprintf("4\n%s\nbroken leg\n1\n5\n%s\ncombine\nglued\n12.5\n7\n%s\n10\n", item.ID, item.ID, item.ID)
	out := runConsole(t, container, input)

	assert.Contains(t, out, "[Reported] Work order")
	assert.Contains(t, out, "Reported Faults:   1  <-- URGENT")
	assert.Contains(t, out, "[!] C1 in Hall")
	assert.Contains(t, out, "[Success] C1 is Active again (glued)")
	assert.Contains(t, out, "Strategy: combine | Cost: $12.50 | Note: glued")

	stored, err := container.Equipment.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestConsole_MaintenanceOnHealthyItemWarns(t *testing.T) {
	container := newTestContainer(t)
	item, err := container.Equipment.Register(context.Background(), "Table", "T1", "Kitchen", decimal.Zero)
	require.NoError(t, err)

	out := runConsole(t, container, fmt.Sprintf("5\n%s\nquick\n", item.ID))
	assert.Contains(t, out, "[Warning] T1 is already Active. Maintenance skipped")
}

func TestConsole_EditDeleteAndErrors(t *testing.T) {
	container := newTestContainer(t)
	ctx := context.Background()
	item, err := container.Equipment.Register(ctx, "Router", "R1", "Room 1", decimal.NewFromInt(10))
	require.NoError(t, err)

	input := fmt.Sprintf("8\n%s\n\nTable\n\n\n9\n%s\nyes\n9\nnot-an-id\n42\n", item.ID, item.ID)
	out := runConsole(t, container, input)

	assert.Contains(t, out, "[Success] [Table] R1 (Wood, 4 seats) updated")
	assert.Contains(t, out, "[Success] Item removed.")
	assert.Contains(t, out, "[Error] id: Invalid ID format.")
	assert.Contains(t, out, "Invalid option.")

	_, err = container.Equipment.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConsole_AuditAndEmptyDashboard(t *testing.T) {
	container := newTestContainer(t)

	out := runConsole(t, container, "1\n")
	assert.Contains(t, out, "[OK] No current system faults.")

	_, err := container.Equipment.Register(context.Background(), "Microscope", "M1", "Lab", decimal.Zero)
	require.NoError(t, err)

	out = runConsole(t, container, "6\n")
	assert.Contains(t, out, "Audit checked 1 of 1 items")
	assert.Contains(t, out, "[ALERT] Voltage spike detected in M1 (Lab)")
}

func TestRootCmd_Subcommands(t *testing.T) {
	container := newTestContainer(t)
	_, err := container.Equipment.Register(context.Background(), "Lamp", "L1", "Hall", decimal.NewFromInt(5))
	require.NoError(t, err)

	factory := func() (*services.Container, error) { return container, nil }

	run := func(args ...string) string {
		var out bytes.Buffer
		cmd := NewRootCmd(factory, strings.NewReader(""))
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return out.String()
	}

	assert.Contains(t, run("list"), "[Lamp] L1")
	assert.Contains(t, run("stats"), "Active Items:      1")
	assert.Contains(t, run("list", "--status", "active"), "L1")
	assert.Contains(t, run("audit"), "[ALERT]")
	assert.NotContains(t, run("list", "--status", "active"), "L1")
	assert.Contains(t, run("menu"), "=== Smart Apartment System ===")
}
