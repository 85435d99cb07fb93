package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"smart_apartment/models"
	"smart_apartment/storage"
	"smart_apartment/testutils"
)

// recordingNotifier запоминает разосланные сообщения
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) NotifyAll(ctx context.Context, message string) []DeliveryResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return []DeliveryResult{{Observer: "recorder"}}
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type testEnv struct {
	store       storage.Store
	equipment   *EquipmentService
	maintenance *MaintenanceService
	notifier    *recordingNotifier
	metrics     *Metrics
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	_, store := testutils.SetupTestStore(t)
	metrics := NewMetrics()
	notifier := &recordingNotifier{}
	equipment := NewEquipmentService(store, NewEquipmentFactory(false), nil, metrics)
	maintenance := NewMaintenanceService(store, equipment, NewStrategyRegistry(), notifier, nil, metrics)

	return &testEnv{
		store:       store,
		equipment:   equipment,
		maintenance: maintenance,
		notifier:    notifier,
		metrics:     metrics,
	}
}

func (e *testEnv) register(t *testing.T, typeName, name, location string, cost int64) models.Equipment {
	t.Helper()
	item, err := e.equipment.Register(context.Background(), typeName, name, location, decimal.NewFromInt(cost))
	require.NoError(t, err)
	return item
}

func strPtr(s string) *string { return &s }
