package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_apartment/config"
	"smart_apartment/storage"
)

func TestNewContainer(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		Audit:     config.AuditConfig{FaultProbability: 10, Cron: DefaultAuditSchedule, Enabled: true},
		Equipment: config.EquipmentConfig{StrictFactory: true},
		Notifications: config.NotificationsConfig{
			ManagerName:     "Manager",
			TechnicianPhone: "+70000000000",
		},
	}

	c := NewContainer(cfg, store, nil, nil)
	SetContainer(c)
	assert.Same(t, c, GetContainer())

	assert.Equal(t, []string{"manager", "technician"}, c.Notifications.Observers())
	assert.Nil(t, c.Telegram)
	assert.True(t, c.Equipment.Factory().Strict)
	assert.False(t, c.Cache.Enabled())

	require.NoError(t, c.StartBackground(context.Background(), cfg.Audit))
	assert.NotNil(t, c.Audit.NextRun())
	c.Shutdown()
}
