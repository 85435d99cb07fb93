package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart_apartment/models"
)

func setupGormStore(t *testing.T) Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Одно соединение, иначе каждая новая сессия получит свою пустую базу
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Equipment{}, &models.WorkOrder{}, &models.HistoryLog{})
	require.NoError(t, err)

	return NewGormStore(db)
}

func setupFileStore(t *testing.T) Store {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// forEachBackend запускает тест на обоих хранилищах
func forEachBackend(t *testing.T, fn func(t *testing.T, store Store)) {
	backends := map[string]func(t *testing.T) Store{
		"gorm": setupGormStore,
		"file": setupFileStore,
	}
	for name, setup := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, setup(t))
		})
	}
}

func newEquipment(name string) models.Equipment {
	return models.Equipment{
		ID:           uuid.New().String(),
		Name:         name,
		Kind:         models.KindRouter,
		Details:      models.EquipmentDetails{Router: &models.RouterDetails{IPAddress: "192.168.0.1", SSID: "SmartApartment"}},
		Location:     "Room 1",
		PurchaseDate: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		InitialCost:  decimal.NewFromInt(120),
		Status:       models.StatusActive,
	}
}

func TestRepository_AddAndFindAllPreservesOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		names := []string{"R1", "R2", "R3"}
		for _, name := range names {
			require.NoError(t, store.Equipment().Add(ctx, newEquipment(name)))
		}

		items, err := store.Equipment().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		for i, name := range names {
			assert.Equal(t, name, items[i].Name)
		}
	})
}

func TestRepository_FindByIDRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		eq := newEquipment("R1")
		require.NoError(t, store.Equipment().Add(ctx, eq))

		found, err := store.Equipment().FindByID(ctx, eq.ID)
		require.NoError(t, err)
		assert.Equal(t, eq.Name, found.Name)
		assert.Equal(t, models.KindRouter, found.Kind)
		require.NotNil(t, found.Details.Router)
		assert.Equal(t, "192.168.0.1", found.Details.Router.IPAddress)
		assert.True(t, eq.InitialCost.Equal(found.InitialCost))
		assert.True(t, eq.PurchaseDate.Equal(found.PurchaseDate))
	})
}

func TestRepository_MissingIDReturnsNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		missing := uuid.New().String()

		_, err := store.Equipment().FindByID(ctx, missing)
		assert.True(t, errors.Is(err, models.ErrNotFound))

		err = store.Equipment().Update(ctx, newEquipment("ghost"))
		assert.True(t, errors.Is(err, models.ErrNotFound))

		err = store.Equipment().Delete(ctx, missing)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestRepository_UpdateKeepsPosition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		first := newEquipment("R1")
		second := newEquipment("R2")
		require.NoError(t, store.Equipment().Add(ctx, first))
		require.NoError(t, store.Equipment().Add(ctx, second))

		first.Name = "R1 renamed"
		first.Status = models.StatusFaulty
		require.NoError(t, store.Equipment().Update(ctx, first))

		items, err := store.Equipment().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "R1 renamed", items[0].Name)
		assert.Equal(t, models.StatusFaulty, items[0].Status)
		assert.Equal(t, "R2", items[1].Name)
	})
}

func TestRepository_Delete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		eq := newEquipment("R1")
		require.NoError(t, store.Equipment().Add(ctx, eq))
		require.NoError(t, store.Equipment().Delete(ctx, eq.ID))

		items, err := store.Equipment().FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestRepository_SaveReplacesCollection(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Equipment().Add(ctx, newEquipment("old")))

		snapshot := []models.Equipment{newEquipment("A"), newEquipment("B")}
		require.NoError(t, store.Equipment().Save(ctx, snapshot))

		items, err := store.Equipment().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "A", items[0].Name)
		assert.Equal(t, "B", items[1].Name)

		require.NoError(t, store.Equipment().Save(ctx, nil))
		items, err = store.Equipment().FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestStore_TransactionRollback(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		eq := newEquipment("R1")
		require.NoError(t, store.Equipment().Add(ctx, eq))

		boom := errors.New("boom")
		err := store.Transaction(ctx, func(tx Store) error {
			changed := eq
			changed.Status = models.StatusFaulty
			if err := tx.Equipment().Update(ctx, changed); err != nil {
				return err
			}
			if err := tx.WorkOrders().Add(ctx, models.WorkOrder{
				ID:          uuid.New().String(),
				EquipmentID: eq.ID,
				Status:      models.WorkOrderPending,
				CreatedAt:   time.Now(),
			}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		found, err := store.Equipment().FindByID(ctx, eq.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, found.Status)

		orders, err := store.WorkOrders().FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestStore_TransactionCommit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		eq := newEquipment("R1")

		err := store.Transaction(ctx, func(tx Store) error {
			if err := tx.Equipment().Add(ctx, eq); err != nil {
				return err
			}
			return tx.History().Add(ctx, models.HistoryLog{
				ID:        uuid.New().String(),
				Action:    models.ActionCreate,
				TargetID:  eq.ID,
				Details:   "Added new Router: R1",
				Timestamp: time.Now(),
			})
		})
		require.NoError(t, err)

		history, err := store.History().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, eq.ID, history[0].TargetID)
	})
}

func TestFileStore_CreatesCollectionFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFileStore(dir)
	require.NoError(t, err)

	for _, name := range []string{EquipmentFileName, WorkOrderFileName, HistoryFileName} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	}
}

func TestFileStore_CorruptFileIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, EquipmentFileName), []byte("{not json"), 0644))

	_, err = store.Equipment().FindAll(context.Background())
	assert.True(t, errors.Is(err, models.ErrPersistence))
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	eq := newEquipment("R1")
	require.NoError(t, store.Equipment().Add(context.Background(), eq))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	found, err := reopened.Equipment().FindByID(context.Background(), eq.ID)
	require.NoError(t, err)
	assert.Equal(t, "R1", found.Name)
}
