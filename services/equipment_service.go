package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart_apartment/models"
	"smart_apartment/storage"
)

// EquipmentPatch частичное изменение оборудования. nil или пустое поле не меняется.
type EquipmentPatch struct {
	Name     *string          `json:"name,omitempty"`
	Type     *string          `json:"type,omitempty"`
	Location *string          `json:"location,omitempty"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`
}

// EquipmentService управляет жизненным циклом оборудования.
// Каждое изменение пишется в хранилище вместе с записью журнала в одной транзакции.
type EquipmentService struct {
	store   storage.Store
	factory *EquipmentFactory
	cache   *CacheService
	metrics *Metrics
	now     Clock

	// mu сериализует циклы чтение-изменение-запись над коллекцией оборудования
	mu sync.Mutex
}

// NewEquipmentService создает новый экземпляр EquipmentService
func NewEquipmentService(store storage.Store, factory *EquipmentFactory, cache *CacheService, metrics *Metrics) *EquipmentService {
	if factory == nil {
		factory = NewEquipmentFactory(false)
	}
	return &EquipmentService{
		store:   store,
		factory: factory,
		cache:   cache,
		metrics: metrics,
		now:     time.Now,
	}
}

// Factory возвращает фабрику оборудования
func (s *EquipmentService) Factory() *EquipmentFactory {
	return s.factory
}

// Register создает оборудование через фабрику и сохраняет его
func (s *EquipmentService) Register(ctx context.Context, typeName, name, location string, cost decimal.Decimal) (models.Equipment, error) {
	item, err := s.factory.Create(typeName, name, location, cost)
	if err != nil {
		return models.Equipment{}, err
	}
	item.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.store.Transaction(ctx, func(tx storage.Store) error {
		if err := tx.Equipment().Add(ctx, item); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, models.ActionCreate, item.ID, fmt.Sprintf("Added new %s: %s", item.TypeName(), item.Name))
	})
	if err != nil {
		return models.Equipment{}, fmt.Errorf("ошибка регистрации оборудования: %w", err)
	}

	s.afterMutation(ctx, "register")
	log.Printf("✅ Оборудование %s (%s) зарегистрировано в %s", item.Name, item.TypeName(), item.Location)
	return item, nil
}

// List возвращает все оборудование в порядке регистрации
func (s *EquipmentService) List(ctx context.Context) ([]models.Equipment, error) {
	items, err := s.store.Equipment().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка оборудования: %w", err)
	}
	return items, nil
}

// ListByStatus возвращает оборудование с указанным статусом
func (s *EquipmentService) ListByStatus(ctx context.Context, status models.EquipmentStatus) ([]models.Equipment, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Equipment, 0, len(items))
	for _, item := range items {
		if item.Status == status {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GetByID возвращает оборудование по идентификатору
func (s *EquipmentService) GetByID(ctx context.Context, id string) (models.Equipment, error) {
	if err := validateID("id", id); err != nil {
		return models.Equipment{}, err
	}
	return s.store.Equipment().FindByID(ctx, id)
}

// Edit применяет изменения к оборудованию. Смена типа заменяет вариант через фабрику,
// сохраняя ID, дату покупки, статус и стоимость.
func (s *EquipmentService) Edit(ctx context.Context, id string, patch EquipmentPatch) (models.Equipment, error) {
	if err := validateID("id", id); err != nil {
		return models.Equipment{}, err
	}
	if patch.Cost != nil && patch.Cost.IsNegative() {
		return models.Equipment{}, models.NewValidationError("cost", "стоимость не может быть отрицательной")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Equipment().FindByID(ctx, id)
	if err != nil {
		return models.Equipment{}, err
	}

	updated, changes, err := s.applyPatch(current, patch)
	if err != nil {
		return models.Equipment{}, err
	}
	if len(changes) == 0 {
		return current, nil
	}
	updated.UpdatedAt = s.now()

	err = s.store.Transaction(ctx, func(tx storage.Store) error {
		if err := tx.Equipment().Update(ctx, updated); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, models.ActionModify, updated.ID, "Updated: "+strings.Join(changes, ", "))
	})
	if err != nil {
		return models.Equipment{}, fmt.Errorf("ошибка изменения оборудования: %w", err)
	}

	s.afterMutation(ctx, "edit")
	log.Printf("✅ Оборудование %s обновлено: %s", updated.ID, strings.Join(changes, ", "))
	return updated, nil
}

// applyPatch возвращает измененную копию и список изменений вида "Name: a -> b"
func (s *EquipmentService) applyPatch(current models.Equipment, patch EquipmentPatch) (models.Equipment, []string, error) {
	var changes []string
	updated := current

	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name != "" && name != current.Name {
			updated.Name = name
			changes = append(changes, fmt.Sprintf("Name: %s -> %s", current.Name, name))
		}
	}
	if patch.Location != nil {
		if location := strings.TrimSpace(*patch.Location); location != "" && location != current.Location {
			updated.Location = location
			changes = append(changes, fmt.Sprintf("Location: %s -> %s", current.Location, location))
		}
	}
	if patch.Cost != nil && !patch.Cost.Equal(current.InitialCost) {
		updated.InitialCost = *patch.Cost
		changes = append(changes, fmt.Sprintf("Cost: %s -> %s", current.InitialCost.StringFixed(2), patch.Cost.StringFixed(2)))
	}

	if patch.Type == nil || strings.TrimSpace(*patch.Type) == "" {
		return updated, changes, nil
	}

	typeName := strings.TrimSpace(*patch.Type)
	changed, err := s.typeChanged(&current, typeName)
	if err != nil {
		return models.Equipment{}, nil, err
	}
	if !changed {
		return updated, changes, nil
	}

	replacement, err := s.factory.Create(typeName, updated.Name, updated.Location, updated.InitialCost)
	if err != nil {
		return models.Equipment{}, nil, err
	}
	replacement.ID = current.ID
	replacement.Seq = current.Seq
	replacement.PurchaseDate = current.PurchaseDate
	replacement.Status = current.Status
	changes = append(changes, fmt.Sprintf("Type: %s -> %s", current.TypeName(), replacement.TypeName()))

	return replacement, changes, nil
}

func (s *EquipmentService) typeChanged(current *models.Equipment, typeName string) (bool, error) {
	kind, err := s.factory.ResolveKind(typeName)
	if err != nil {
		return false, err
	}
	if kind != current.Kind {
		return true, nil
	}
	if kind == models.KindGeneral {
		return !strings.EqualFold(typeName, current.TypeName()), nil
	}
	return false, nil
}

// Delete удаляет оборудование. Заявки и журнал по нему сохраняются.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Equipment().FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx storage.Store) error {
		if err := tx.Equipment().Delete(ctx, id); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, models.ActionDelete, id, "Removed item: "+item.Name)
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления оборудования: %w", err)
	}

	s.afterMutation(ctx, "delete")
	log.Printf("✅ Оборудование %s удалено", item.Name)
	return nil
}

// UpdateStatus меняет статус оборудования. Повторная установка того же статуса ничего не пишет.
func (s *EquipmentService) UpdateStatus(ctx context.Context, id string, status models.EquipmentStatus) (models.Equipment, error) {
	updated, _, err := s.TransitionStatus(ctx, id, status)
	return updated, err
}

// TransitionStatus как UpdateStatus, но дополнительно сообщает, был ли статус изменен
func (s *EquipmentService) TransitionStatus(ctx context.Context, id string, status models.EquipmentStatus) (models.Equipment, bool, error) {
	if err := validateID("id", id); err != nil {
		return models.Equipment{}, false, err
	}
	if !status.IsValid() {
		return models.Equipment{}, false, models.NewValidationError("status", fmt.Sprintf("неизвестный статус: %q", status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated models.Equipment
	changed := false
	err := s.store.Transaction(ctx, func(tx storage.Store) error {
		item, err := tx.Equipment().FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = item
		if item.Status == status {
			return nil
		}
		if !models.CanTransition(item.Status, status) {
			return models.NewValidationError("status", fmt.Sprintf("переход %s -> %s недопустим", item.Status, status))
		}
		changed = true
		updated, err = s.setStatus(ctx, tx, item, status)
		return err
	})
	if err != nil {
		return models.Equipment{}, false, err
	}

	if changed {
		s.afterMutation(ctx, "status_change")
		log.Printf("✅ Статус %s изменен на %s", updated.Name, status)
	}
	return updated, changed, nil
}

// setStatus меняет статус и пишет журнал внутри транзакции tx. Вызывающий держит mu.
func (s *EquipmentService) setStatus(ctx context.Context, tx storage.Store, item models.Equipment, status models.EquipmentStatus) (models.Equipment, error) {
	item.Status = status
	item.UpdatedAt = s.now()
	if err := tx.Equipment().Update(ctx, item); err != nil {
		return models.Equipment{}, err
	}
	if err := s.appendHistory(ctx, tx, models.ActionStatusChange, item.ID, fmt.Sprintf("Status changed to %s", status)); err != nil {
		return models.Equipment{}, err
	}
	return item, nil
}

// GetStats возвращает количество оборудования по статусам
func (s *EquipmentService) GetStats(ctx context.Context) (models.EquipmentStats, error) {
	items, err := s.List(ctx)
	if err != nil {
		return models.EquipmentStats{}, err
	}

	var stats models.EquipmentStats
	for _, item := range items {
		switch item.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusFaulty:
			stats.Faulty++
		case models.StatusUnderRepair:
			stats.UnderRepair++
		}
	}
	return stats, nil
}

// GetFaultyItems возвращает оборудование, требующее внимания
func (s *EquipmentService) GetFaultyItems(ctx context.Context) ([]models.Equipment, error) {
	return s.ListByStatus(ctx, models.StatusFaulty)
}

// GetTotalInventoryValue возвращает суммарную стоимость оборудования
func (s *EquipmentService) GetTotalInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	items, err := s.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.InitialCost)
	}
	return total, nil
}

// ListHistory возвращает журнал изменений, новые записи первыми.
// Пустой targetID возвращает весь журнал.
func (s *EquipmentService) ListHistory(ctx context.Context, targetID string) ([]models.HistoryLog, error) {
	logs, err := s.store.History().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}

	result := make([]models.HistoryLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		if targetID == "" || logs[i].TargetID == targetID {
			result = append(result, logs[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (s *EquipmentService) appendHistory(ctx context.Context, tx storage.Store, action models.HistoryAction, targetID, details string) error {
	return tx.History().Add(ctx, models.HistoryLog{
		ID:        uuid.New().String(),
		Action:    action,
		TargetID:  targetID,
		Details:   details,
		Timestamp: s.now(),
	})
}

func (s *EquipmentService) afterMutation(ctx context.Context, operation string) {
	s.cache.InvalidateDashboard(ctx)
	s.metrics.RecordEquipmentOperation(operation)
}

// validateID проверяет формат идентификатора
func validateID(field, id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return models.NewValidationError(field, fmt.Sprintf("некорректный идентификатор: %q", id))
	}
	return nil
}
