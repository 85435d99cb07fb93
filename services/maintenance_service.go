package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart_apartment/models"
	"smart_apartment/storage"
)

// RemovedEquipmentName подпись для заявок на удаленное оборудование
const RemovedEquipmentName = "item removed"

// WorkOrderView заявка с названием оборудования для отображения
type WorkOrderView struct {
	models.WorkOrder
	EquipmentName string `json:"equipment_name"`
}

// MaintenanceOutcome результат обслуживания
type MaintenanceOutcome struct {
	WorkOrder *models.WorkOrder  `json:"work_order,omitempty"`
	Equipment *models.Equipment  `json:"equipment,omitempty"`
	Result    MaintenanceResult `json:"result"`
}

// MaintenanceService управляет заявками на обслуживание
type MaintenanceService struct {
	store      storage.Store
	equipment  *EquipmentService
	strategies *StrategyRegistry
	notifier   Notifier
	cache      *CacheService
	metrics    *Metrics
	now        Clock
}

// NewMaintenanceService создает новый экземпляр MaintenanceService
func NewMaintenanceService(store storage.Store, equipment *EquipmentService, strategies *StrategyRegistry, notifier Notifier, cache *CacheService, metrics *Metrics) *MaintenanceService {
	if strategies == nil {
		strategies = NewStrategyRegistry()
	}
	return &MaintenanceService{
		store:      store,
		equipment:  equipment,
		strategies: strategies,
		notifier:   notifier,
		cache:      cache,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Strategies возвращает реестр стратегий
func (s *MaintenanceService) Strategies() *StrategyRegistry {
	return s.strategies
}

// ReportFault создает заявку и переводит исправное оборудование в Faulty
func (s *MaintenanceService) ReportFault(ctx context.Context, equipmentID, description string) (models.WorkOrder, error) {
	if err := validateID("equipment_id", equipmentID); err != nil {
		return models.WorkOrder{}, err
	}
	description = strings.TrimSpace(description)

	s.equipment.mu.Lock()

	var item models.Equipment
	statusChanged := false
	order := models.WorkOrder{
		ID:          uuid.New().String(),
		EquipmentID: equipmentID,
		Description: description,
		Status:      models.WorkOrderPending,
		CreatedAt:   s.now(),
		Cost:        decimal.Zero,
	}

	err := s.store.Transaction(ctx, func(tx storage.Store) error {
		var err error
		item, err = tx.Equipment().FindByID(ctx, equipmentID)
		if err != nil {
			return err
		}
		if err := tx.WorkOrders().Add(ctx, order); err != nil {
			return err
		}
		if item.Status.IsHealthy() {
			statusChanged = true
			item, err = s.equipment.setStatus(ctx, tx, item, models.StatusFaulty)
		}
		return err
	})
	s.equipment.mu.Unlock()

	if err != nil {
		return models.WorkOrder{}, err
	}

	s.cache.InvalidateDashboard(ctx)
	s.metrics.RecordWorkOrder(string(models.WorkOrderPending))
	if statusChanged {
		s.metrics.RecordEquipmentOperation("status_change")
	}
	log.Printf("⚠️ Зарегистрирована неисправность %s: %s", item.Name, description)

	s.notify(ctx, FaultMessage(item, description))
	return order, nil
}

// FaultMessage текст уведомления о неисправности
func FaultMessage(item models.Equipment, description string) string {
	message := fmt.Sprintf("Fault Reported: %s in %s is broken!", item.Name, item.Location)
	if description != "" {
		message += fmt.Sprintf(" (%s)", description)
	}
	return message
}

// StartWorkOrder переводит заявку в работу, оборудование Faulty становится UnderRepair
func (s *MaintenanceService) StartWorkOrder(ctx context.Context, workOrderID string) (models.WorkOrder, error) {
	if err := validateID("id", workOrderID); err != nil {
		return models.WorkOrder{}, err
	}

	s.equipment.mu.Lock()
	defer s.equipment.mu.Unlock()

	var order models.WorkOrder
	err := s.store.Transaction(ctx, func(tx storage.Store) error {
		var err error
		order, err = tx.WorkOrders().FindByID(ctx, workOrderID)
		if err != nil {
			return err
		}
		if order.Status != models.WorkOrderPending {
			return models.NewValidationError("status", fmt.Sprintf("заявка в статусе %s не может быть взята в работу", order.Status))
		}

		item, err := tx.Equipment().FindByID(ctx, order.EquipmentID)
		if err != nil {
			return err
		}

		startedAt := s.now()
		order.Status = models.WorkOrderInProgress
		order.StartedAt = &startedAt
		if err := tx.WorkOrders().Update(ctx, order); err != nil {
			return err
		}

		if item.Status == models.StatusFaulty {
			_, err = s.equipment.setStatus(ctx, tx, item, models.StatusUnderRepair)
		}
		return err
	})
	if err != nil {
		return models.WorkOrder{}, err
	}

	s.cache.InvalidateDashboard(ctx)
	s.metrics.RecordWorkOrder(string(models.WorkOrderInProgress))
	log.Printf("✅ Заявка %s взята в работу", order.ID)
	return order, nil
}

// CompleteWorkOrder закрывает заявку выбранной стратегией и возвращает оборудование в Active.
// Для исправного оборудования ничего не пишется, результат помечается как пропущенный.
func (s *MaintenanceService) CompleteWorkOrder(ctx context.Context, workOrderID, strategyName string, params MaintenanceParams) (MaintenanceOutcome, error) {
	if err := validateID("id", workOrderID); err != nil {
		return MaintenanceOutcome{}, err
	}
	strategy, err := s.strategies.Get(strategyName)
	if err != nil {
		return MaintenanceOutcome{}, err
	}

	s.equipment.mu.Lock()
	defer s.equipment.mu.Unlock()

	order, err := s.store.WorkOrders().FindByID(ctx, workOrderID)
	if err != nil {
		return MaintenanceOutcome{}, err
	}
	if order.Status == models.WorkOrderCompleted {
		return MaintenanceOutcome{}, models.NewValidationError("status", fmt.Sprintf("заявка %s уже закрыта", order.ID))
	}

	item, err := s.store.Equipment().FindByID(ctx, order.EquipmentID)
	if err != nil {
		return MaintenanceOutcome{}, err
	}

	return s.complete(ctx, item, &order, strategy, params)
}

// PerformMaintenance обслуживает оборудование: закрывает самую старую открытую заявку
// или создает закрытую заявку, если открытых нет.
func (s *MaintenanceService) PerformMaintenance(ctx context.Context, equipmentID, strategyName string, params MaintenanceParams) (MaintenanceOutcome, error) {
	if err := validateID("equipment_id", equipmentID); err != nil {
		return MaintenanceOutcome{}, err
	}
	strategy, err := s.strategies.Get(strategyName)
	if err != nil {
		return MaintenanceOutcome{}, err
	}

	s.equipment.mu.Lock()
	defer s.equipment.mu.Unlock()

	item, err := s.store.Equipment().FindByID(ctx, equipmentID)
	if err != nil {
		return MaintenanceOutcome{}, err
	}

	orders, err := s.store.WorkOrders().FindAll(ctx)
	if err != nil {
		return MaintenanceOutcome{}, err
	}
	var open *models.WorkOrder
	for i := range orders {
		if orders[i].EquipmentID == equipmentID && orders[i].IsOpen() {
			open = &orders[i]
			break
		}
	}

	return s.complete(ctx, item, open, strategy, params)
}

// complete применяет стратегию. order == nil создает новую закрытую заявку. Вызывающий держит mu.
func (s *MaintenanceService) complete(ctx context.Context, item models.Equipment, order *models.WorkOrder, strategy MaintenanceStrategy, params MaintenanceParams) (MaintenanceOutcome, error) {
	if item.Status.IsHealthy() {
		warning := fmt.Sprintf("%s is already Active. Maintenance skipped", item.Name)
		log.Printf("⚠️ %s", warning)
		outcome := MaintenanceOutcome{
			Equipment: &item,
			Result:    MaintenanceResult{Skipped: true, Warning: warning, Cost: decimal.Zero},
		}
		if order == nil {
			return outcome, nil
		}
		closed, err := s.closeOrder(ctx, *order, strategy, warning)
		if err != nil {
			return MaintenanceOutcome{}, err
		}
		outcome.WorkOrder = &closed
		return outcome, nil
	}

	repaired := item
	result, err := strategy.Execute(&repaired, params)
	if err != nil {
		return MaintenanceOutcome{}, err
	}

	completedAt := s.now()
	isNew := order == nil
	if isNew {
		order = &models.WorkOrder{
			ID:          uuid.New().String(),
			EquipmentID: item.ID,
			Description: fmt.Sprintf("Performed %s maintenance", strategy.Name()),
			CreatedAt:   completedAt,
		}
	}
	order.Status = models.WorkOrderCompleted
	order.CompletedAt = &completedAt
	order.StrategyUsed = strategy.Name()
	order.TechnicianNote = result.Note
	order.Cost = result.Cost

	err = s.store.Transaction(ctx, func(tx storage.Store) error {
		if isNew {
			if err := tx.WorkOrders().Add(ctx, *order); err != nil {
				return err
			}
		} else if err := tx.WorkOrders().Update(ctx, *order); err != nil {
			return err
		}

		var err error
		repaired, err = s.equipment.setStatus(ctx, tx, item, repaired.Status)
		return err
	})
	if err != nil {
		return MaintenanceOutcome{}, fmt.Errorf("ошибка закрытия заявки: %w", err)
	}

	s.cache.InvalidateDashboard(ctx)
	s.metrics.RecordWorkOrder(string(models.WorkOrderCompleted))
	s.metrics.RecordEquipmentOperation("status_change")
	log.Printf("✅ %s обслужено стратегией %s, стоимость %s", item.Name, strategy.Name(), result.Cost.StringFixed(2))

	return MaintenanceOutcome{WorkOrder: order, Equipment: &repaired, Result: result}, nil
}

// closeOrder закрывает заявку без изменения статуса оборудования и без записи в журнал
func (s *MaintenanceService) closeOrder(ctx context.Context, order models.WorkOrder, strategy MaintenanceStrategy, note string) (models.WorkOrder, error) {
	completedAt := s.now()
	order.Status = models.WorkOrderCompleted
	order.CompletedAt = &completedAt
	order.StrategyUsed = strategy.Name()
	order.TechnicianNote = note
	order.Cost = decimal.Zero

	if err := s.store.WorkOrders().Update(ctx, order); err != nil {
		return models.WorkOrder{}, fmt.Errorf("ошибка закрытия заявки: %w", err)
	}

	s.cache.InvalidateDashboard(ctx)
	s.metrics.RecordWorkOrder(string(models.WorkOrderCompleted))
	log.Printf("✅ Заявка %s закрыта, оборудование уже исправно", order.ID)
	return order, nil
}

// GetHistory возвращает заявки по оборудованию, новые первыми.
// Работает и для удаленного оборудования.
func (s *MaintenanceService) GetHistory(ctx context.Context, equipmentID string) ([]models.WorkOrder, error) {
	if err := validateID("equipment_id", equipmentID); err != nil {
		return nil, err
	}

	orders, err := s.store.WorkOrders().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заявок: %w", err)
	}

	history := make([]models.WorkOrder, 0)
	for i := len(orders) - 1; i >= 0; i-- {
		if orders[i].EquipmentID == equipmentID {
			history = append(history, orders[i])
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	return history, nil
}

// ListWorkOrders возвращает заявки с названиями оборудования. Пустой статус возвращает все.
func (s *MaintenanceService) ListWorkOrders(ctx context.Context, status models.WorkOrderStatus) ([]WorkOrderView, error) {
	orders, err := s.store.WorkOrders().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заявок: %w", err)
	}
	items, err := s.store.Equipment().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения оборудования: %w", err)
	}

	names := make(map[string]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	views := make([]WorkOrderView, 0, len(orders))
	for _, order := range orders {
		if status != "" && order.Status != status {
			continue
		}
		name, ok := names[order.EquipmentID]
		if !ok {
			name = RemovedEquipmentName
		}
		views = append(views, WorkOrderView{WorkOrder: order, EquipmentName: name})
	}
	return views, nil
}

// GetTotalMaintenanceCost возвращает сумму затрат по закрытым заявкам
func (s *MaintenanceService) GetTotalMaintenanceCost(ctx context.Context) (decimal.Decimal, error) {
	orders, err := s.store.WorkOrders().FindAll(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка чтения заявок: %w", err)
	}

	total := decimal.Zero
	for _, order := range orders {
		if order.Status == models.WorkOrderCompleted {
			total = total.Add(order.Cost)
		}
	}
	return total, nil
}

func (s *MaintenanceService) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyAll(ctx, message)
}
