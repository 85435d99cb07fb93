package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"smart_apartment/models"
)

// MaintenanceParams данные техника для стратегии
type MaintenanceParams struct {
	Note string          `json:"note"`
	Cost decimal.Decimal `json:"cost"`
}

// MaintenanceResult результат выполнения стратегии
type MaintenanceResult struct {
	Success bool            `json:"success"`
	Note    string          `json:"note"`
	Cost    decimal.Decimal `json:"cost"`
	Steps   []string        `json:"steps,omitempty"`
	Skipped bool            `json:"skipped"`
	Warning string          `json:"warning,omitempty"`
}

// MaintenanceStrategy процедура обслуживания. Любая стратегия переводит оборудование в Active.
type MaintenanceStrategy interface {
	Name() string
	Execute(equipment *models.Equipment, params MaintenanceParams) (MaintenanceResult, error)
}

// QuickRepairStrategy быстрый ремонт без затрат
type QuickRepairStrategy struct{}

func (QuickRepairStrategy) Name() string { return "quick" }

func (QuickRepairStrategy) Execute(equipment *models.Equipment, _ MaintenanceParams) (MaintenanceResult, error) {
	equipment.Status = models.StatusActive
	return MaintenanceResult{
		Success: true,
		Note:    "Quick repair: system rebooted, filter cleaned",
		Cost:    decimal.Zero,
		Steps:   []string{"Rebooting system", "Cleaning filter"},
	}, nil
}

// InspectionStrategy проверка на ложную тревогу
type InspectionStrategy struct{}

func (InspectionStrategy) Name() string { return "inspect" }

func (InspectionStrategy) Execute(equipment *models.Equipment, _ MaintenanceParams) (MaintenanceResult, error) {
	equipment.Status = models.StatusActive
	return MaintenanceResult{
		Success: true,
		Note:    "Inspection: no fault found",
		Cost:    decimal.Zero,
		Steps:   []string{"Verifying hardware integrity"},
	}, nil
}

// FalseReportStrategy подтверждение ложного сообщения о неисправности
type FalseReportStrategy struct{}

func (FalseReportStrategy) Name() string { return "false" }

func (FalseReportStrategy) Execute(equipment *models.Equipment, _ MaintenanceParams) (MaintenanceResult, error) {
	equipment.Status = models.StatusActive
	return MaintenanceResult{
		Success: true,
		Note:    "Verified False Report - Item Operational",
		Cost:    decimal.Zero,
	}, nil
}

// CombineRepairStrategy полный ремонт с заметкой техника и стоимостью
type CombineRepairStrategy struct{}

func (CombineRepairStrategy) Name() string { return "combine" }

func (CombineRepairStrategy) Execute(equipment *models.Equipment, params MaintenanceParams) (MaintenanceResult, error) {
	if params.Cost.IsNegative() {
		return MaintenanceResult{}, models.NewValidationError("cost", "стоимость не может быть отрицательной")
	}
	equipment.Status = models.StatusActive
	return MaintenanceResult{
		Success: true,
		Note:    strings.TrimSpace(params.Note),
		Cost:    params.Cost,
	}, nil
}

// DeepRepairStrategy многоэтапный капитальный ремонт
type DeepRepairStrategy struct{}

func (DeepRepairStrategy) Name() string { return "deep" }

func (DeepRepairStrategy) Execute(equipment *models.Equipment, _ MaintenanceParams) (MaintenanceResult, error) {
	equipment.Status = models.StatusActive
	return MaintenanceResult{
		Success: true,
		Note:    fmt.Sprintf("Deep repair complete. Device %s is fully restored", equipment.Name),
		Cost:    decimal.Zero,
		Steps: []string{
			"[1/4] Disassembling housing",
			"[2/4] Cleaning internal components",
			"[3/4] Replacing worn gaskets/circuits",
			"[4/4] Reassembling and calibrating",
		},
	}, nil
}

// StrategyRegistry реестр стратегий по имени
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[string]MaintenanceStrategy
	aliases    map[string]string
}

// NewStrategyRegistry создает реестр со стандартными стратегиями
func NewStrategyRegistry() *StrategyRegistry {
	r := &StrategyRegistry{
		strategies: make(map[string]MaintenanceStrategy),
		aliases: map[string]string{
			"inspection":  "inspect",
			"falsereport": "false",
		},
	}
	for _, s := range []MaintenanceStrategy{
		QuickRepairStrategy{},
		InspectionStrategy{},
		FalseReportStrategy{},
		CombineRepairStrategy{},
		DeepRepairStrategy{},
	} {
		r.Register(s.Name(), s)
	}
	return r
}

// Register добавляет или заменяет стратегию
func (r *StrategyRegistry) Register(name string, strategy MaintenanceStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[normalizeStrategyName(name)] = strategy
}

func normalizeStrategyName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
}

// Get возвращает стратегию по имени без учета регистра
func (r *StrategyRegistry) Get(name string) (MaintenanceStrategy, error) {
	key := normalizeStrategyName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if alias, ok := r.aliases[key]; ok {
		key = alias
	}
	strategy, ok := r.strategies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStrategy, name)
	}
	return strategy, nil
}

// Names возвращает отсортированный список зарегистрированных стратегий
func (r *StrategyRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
