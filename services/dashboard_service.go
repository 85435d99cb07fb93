package services

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"smart_apartment/models"
)

// DashboardSummary сводка для главного экрана
type DashboardSummary struct {
	Active          int                `json:"active"`
	Faulty          int                `json:"faulty"`
	UnderRepair     int                `json:"under_repair"`
	Total           int                `json:"total"`
	TotalAssetValue decimal.Decimal    `json:"total_asset_value"`
	TotalRepairCost decimal.Decimal    `json:"total_repair_cost"`
	OpenWorkOrders  int                `json:"open_work_orders"`
	FaultyItems     []models.Equipment `json:"faulty_items"`
}

// DashboardService собирает сводку с кэшированием в Redis
type DashboardService struct {
	equipment   *EquipmentService
	maintenance *MaintenanceService
	cache       *CacheService
}

// NewDashboardService создает новый экземпляр DashboardService
func NewDashboardService(equipment *EquipmentService, maintenance *MaintenanceService, cache *CacheService) *DashboardService {
	return &DashboardService{equipment: equipment, maintenance: maintenance, cache: cache}
}

// Summary возвращает сводку, при наличии берет ее из кэша
func (ds *DashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	var cached DashboardSummary
	err := ds.cache.GetJSON(ctx, DashboardCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("⚠️ Ошибка чтения кэша дашборда: %v", err)
	}

	summary, err := ds.build(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}

	if err := ds.cache.SetJSON(ctx, DashboardCacheKey, summary, CacheTTLShort); err != nil {
		log.Printf("⚠️ Не удалось закэшировать дашборд: %v", err)
	}
	return summary, nil
}

func (ds *DashboardService) build(ctx context.Context) (DashboardSummary, error) {
	stats, err := ds.equipment.GetStats(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	value, err := ds.equipment.GetTotalInventoryValue(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	faulty, err := ds.equipment.GetFaultyItems(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	repairCost, err := ds.maintenance.GetTotalMaintenanceCost(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	orders, err := ds.maintenance.ListWorkOrders(ctx, "")
	if err != nil {
		return DashboardSummary{}, err
	}

	open := 0
	for _, order := range orders {
		if order.IsOpen() {
			open++
		}
	}

	return DashboardSummary{
		Active:          stats.Active,
		Faulty:          stats.Faulty,
		UnderRepair:     stats.UnderRepair,
		Total:           stats.Total(),
		TotalAssetValue: value,
		TotalRepairCost: repairCost,
		OpenWorkOrders:  open,
		FaultyItems:     faulty,
	}, nil
}
