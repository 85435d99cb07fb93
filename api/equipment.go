package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"smart_apartment/models"
	"smart_apartment/services"
)

// EquipmentAPI представляет API для работы с оборудованием
type EquipmentAPI struct {
	equipment   *services.EquipmentService
	maintenance *services.MaintenanceService
}

// NewEquipmentAPI создает новый экземпляр EquipmentAPI
func NewEquipmentAPI(equipment *services.EquipmentService, maintenance *services.MaintenanceService) *EquipmentAPI {
	return &EquipmentAPI{equipment: equipment, maintenance: maintenance}
}

// CreateEquipmentRequest данные для регистрации оборудования
type CreateEquipmentRequest struct {
	Type     string          `json:"type" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	Location string          `json:"location"`
	Cost     decimal.Decimal `json:"cost"`
}

// UpdateStatusRequest новый статус оборудования
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// MaintenanceRequest выбор стратегии и данные техника
type MaintenanceRequest struct {
	Strategy string          `json:"strategy" binding:"required"`
	Note     string          `json:"note"`
	Cost     decimal.Decimal `json:"cost"`
}

func (r MaintenanceRequest) params() services.MaintenanceParams {
	return services.MaintenanceParams{Note: r.Note, Cost: r.Cost}
}

// CreateEquipment регистрирует новое оборудование
func (api *EquipmentAPI) CreateEquipment(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректные данные: "+err.Error())
		return
	}

	item, err := api.equipment.Register(c.Request.Context(), req.Type, req.Name, req.Location, req.Cost)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, item)
}

// GetEquipment возвращает список оборудования, опционально по статусу
func (api *EquipmentAPI) GetEquipment(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseEquipmentStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		items, err := api.equipment.ListByStatus(ctx, status)
		if err != nil {
			respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, items)
		return
	}

	items, err := api.equipment.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, items)
}

// GetFaultyEquipment возвращает оборудование, требующее внимания
func (api *EquipmentAPI) GetFaultyEquipment(c *gin.Context) {
	items, err := api.equipment.GetFaultyItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, items)
}

// GetEquipmentItem возвращает оборудование по ID
func (api *EquipmentAPI) GetEquipmentItem(c *gin.Context) {
	item, err := api.equipment.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, item)
}

// UpdateEquipment применяет частичные изменения
func (api *EquipmentAPI) UpdateEquipment(c *gin.Context) {
	var patch services.EquipmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "Некорректные данные: "+err.Error())
		return
	}

	item, err := api.equipment.Edit(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, item)
}

// DeleteEquipment удаляет оборудование
func (api *EquipmentAPI) DeleteEquipment(c *gin.Context) {
	if err := api.equipment.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Оборудование удалено"})
}

// UpdateStatus меняет статус оборудования
func (api *EquipmentAPI) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректные данные: "+err.Error())
		return
	}
	status, err := models.ParseEquipmentStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := api.equipment.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, item)
}

// PerformMaintenance обслуживает оборудование выбранной стратегией
func (api *EquipmentAPI) PerformMaintenance(c *gin.Context) {
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректные данные: "+err.Error())
		return
	}

	outcome, err := api.maintenance.PerformMaintenance(c.Request.Context(), c.Param("id"), req.Strategy, req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, outcome)
}

// GetMaintenanceHistory возвращает заявки по оборудованию
func (api *EquipmentAPI) GetMaintenanceHistory(c *gin.Context) {
	orders, err := api.maintenance.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, orders)
}
