package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart_apartment/models"
	"smart_apartment/services"
)

// WorkOrderAPI представляет API для заявок на обслуживание
type WorkOrderAPI struct {
	maintenance *services.MaintenanceService
}

// NewWorkOrderAPI создает новый экземпляр WorkOrderAPI
func NewWorkOrderAPI(maintenance *services.MaintenanceService) *WorkOrderAPI {
	return &WorkOrderAPI{maintenance: maintenance}
}

// ReportFaultRequest сообщение о неисправности
type ReportFaultRequest struct {
	EquipmentID string `json:"equipment_id" binding:"required"`
	Description string `json:"description"`
}

// GetWorkOrders возвращает заявки, опционально по статусу
func (api *WorkOrderAPI) GetWorkOrders(c *gin.Context) {
	var status models.WorkOrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseWorkOrderStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		status = parsed
	}

	orders, err := api.maintenance.ListWorkOrders(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, orders)
}

// ReportFault создает заявку на неисправность
func (api *WorkOrderAPI) ReportFault(c *gin.Context) {
	var req ReportFaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректные данные: "+err.Error())
		return
	}

	order, err := api.maintenance.ReportFault(c.Request.Context(), req.EquipmentID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, order)
}

// StartWorkOrder берет заявку в работу
func (api *WorkOrderAPI) StartWorkOrder(c *gin.Context) {
	order, err := api.maintenance.StartWorkOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, order)
}

// CompleteWorkOrder закрывает заявку выбранной стратегией
func (api *WorkOrderAPI) CompleteWorkOrder(c *gin.Context) {
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректные данные: "+err.Error())
		return
	}

	outcome, err := api.maintenance.CompleteWorkOrder(c.Request.Context(), c.Param("id"), req.Strategy, req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, outcome)
}

// GetStrategies возвращает названия стратегий обслуживания
func (api *WorkOrderAPI) GetStrategies(c *gin.Context) {
	respondSuccess(c, http.StatusOK, api.maintenance.Strategies().Names())
}
