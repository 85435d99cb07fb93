package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart_apartment/services"
)

// DashboardAPI сводка, журнал изменений и ручной аудит
type DashboardAPI struct {
	dashboard *services.DashboardService
	equipment *services.EquipmentService
	audit     *services.AuditScheduler
}

// NewDashboardAPI создает новый экземпляр DashboardAPI
func NewDashboardAPI(dashboard *services.DashboardService, equipment *services.EquipmentService, audit *services.AuditScheduler) *DashboardAPI {
	return &DashboardAPI{dashboard: dashboard, equipment: equipment, audit: audit}
}

// GetDashboard возвращает сводку по оборудованию и заявкам
func (api *DashboardAPI) GetDashboard(c *gin.Context) {
	summary, err := api.dashboard.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, summary)
}

// GetHistory возвращает журнал изменений, опционально по target_id
func (api *DashboardAPI) GetHistory(c *gin.Context) {
	logs, err := api.equipment.ListHistory(c.Request.Context(), c.Query("target_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, logs)
}

// RunAudit запускает ежедневный аудит немедленно
func (api *DashboardAPI) RunAudit(c *gin.Context) {
	report, err := api.audit.RunAudit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, report)
}
