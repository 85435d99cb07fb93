package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"smart_apartment/config"
	"smart_apartment/middleware"
	"smart_apartment/services"
)

// Dependencies сервисы, необходимые HTTP слою
type Dependencies struct {
	Config        *config.Config
	DB            *gorm.DB
	Redis         *redis.Client
	Equipment     *services.EquipmentService
	Maintenance   *services.MaintenanceService
	Dashboard     *services.DashboardService
	Reports       *services.ReportService
	Audit         *services.AuditScheduler
	Notifications *services.NotificationCenter
	Telegram      *services.TelegramClient
	Cache         *services.CacheService
	Metrics       *services.Metrics
}

// SetupRouter настраивает маршруты приложения
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORS)))
	r.Use(middleware.RequestMetrics(deps.Metrics))

	// Базовые роуты
	r.GET("/ping", func(c *gin.Context) {
		cacheStats, _ := deps.Cache.GetCacheStats(c.Request.Context())
		payload := gin.H{
			"status":  "success",
			"message": "pong",
			"storage": cfg.Storage.Backend,
			"cache":   cacheStats,
		}
		if deps.Telegram != nil {
			payload["telegram"] = deps.Telegram.IsHealthy()
		}
		c.JSON(http.StatusOK, payload)
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	auth := middleware.NewAuthMiddleware(cfg.JWT, cfg.Auth.Enabled)
	authAPI := NewAuthAPI(cfg.Auth, auth)
	equipmentAPI := NewEquipmentAPI(deps.Equipment, deps.Maintenance)
	workOrderAPI := NewWorkOrderAPI(deps.Maintenance)
	dashboardAPI := NewDashboardAPI(deps.Dashboard, deps.Equipment, deps.Audit)
	reportsAPI := NewReportsAPI(deps.Reports)
	notificationAPI := NewNotificationAPI(deps.DB, deps.Notifications)

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.APIRateLimit(deps.Redis, cfg.Security))

	apiGroup.POST("/auth/token", middleware.AuthRateLimit(deps.Redis), authAPI.IssueToken)

	// Чтение доступно без токена
	apiGroup.GET("/equipment", equipmentAPI.GetEquipment)
	apiGroup.GET("/equipment/faulty", equipmentAPI.GetFaultyEquipment)
	apiGroup.GET("/equipment/:id", equipmentAPI.GetEquipmentItem)
	apiGroup.GET("/equipment/:id/workorders", equipmentAPI.GetMaintenanceHistory)
	apiGroup.GET("/workorders", workOrderAPI.GetWorkOrders)
	apiGroup.GET("/strategies", workOrderAPI.GetStrategies)
	apiGroup.GET("/history", dashboardAPI.GetHistory)
	apiGroup.GET("/dashboard", dashboardAPI.GetDashboard)
	apiGroup.GET("/reports/:kind", reportsAPI.DownloadReport)
	apiGroup.GET("/notifications", notificationAPI.GetNotificationLogs)
	apiGroup.GET("/notifications/observers", notificationAPI.GetObservers)

	protected := apiGroup.Group("")
	protected.Use(auth.RequireAuth())
	{
		protected.POST("/equipment", equipmentAPI.CreateEquipment)
		protected.PUT("/equipment/:id", equipmentAPI.UpdateEquipment)
		protected.DELETE("/equipment/:id", equipmentAPI.DeleteEquipment)
		protected.PUT("/equipment/:id/status", equipmentAPI.UpdateStatus)
		protected.POST("/equipment/:id/maintenance", equipmentAPI.PerformMaintenance)

		protected.POST("/workorders", workOrderAPI.ReportFault)
		protected.PATCH("/workorders/:id/start", workOrderAPI.StartWorkOrder)
		protected.PATCH("/workorders/:id/complete", workOrderAPI.CompleteWorkOrder)

		protected.POST("/audit/run", dashboardAPI.RunAudit)
	}

	return r
}

func corsConfig(c config.CORSConfig) cors.Config {
	result := cors.Config{
		AllowMethods:     c.AllowedMethods,
		AllowHeaders:     c.AllowedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           time.Duration(c.MaxAge) * time.Second,
	}

	allowAll := len(c.AllowedOrigins) == 0
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		result.AllowAllOrigins = true
	} else {
		result.AllowOrigins = c.AllowedOrigins
	}
	return result
}
