package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"smart_apartment/models"
	"smart_apartment/services"
)

// NotificationAPI журнал доставки уведомлений и список подписчиков
type NotificationAPI struct {
	DB     *gorm.DB
	center *services.NotificationCenter
}

// NewNotificationAPI создает новый экземпляр NotificationAPI. db может быть nil для файлового хранилища.
func NewNotificationAPI(db *gorm.DB, center *services.NotificationCenter) *NotificationAPI {
	return &NotificationAPI{DB: db, center: center}
}

// GetNotificationLogs возвращает последние записи журнала доставки
func (api *NotificationAPI) GetNotificationLogs(c *gin.Context) {
	if api.DB == nil {
		respondSuccess(c, http.StatusOK, []models.NotificationLog{})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := api.DB.WithContext(c.Request.Context()).Order("created_at DESC, id DESC").Limit(limit)
	if channel := c.Query("channel"); channel != "" {
		query = query.Where("channel = ?", channel)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var logs []models.NotificationLog
	if err := query.Find(&logs).Error; err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, logs)
}

// GetObservers возвращает подписчиков уведомлений в порядке доставки
func (api *NotificationAPI) GetObservers(c *gin.Context) {
	observers := []string{}
	if api.center != nil {
		observers = api.center.Observers()
	}
	respondSuccess(c, http.StatusOK, observers)
}
