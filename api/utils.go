package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart_apartment/models"
)

// respondSuccess отправляет данные в стандартной обертке
func respondSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"status": "success",
		"data":   data,
	})
}

// respondError сопоставляет ошибку сервиса с HTTP статусом
func respondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		code = http.StatusBadRequest
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(code, gin.H{
		"status": "error",
		"error":  err.Error(),
	})
}

// respondBadRequest отправляет ошибку разбора запроса
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status": "error",
		"error":  message,
	})
}
