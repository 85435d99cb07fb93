package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"smart_apartment/config"
	"smart_apartment/middleware"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=3,max=64"`
}

// AuthAPI выдает токены управляющему
type AuthAPI struct {
	cfg  config.AuthConfig
	auth *middleware.AuthMiddleware
}

// NewAuthAPI создает новый экземпляр AuthAPI
func NewAuthAPI(cfg config.AuthConfig, auth *middleware.AuthMiddleware) *AuthAPI {
	return &AuthAPI{cfg: cfg, auth: auth}
}

// IssueToken проверяет учетные данные управляющего и выдает JWT
func (api *AuthAPI) IssueToken(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректные данные: "+err.Error())
		return
	}

	if api.cfg.ManagerPasswordHash == "" || req.Username != api.cfg.ManagerUsername {
		log.Printf("⚠️ Неудачная попытка входа: %s", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(api.cfg.ManagerPasswordHash), []byte(req.Password)); err != nil {
		log.Printf("⚠️ Неверный пароль для %s", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Invalid credentials"})
		return
	}

	token, expiresAt, err := api.auth.IssueToken(req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("✅ Выдан токен для %s", req.Username)
	respondSuccess(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}
