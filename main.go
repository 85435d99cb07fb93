package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"smart_apartment/api"
	"smart_apartment/config"
	"smart_apartment/database"
	"smart_apartment/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	cfg.LogConfig()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, db, err := database.OpenStore(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка подключения к хранилищу: %v", err)
	}

	redisClient, err := database.InitRedis(cfg)
	if err != nil {
		log.Printf("⚠️ %v, продолжаем без кэша", err)
	}
	defer database.CloseRedis()

	container := services.NewContainer(cfg, store, db, redisClient)
	services.SetContainer(container)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.StartBackground(ctx, cfg.Audit); err != nil {
		log.Fatalf("❌ Ошибка запуска планировщика аудита: %v", err)
	}
	defer container.Shutdown()

	router := api.SetupRouter(api.Dependencies{
		Config:        cfg,
		DB:            db,
		Redis:         redisClient,
		Equipment:     container.Equipment,
		Maintenance:   container.Maintenance,
		Dashboard:     container.Dashboard,
		Reports:       container.Reports,
		Audit:         container.Audit,
		Notifications: container.Notifications,
		Telegram:      container.Telegram,
		Cache:         container.Cache,
		Metrics:       container.Metrics,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Сервер запущен на порту %s", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Ошибка сервера: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Ошибка остановки сервера: %v", err)
	}
}
