package services

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"smart_apartment/config"
	"smart_apartment/storage"
)

// Container сервисы приложения, собранные из конфигурации
type Container struct {
	Store         storage.Store
	DB            *gorm.DB
	Redis         *redis.Client
	Metrics       *Metrics
	Cache         *CacheService
	Notifications *NotificationCenter
	Telegram      *TelegramClient
	Equipment     *EquipmentService
	Maintenance   *MaintenanceService
	Dashboard     *DashboardService
	Reports       *ReportService
	Audit         *AuditScheduler
}

// Глобальная переменная для контейнера сервисов
var GlobalContainer *Container

// GetContainer возвращает глобальный контейнер сервисов
func GetContainer() *Container {
	return GlobalContainer
}

// SetContainer устанавливает глобальный контейнер сервисов
func SetContainer(container *Container) {
	GlobalContainer = container
}

// NewContainer собирает сервисы. db и redisClient могут быть nil.
func NewContainer(cfg *config.Config, store storage.Store, db *gorm.DB, redisClient *redis.Client) *Container {
	c := &Container{
		Store:   store,
		DB:      db,
		Redis:   redisClient,
		Metrics: NewMetrics(),
		Cache:   NewCacheService(redisClient, nil),
	}

	var deliveryLog DeliveryLog
	if db != nil {
		deliveryLog = &GormDeliveryLog{DB: db}
	}
	c.Notifications = NewNotificationCenter(deliveryLog)

	c.Equipment = NewEquipmentService(store, NewEquipmentFactory(cfg.Equipment.StrictFactory), c.Cache, c.Metrics)
	c.Maintenance = NewMaintenanceService(store, c.Equipment, NewStrategyRegistry(), c.Notifications, c.Cache, c.Metrics)
	c.Dashboard = NewDashboardService(c.Equipment, c.Maintenance, c.Cache)
	c.Reports = NewReportService(c.Equipment, c.Maintenance)
	c.Audit = NewAuditScheduler(c.Equipment, c.Notifications, nil, cfg.Audit.FaultProbability, c.Metrics)

	c.subscribeObservers(cfg.Notifications)
	return c
}

func (c *Container) subscribeObservers(cfg config.NotificationsConfig) {
	c.Notifications.Subscribe(&ManagerObserver{
		ManagerName: cfg.ManagerName,
		Email:       cfg.ManagerEmail,
		SMTP: SMTPSettings{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.User,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.From,
			FromName:  cfg.SMTP.FromName,
			UseTLS:    cfg.SMTP.TLS,
		},
	})
	c.Notifications.Subscribe(&TechnicianObserver{Phone: cfg.TechnicianPhone})

	if cfg.TelegramBotToken == "" {
		return
	}
	client, err := NewTelegramClient(cfg.TelegramBotToken, NewTelegramCommands(c.Equipment))
	if err != nil {
		log.Printf("⚠️ Telegram недоступен: %v", err)
		return
	}
	c.Telegram = client
	if cfg.TelegramChatID != "" {
		c.Notifications.Subscribe(&TelegramObserver{Sender: client, ChatID: cfg.TelegramChatID})
	}
}

// StartBackground запускает плановый аудит и прием команд Telegram
func (c *Container) StartBackground(ctx context.Context, auditCfg config.AuditConfig) error {
	if auditCfg.Enabled {
		if err := c.Audit.Start(auditCfg.Cron); err != nil {
			return err
		}
	}
	if c.Telegram != nil {
		go c.Telegram.Listen(ctx)
	}
	return nil
}

// Shutdown останавливает фоновые задачи
func (c *Container) Shutdown() {
	c.Audit.Stop()
}
