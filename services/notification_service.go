package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"sync"
	"time"

	"gorm.io/gorm"

	"smart_apartment/models"
)

// Observer получатель широковещательных уведомлений
type Observer interface {
	Name() string
	Notify(ctx context.Context, message string) error
}

// Addressed подписчик с адресом доставки (email, телефон, чат)
type Addressed interface {
	Recipient() string
}

// recipientOf возвращает адрес подписчика или пустую строку
func recipientOf(observer Observer) string {
	if addressed, ok := observer.(Addressed); ok {
		return addressed.Recipient()
	}
	return ""
}

// Notifier рассылает сообщение всем подписчикам
type Notifier interface {
	NotifyAll(ctx context.Context, message string) []DeliveryResult
}

// ObserverFunc адаптер функции к Observer
type ObserverFunc struct {
	ObserverName string
	Fn           func(ctx context.Context, message string) error
}

func (o ObserverFunc) Name() string { return o.ObserverName }

func (o ObserverFunc) Notify(ctx context.Context, message string) error {
	return o.Fn(ctx, message)
}

// DeliveryResult результат доставки одному подписчику
type DeliveryResult struct {
	Observer  string `json:"observer"`
	Recipient string `json:"recipient,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Delivered проверяет, что доставка прошла без ошибки
func (r DeliveryResult) Delivered() bool {
	return r.Error == ""
}

// DeliveryLog журнал доставки уведомлений
type DeliveryLog interface {
	Record(ctx context.Context, entry models.NotificationLog) error
}

// GormDeliveryLog хранит журнал доставки в базе данных
type GormDeliveryLog struct {
	DB *gorm.DB
}

// Record сохраняет запись о доставке
func (l *GormDeliveryLog) Record(ctx context.Context, entry models.NotificationLog) error {
	return l.DB.WithContext(ctx).Create(&entry).Error
}

// NotificationCenter рассылает сообщения подписчикам в порядке подписки.
// Ошибка или паника одного подписчика не мешает доставке остальным.
type NotificationCenter struct {
	mu          sync.RWMutex
	observers   []Observer
	deliveryLog DeliveryLog
}

// NewNotificationCenter создает новый экземпляр NotificationCenter
func NewNotificationCenter(deliveryLog DeliveryLog) *NotificationCenter {
	return &NotificationCenter{deliveryLog: deliveryLog}
}

// Subscribe добавляет подписчика
func (nc *NotificationCenter) Subscribe(observer Observer) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	nc.observers = append(nc.observers, observer)
}

// Observers возвращает имена подписчиков
func (nc *NotificationCenter) Observers() []string {
	nc.mu.RLock()
	defer nc.mu.RUnlock()

	names := make([]string, len(nc.observers))
	for i, o := range nc.observers {
		names[i] = o.Name()
	}
	return names
}

// NotifyAll синхронно доставляет сообщение каждому подписчику
func (nc *NotificationCenter) NotifyAll(ctx context.Context, message string) []DeliveryResult {
	if nc == nil {
		return nil
	}

	nc.mu.RLock()
	observers := make([]Observer, len(nc.observers))
	copy(observers, nc.observers)
	nc.mu.RUnlock()

	results := make([]DeliveryResult, 0, len(observers))
	for _, observer := range observers {
		result := DeliveryResult{Observer: observer.Name(), Recipient: recipientOf(observer)}
		if err := deliver(ctx, observer, message); err != nil {
			result.Error = err.Error()
			log.Printf("⚠️ Уведомление для %s не доставлено: %v", observer.Name(), err)
		}
		nc.record(ctx, observer.Name(), message, result)
		results = append(results, result)
	}
	return results
}

func deliver(ctx context.Context, observer Observer, message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника в подписчике: %v", r)
		}
	}()
	return observer.Notify(ctx, message)
}

func (nc *NotificationCenter) record(ctx context.Context, channel, message string, result DeliveryResult) {
	if nc.deliveryLog == nil {
		return
	}

	entry := models.NotificationLog{
		CreatedAt: time.Now(),
		Channel:   channel,
		Recipient: result.Recipient,
		Message:   message,
		Status:    models.NotificationStatusSent,
	}
	if !result.Delivered() {
		entry.Status = models.NotificationStatusFailed
		entry.ErrorMessage = result.Error
	}
	if err := nc.deliveryLog.Record(ctx, entry); err != nil {
		log.Printf("⚠️ Не удалось сохранить журнал уведомлений: %v", err)
	}
}

// SMTPSettings настройки почтового сервера
type SMTPSettings struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

// ManagerObserver уведомляет управляющего по email.
// Без SMTP хоста сообщение только пишется в лог.
type ManagerObserver struct {
	ManagerName string
	Email       string
	SMTP        SMTPSettings
}

func (o *ManagerObserver) Name() string { return "manager" }

// Recipient адрес email, без него имя управляющего
func (o *ManagerObserver) Recipient() string {
	if o.Email != "" {
		return o.Email
	}
	return o.ManagerName
}

func (o *ManagerObserver) Notify(ctx context.Context, message string) error {
	if o.SMTP.Host == "" || o.Email == "" {
		log.Printf("📧 [Email to Manager %s]: %s", o.ManagerName, message)
		return nil
	}
	return sendEmail(o.SMTP, o.Email, "Smart Apartment alert", message)
}

// TechnicianObserver уведомляет техника по SMS
type TechnicianObserver struct {
	Phone string
}

func (o *TechnicianObserver) Name() string { return "technician" }

func (o *TechnicianObserver) Recipient() string { return o.Phone }

func (o *TechnicianObserver) Notify(ctx context.Context, message string) error {
	// SMS провайдер не подключен, сообщение пишется в лог
	log.Printf("📱 [SMS to Technician %s]: %s", o.Phone, message)
	return nil
}

// MessageSender отправляет текст в чат
type MessageSender interface {
	SendMessage(chatID, message string) error
}

// TelegramObserver уведомляет чат Telegram
type TelegramObserver struct {
	Sender MessageSender
	ChatID string
}

func (o *TelegramObserver) Name() string { return "telegram" }

func (o *TelegramObserver) Recipient() string { return o.ChatID }

func (o *TelegramObserver) Notify(ctx context.Context, message string) error {
	if o.Sender == nil {
		return fmt.Errorf("Telegram клиент не настроен")
	}
	return o.Sender.SendMessage(o.ChatID, message)
}

// LogObserver пишет уведомления в журнал приложения
type LogObserver struct{}

func (LogObserver) Name() string { return "log" }

func (LogObserver) Notify(ctx context.Context, message string) error {
	log.Printf("🔔 %s", message)
	return nil
}

// sendEmail отправляет письмо через SMTP
func sendEmail(settings SMTPSettings, recipient, subject, body string) error {
	auth := smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)

	msg := fmt.Sprintf("From: %s <%s>\r\n", settings.FromName, settings.FromEmail)
	msg += fmt.Sprintf("To: %s\r\n", recipient)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "Content-Type: text/plain; charset=UTF-8\r\n"
	msg += "\r\n"
	msg += body

	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)

	if !settings.UseTLS {
		if err := smtp.SendMail(addr, auth, settings.FromEmail, []string{recipient}, []byte(msg)); err != nil {
			return fmt.Errorf("ошибка отправки email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: settings.Host})
	if err != nil {
		return fmt.Errorf("ошибка TLS подключения: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, settings.Host)
	if err != nil {
		return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации: %w", err)
	}
	if err = client.Mail(settings.FromEmail); err != nil {
		return fmt.Errorf("ошибка установки отправителя: %w", err)
	}
	if err = client.Rcpt(recipient); err != nil {
		return fmt.Errorf("ошибка установки получателя: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка получения writer: %w", err)
	}
	if _, err = w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}
	return w.Close()
}
