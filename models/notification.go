package models

import "time"

// Статусы доставки уведомлений
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// NotificationLog представляет лог отправленных уведомлений
type NotificationLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`

	Channel      string `json:"channel" gorm:"not null;type:varchar(20)"` // email, sms, telegram, log
	Recipient    string `json:"recipient" gorm:"type:varchar(100)"`
	Message      string `json:"message" gorm:"type:text;not null"`
	Status       string `json:"status" gorm:"default:'sent';type:varchar(20)"`
	ErrorMessage string `json:"error_message" gorm:"type:text"`
}

// TableName задает имя таблицы для модели NotificationLog
func (NotificationLog) TableName() string {
	return "notification_logs"
}
