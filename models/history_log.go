package models

import (
	"fmt"
	"time"
)

// HistoryAction тип изменения в журнале
type HistoryAction string

const (
	ActionCreate       HistoryAction = "Create"
	ActionModify       HistoryAction = "Modify"
	ActionDelete       HistoryAction = "Delete"
	ActionStatusChange HistoryAction = "StatusChange"
)

// HistoryLog запись журнала изменений. Записи только добавляются
// и переживают удаление оборудования, на которое ссылаются.
type HistoryLog struct {
	ID        string        `json:"id" gorm:"primarykey;type:varchar(36)"`
	Seq       int64         `json:"-" gorm:"index"`
	Action    HistoryAction `json:"action" gorm:"not null;type:varchar(20);index"`
	TargetID  string        `json:"target_id" gorm:"not null;type:varchar(36);index"`
	Details   string        `json:"details" gorm:"type:text"`
	Timestamp time.Time     `json:"timestamp" gorm:"index"`
}

// TableName задает имя таблицы для модели HistoryLog
func (HistoryLog) TableName() string {
	return "history_logs"
}

// EntityID возвращает идентификатор записи
func (h HistoryLog) EntityID() string {
	return h.ID
}

// Position возвращает порядковый номер вставки
func (h HistoryLog) Position() int64 {
	return h.Seq
}

// WithPosition возвращает копию с порядковым номером
func (h HistoryLog) WithPosition(seq int64) HistoryLog {
	h.Seq = seq
	return h
}

func (h HistoryLog) String() string {
	return fmt.Sprintf("[%s] %s: %s (ID: %s)", h.Timestamp.Format("2006-01-02 15:04:05"), h.Action, h.Details, h.TargetID)
}
