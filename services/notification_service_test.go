package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_apartment/models"
	"smart_apartment/testutils"
)

type fakeSender struct {
	chatID   string
	messages []string
	err      error
}

func (s *fakeSender) SendMessage(chatID, message string) error {
	s.chatID = chatID
	s.messages = append(s.messages, message)
	return s.err
}

func TestNotificationCenter_DeliversInOrderAndIsolatesFailures(t *testing.T) {
	center := NewNotificationCenter(nil)
	var order []string

	center.Subscribe(ObserverFunc{ObserverName: "first", Fn: func(ctx context.Context, message string) error {
		order = append(order, "first:"+message)
		return nil
	}})
	center.Subscribe(ObserverFunc{ObserverName: "failing", Fn: func(ctx context.Context, message string) error {
		return errors.New("smtp down")
	}})
	center.Subscribe(ObserverFunc{ObserverName: "panicking", Fn: func(ctx context.Context, message string) error {
		panic("boom")
	}})
	center.Subscribe(ObserverFunc{ObserverName: "last", Fn: func(ctx context.Context, message string) error {
		order = append(order, "last:"+message)
		return nil
	}})

	results := center.NotifyAll(context.Background(), "hello")

	assert.Equal(t, []string{"first:hello", "last:hello"}, order)
	require.Len(t, results, 4)
	assert.True(t, results[0].Delivered())
	assert.Equal(t, "smtp down", results[1].Error)
	assert.Contains(t, results[2].Error, "boom")
	assert.True(t, results[3].Delivered())
	assert.Equal(t, []string{"first", "failing", "panicking", "last"}, center.Observers())
}

func TestNotificationCenter_NilAndEmpty(t *testing.T) {
	var center *NotificationCenter
	assert.Nil(t, center.NotifyAll(context.Background(), "x"))

	assert.Empty(t, NewNotificationCenter(nil).NotifyAll(context.Background(), "x"))
}

func TestNotificationCenter_RecordsDeliveryLog(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	center := NewNotificationCenter(&GormDeliveryLog{DB: db})
	center.Subscribe(LogObserver{})
	center.Subscribe(&TelegramObserver{ChatID: "42"})
	center.Subscribe(&ManagerObserver{ManagerName: "Anna", Email: "anna@apartment.local"})
	center.Subscribe(&TechnicianObserver{Phone: "+70000000000"})

	results := center.NotifyAll(context.Background(), "Audit Alert")
	require.Len(t, results, 4)
	assert.Equal(t, "42", results[1].Recipient)

	var logs []models.NotificationLog
	require.NoError(t, db.Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 4)
	assert.Equal(t, "log", logs[0].Channel)
	assert.Empty(t, logs[0].Recipient)
	assert.Equal(t, models.NotificationStatusSent, logs[0].Status)
	assert.Equal(t, "telegram", logs[1].Channel)
	assert.Equal(t, "42", logs[1].Recipient)
	assert.Equal(t, models.NotificationStatusFailed, logs[1].Status)
	assert.NotEmpty(t, logs[1].ErrorMessage)
	assert.Equal(t, "anna@apartment.local", logs[2].Recipient)
	assert.Equal(t, "+70000000000", logs[3].Recipient)
}

func TestObservers(t *testing.T) {
	ctx := context.Background()

	manager := &ManagerObserver{ManagerName: "Anna"}
	assert.Equal(t, "manager", manager.Name())
	assert.Equal(t, "Anna", manager.Recipient())
	assert.NoError(t, manager.Notify(ctx, "msg"))

	technician := &TechnicianObserver{Phone: "+70000000000"}
	assert.Equal(t, "technician", technician.Name())
	assert.NoError(t, technician.Notify(ctx, "msg"))

	sender := &fakeSender{}
	telegram := &TelegramObserver{Sender: sender, ChatID: "100"}
	require.NoError(t, telegram.Notify(ctx, "msg"))
	assert.Equal(t, "100", sender.chatID)
	assert.Equal(t, []string{"msg"}, sender.messages)

	sender.err = errors.New("rate limited")
	assert.Error(t, telegram.Notify(ctx, "again"))
}
