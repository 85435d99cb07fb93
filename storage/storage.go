// Package storage содержит репозитории коллекций оборудования, заявок и журнала.
// Сервисы зависят только от интерфейса Store, конкретное хранилище
// (база данных через gorm или плоские JSON файлы) выбирается при запуске.
package storage

import (
	"context"
	"fmt"

	"smart_apartment/models"
)

// Entity запись коллекции с идентификатором и порядком вставки
type Entity[T any] interface {
	EntityID() string
	Position() int64
	WithPosition(seq int64) T
}

// Repository операции над одной коллекцией.
// FindAll возвращает записи в порядке вставки.
type Repository[T Entity[T]] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, error)
	Add(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	Save(ctx context.Context, items []T) error
}

// Store набор коллекций приложения
type Store interface {
	Equipment() Repository[models.Equipment]
	WorkOrders() Repository[models.WorkOrder]
	History() Repository[models.HistoryLog]

	// Transaction выполняет fn атомарно: либо сохраняются все записи, либо ни одна
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// Имена сущностей для сообщений об ошибках
const (
	entityEquipment = "equipment"
	entityWorkOrder = "work order"
	entityHistory   = "history log"
)

// persistenceError оборачивает ошибку хранилища в ErrPersistence
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrPersistence, op, err)
}
