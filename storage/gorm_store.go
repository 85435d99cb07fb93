package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"smart_apartment/models"
)

// GormStore хранилище в реляционной базе данных (PostgreSQL или SQLite)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore создает новый экземпляр GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Equipment возвращает репозиторий оборудования
func (s *GormStore) Equipment() Repository[models.Equipment] {
	return &gormRepository[models.Equipment]{db: s.db, entity: entityEquipment}
}

// WorkOrders возвращает репозиторий заявок
func (s *GormStore) WorkOrders() Repository[models.WorkOrder] {
	return &gormRepository[models.WorkOrder]{db: s.db, entity: entityWorkOrder}
}

// History возвращает репозиторий журнала изменений
func (s *GormStore) History() Repository[models.HistoryLog] {
	return &gormRepository[models.HistoryLog]{db: s.db, entity: entityHistory}
}

// Transaction выполняет fn в транзакции базы данных
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

type gormRepository[T Entity[T]] struct {
	db     *gorm.DB
	entity string
}

func (r *gormRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&items).Error; err != nil {
		return nil, persistenceError("ошибка при чтении "+r.entity, err)
	}
	return items, nil
}

func (r *gormRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var item T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, models.NewNotFoundError(r.entity, id)
	}
	if err != nil {
		return item, persistenceError("ошибка при поиске "+r.entity, err)
	}
	return item, nil
}

func (r *gormRepository[T]) Add(ctx context.Context, item T) error {
	var maxSeq int64
	if err := r.db.WithContext(ctx).Model(new(T)).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
		return persistenceError("ошибка при вычислении порядка "+r.entity, err)
	}

	item = item.WithPosition(maxSeq + 1)
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return persistenceError("ошибка при создании "+r.entity, err)
	}
	return nil
}

func (r *gormRepository[T]) Update(ctx context.Context, item T) error {
	existing, err := r.FindByID(ctx, item.EntityID())
	if err != nil {
		return err
	}

	item = item.WithPosition(existing.Position())
	if err := r.db.WithContext(ctx).Save(&item).Error; err != nil {
		return persistenceError("ошибка при обновлении "+r.entity, err)
	}
	return nil
}

func (r *gormRepository[T]) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return persistenceError("ошибка при удалении "+r.entity, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(r.entity, id)
	}
	return nil
}

// Save заменяет всю коллекцию переданным снимком
func (r *gormRepository[T]) Save(ctx context.Context, items []T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(new(T)).Error; err != nil {
			return persistenceError("ошибка при очистке "+r.entity, err)
		}
		if len(items) == 0 {
			return nil
		}

		rows := make([]T, len(items))
		for i, item := range items {
			rows[i] = item.WithPosition(int64(i + 1))
		}
		if err := tx.Create(&rows).Error; err != nil {
			return persistenceError("ошибка при сохранении "+r.entity, err)
		}
		return nil
	})
}
