package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"smart_apartment/models"
)

// Имена файлов коллекций
const (
	EquipmentFileName = "equipment_db.txt"
	WorkOrderFileName = "maintenance_log.txt"
	HistoryFileName   = "history_log.txt"
)

// FileStore хранилище в плоских JSON файлах.
// Каждая операция читает и перезаписывает файл коллекции целиком.
type FileStore struct {
	dir  string
	mu   sync.Mutex // защищает чтение/запись файлов
	txMu sync.Mutex // сериализует транзакции

	equipment  *fileRepository[models.Equipment]
	workOrders *fileRepository[models.WorkOrder]
	history    *fileRepository[models.HistoryLog]
}

// NewFileStore создает каталог данных и пустые файлы коллекций
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, persistenceError("не удалось создать каталог данных", err)
	}

	s := &FileStore{dir: dir}
	s.equipment = &fileRepository[models.Equipment]{path: filepath.Join(dir, EquipmentFileName), entity: entityEquipment, mu: &s.mu}
	s.workOrders = &fileRepository[models.WorkOrder]{path: filepath.Join(dir, WorkOrderFileName), entity: entityWorkOrder, mu: &s.mu}
	s.history = &fileRepository[models.HistoryLog]{path: filepath.Join(dir, HistoryFileName), entity: entityHistory, mu: &s.mu}

	for _, path := range s.paths() {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
				return nil, persistenceError("не удалось создать файл "+path, err)
			}
		}
	}

	return s, nil
}

// Dir возвращает каталог данных
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) paths() []string {
	return []string{s.equipment.path, s.workOrders.path, s.history.path}
}

// Equipment возвращает репозиторий оборудования
func (s *FileStore) Equipment() Repository[models.Equipment] {
	return s.equipment
}

// WorkOrders возвращает репозиторий заявок
func (s *FileStore) WorkOrders() Repository[models.WorkOrder] {
	return s.workOrders
}

// History возвращает репозиторий журнала изменений
func (s *FileStore) History() Repository[models.HistoryLog] {
	return s.history
}

// Transaction делает снимок всех файлов и восстанавливает его, если fn вернула ошибку
func (s *FileStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot, err := s.snapshot()
	if err != nil {
		return err
	}

	if err := fn(&fileTx{store: s}); err != nil {
		if restoreErr := s.restore(snapshot); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return nil
}

func (s *FileStore) snapshot() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string][]byte, 3)
	for _, path := range s.paths() {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, persistenceError("не удалось прочитать "+path, err)
		}
		snapshot[path] = data
	}
	return snapshot, nil
}

func (s *FileStore) restore(snapshot map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for path, data := range snapshot {
		if data == nil {
			data = []byte("[]")
		}
		if err := writeFileAtomic(path, data); err != nil {
			return persistenceError("не удалось восстановить "+path, err)
		}
	}
	return nil
}

// fileTx представление хранилища внутри транзакции; вложенные транзакции выполняются сразу
type fileTx struct {
	store *FileStore
}

func (t *fileTx) Equipment() Repository[models.Equipment]   { return t.store.equipment }
func (t *fileTx) WorkOrders() Repository[models.WorkOrder]  { return t.store.workOrders }
func (t *fileTx) History() Repository[models.HistoryLog]    { return t.store.history }
func (t *fileTx) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

type fileRepository[T Entity[T]] struct {
	path   string
	entity string
	mu     *sync.Mutex
}

func (r *fileRepository[T]) load() ([]T, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, persistenceError("ошибка при чтении "+r.entity, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, persistenceError("поврежден файл "+r.path, err)
	}
	for i := range items {
		items[i] = items[i].WithPosition(int64(i + 1))
	}
	return items, nil
}

func (r *fileRepository[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return persistenceError("ошибка сериализации "+r.entity, err)
	}
	if err := writeFileAtomic(r.path, data); err != nil {
		return persistenceError("ошибка при записи "+r.entity, err)
	}
	return nil
}

func (r *fileRepository[T]) indexOf(items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (r *fileRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *fileRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	items, err := r.load()
	if err != nil {
		return zero, err
	}
	if i := r.indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return zero, models.NewNotFoundError(r.entity, id)
}

func (r *fileRepository[T]) Add(ctx context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return err
	}
	if r.indexOf(items, item.EntityID()) >= 0 {
		return persistenceError("ошибка при создании "+r.entity, fmt.Errorf("дублирующийся id %s", item.EntityID()))
	}
	items = append(items, item.WithPosition(int64(len(items)+1)))
	return r.write(items)
}

func (r *fileRepository[T]) Update(ctx context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return err
	}
	i := r.indexOf(items, item.EntityID())
	if i < 0 {
		return models.NewNotFoundError(r.entity, item.EntityID())
	}
	items[i] = item.WithPosition(items[i].Position())
	return r.write(items)
}

func (r *fileRepository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return err
	}
	i := r.indexOf(items, id)
	if i < 0 {
		return models.NewNotFoundError(r.entity, id)
	}
	items = append(items[:i], items[i+1:]...)
	return r.write(items)
}

func (r *fileRepository[T]) Save(ctx context.Context, items []T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(items)
}

// writeFileAtomic записывает файл через временный файл и переименование
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
