package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"smart_apartment/config"
	"smart_apartment/storage"
)

// OpenStore открывает хранилище, выбранное в STORAGE_BACKEND.
// Для файлового хранилища возвращаемая база равна nil.
func OpenStore(cfg *config.Config) (storage.Store, *gorm.DB, error) {
	switch cfg.Storage.Backend {
	case config.StorageFile:
		store, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("✅ Файловое хранилище: %s", store.Dir())
		return store, nil, nil
	case config.StorageDatabase:
		if err := ConnectDatabase(cfg); err != nil {
			return nil, nil, err
		}
		return storage.NewGormStore(DB), DB, nil
	default:
		return nil, nil, fmt.Errorf("неизвестный бэкенд хранилища: %s", cfg.Storage.Backend)
	}
}
