package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/adapters/store"
	"github.com/supportops/feedback-triage/internal/config"
	"github.com/supportops/feedback-triage/internal/core"
)

// StoreFactory creates document stores
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{cfg: cfg, logger: logger}
}

// CreateDocumentStore creates a new document store based on the configuration
func (f *StoreFactory) CreateDocumentStore() (core.DocumentStore, error) {
	storageConfig := f.cfg.GetStorage()

	switch storageConfig.Type {
	case "fs":
		return store.NewFSStore(storageConfig.Dir, f.logger)
	case "sqlite":
		return store.NewSQLiteStore(storageConfig.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(storageConfig.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageConfig.Type)
	}
}
