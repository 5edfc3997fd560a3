package purchases

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var noOpLogger = zap.NewNop()

// StoreConfig describes the dependencies of a Store.
type StoreConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Store persists purchase records in a single append-only table.
// Writes are serialized; id assignment is delegated to the table's autoincrement key.
//
// A Store knows nothing about feeds: Insert commits without publishing a
// snapshot. Subscribers only see every commit when writes go through
// Service.InsertPurchase.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// NewStore constructs a Store over an already migrated database handle.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opStoreNew, "missing_database", errMissingDatabase)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Store{db: cfg.Database, logger: logger}, nil
}

// Insert durably appends a record and returns it with its assigned id.
// No snapshot is published; use Service.InsertPurchase when a feed is attached.
func (s *Store) Insert(ctx context.Context, input PurchaseInput) (Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, _, err := s.insertLocked(ctx, input, false)
	return record, err
}

// ListAll returns every committed record, newest first. An empty store yields an empty slice.
func (s *Store) ListAll(ctx context.Context) ([]Purchase, error) {
	records, err := listOrdered(s.db.WithContext(ctx))
	if err != nil {
		return nil, newStorageError(opListAll, "query_failed", err)
	}
	return records, nil
}

// insertLocked must be called with s.mu held. When withSnapshot is set, the full
// ordered listing is read inside the same transaction, so it is exactly the state
// the commit produces.
func (s *Store) insertLocked(ctx context.Context, input PurchaseInput, withSnapshot bool) (Purchase, []Purchase, error) {
	if input.isZero() {
		return Purchase{}, nil, newServiceError(opInsert, "missing_input", errMissingInput)
	}

	record := input.record()
	var snapshot []Purchase
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return newStorageError(opInsert, "create_failed", err)
		}
		if !withSnapshot {
			return nil
		}
		listed, err := listOrdered(tx)
		if err != nil {
			return newStorageError(opInsert, "snapshot_failed", err)
		}
		snapshot = listed
		return nil
	})
	if txErr != nil {
		var serviceErr *ServiceError
		if !errors.As(txErr, &serviceErr) {
			txErr = newStorageError(opInsert, "commit_failed", txErr)
		}
		return Purchase{}, nil, txErr
	}

	s.logger.Debug("purchase committed", zap.Int64("purchase_id", record.ID))
	return record, snapshot, nil
}

func listOrdered(db *gorm.DB) ([]Purchase, error) {
	records := make([]Purchase, 0)
	if err := db.Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
