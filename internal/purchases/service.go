package purchases

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceConfig describes the dependencies of the purchase service.
type ServiceConfig struct {
	Database       *gorm.DB
	Logger         *zap.Logger
	FeedBufferSize int
}

// Service is the entry point for recording purchases and observing the ledger.
type Service struct {
	store  *Store
	feed   *Feed
	logger *zap.Logger
}

// NewService composes a Store and a Feed over the provided database handle.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	store, err := NewStore(StoreConfig{Database: cfg.Database, Logger: logger})
	if err != nil {
		return nil, err
	}

	return &Service{
		store:  store,
		feed:   NewFeed(FeedConfig{BufferSize: cfg.FeedBufferSize, Logger: logger}),
		logger: logger,
	}, nil
}

// InsertPurchase durably records a purchase and publishes the resulting snapshot
// before returning. On failure nothing is published.
func (s *Service) InsertPurchase(ctx context.Context, input PurchaseInput) (Purchase, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, snapshot, err := s.store.insertLocked(ctx, input, true)
	if err != nil {
		s.logError(opInsert, err, zap.String("buyer", input.Buyer()))
		return Purchase{}, err
	}

	published := s.feed.Publish(snapshot)
	s.logger.Info("purchase recorded",
		zap.Int64("purchase_id", record.ID),
		zap.Uint64("feed_version", published.Version),
		zap.Int("purchase_count", len(snapshot)))
	return record, nil
}

// ListPurchases returns every committed purchase, newest first.
func (s *Service) ListPurchases(ctx context.Context) ([]Purchase, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		s.logError(opListAll, err)
		return nil, err
	}
	return records, nil
}

// Subscribe opens a live feed. The first snapshot is the current ledger; each
// later snapshot follows exactly one successful InsertPurchase.
func (s *Service) Subscribe(ctx context.Context) (*Subscription, error) {
	// Holding the writer lock keeps a commit from landing between the initial
	// read and the registration.
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	records, err := listOrdered(s.store.db.WithContext(ctx))
	if err != nil {
		wrapped := newStorageError(opSubscribe, "query_failed", err)
		s.logError(opSubscribe, wrapped)
		return nil, wrapped
	}
	return s.feed.Subscribe(ctx, records), nil
}

// SubscriberCount reports the number of open subscriptions.
func (s *Service) SubscriberCount() int {
	return s.feed.SubscriberCount()
}

func (s *Service) logError(operation string, err error, fields ...zap.Field) {
	attrs := []zap.Field{zap.String("operation", operation)}
	if code := ErrorCode(err); code != "" {
		attrs = append(attrs, zap.String("reason", code))
	}
	attrs = append(attrs, zap.Error(err))
	attrs = append(attrs, fields...)
	s.logger.Error("purchases service error", attrs...)
}

// ErrorCode extracts the ServiceError code from err, or "" when err carries none.
func ErrorCode(err error) string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code()
	}
	return ""
}
