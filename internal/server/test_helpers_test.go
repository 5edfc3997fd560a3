package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Joshep-c/approom/internal/purchases"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestPurchaseService(t *testing.T) *purchases.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "server.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&purchases.Purchase{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	service, err := purchases.NewService(purchases.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct purchase service: %v", err)
	}
	return service
}

type failingPurchaseService struct {
	err error
}

func (s failingPurchaseService) InsertPurchase(context.Context, purchases.PurchaseInput) (purchases.Purchase, error) {
	return purchases.Purchase{}, s.err
}

func (s failingPurchaseService) ListPurchases(context.Context) ([]purchases.Purchase, error) {
	return nil, s.err
}

func (s failingPurchaseService) Subscribe(context.Context) (*purchases.Subscription, error) {
	return nil, s.err
}
