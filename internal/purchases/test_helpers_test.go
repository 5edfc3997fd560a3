package purchases

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const snapshotWaitTimeout = 2 * time.Second

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "purchases.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
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

	if err := db.AutoMigrate(&Purchase{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := newTestDatabase(t)
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct purchases service: %v", err)
	}
	return service, db
}

func mustInput(t *testing.T, buyer, items string, totalPrice float64, date string) PurchaseInput {
	t.Helper()
	input, err := NewPurchaseInput(buyer, items, totalPrice, date)
	if err != nil {
		t.Fatalf("unexpected input error: %v", err)
	}
	return input
}

// failCreates makes every subsequent INSERT on db fail with cause until the test ends.
func failCreates(t *testing.T, db *gorm.DB, cause error) {
	t.Helper()
	const callbackName = "approom_test:fail_create"
	err := db.Callback().Create().Before("gorm:create").Register(callbackName, func(tx *gorm.DB) {
		_ = tx.AddError(cause)
	})
	if err != nil {
		t.Fatalf("failed to register failing callback: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Callback().Create().Remove(callbackName)
	})
}

// failQueries makes every subsequent SELECT on db fail with cause. The returned
// restore func removes the failure early; otherwise it is removed when the test ends.
func failQueries(t *testing.T, db *gorm.DB, cause error) func() {
	t.Helper()
	const callbackName = "approom_test:fail_query"
	err := db.Callback().Query().Before("gorm:query").Register(callbackName, func(tx *gorm.DB) {
		_ = tx.AddError(cause)
	})
	if err != nil {
		t.Fatalf("failed to register failing callback: %v", err)
	}
	var once sync.Once
	restore := func() {
		once.Do(func() {
			_ = db.Callback().Query().Remove(callbackName)
		})
	}
	t.Cleanup(restore)
	return restore
}

func countPurchases(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&Purchase{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count purchases: %v", err)
	}
	return count
}

func receiveSnapshot(t *testing.T, subscription *Subscription) Snapshot {
	t.Helper()
	select {
	case snapshot, ok := <-subscription.C():
		if !ok {
			t.Fatal("subscription closed before snapshot arrived")
		}
		return snapshot
	case <-time.After(snapshotWaitTimeout):
		t.Fatal("expected snapshot within deadline")
	}
	return Snapshot{}
}

func expectNoSnapshot(t *testing.T, subscription *Subscription) {
	t.Helper()
	select {
	case snapshot, ok := <-subscription.C():
		if ok {
			t.Fatalf("did not expect snapshot, got version %d with %d purchases", snapshot.Version, len(snapshot.Purchases))
		}
	case <-time.After(150 * time.Millisecond):
	}
}
