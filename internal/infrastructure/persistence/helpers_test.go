package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB returns a GORM postgres connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

// newSQLiteDB returns an in-memory sqlite database with every model migrated.
// Stored functions do not exist there, so reports always take the inline path.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

type countingRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{calls: make(map[string]int)}
}

func (c *countingRecorder) RecordProcedureFallback(_ context.Context, procedure string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[procedure]++
}

func (c *countingRecorder) count(procedure string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[procedure]
}

var fixtureTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fixtures struct {
	db *gorm.DB
	t  *testing.T
}

func (f fixtures) user(id, username, fullName string) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&models.UserModel{
		ID: id, Username: username, Email: username + "@example.com", FullName: fullName,
		PasswordHash: "x", Role: "buyer", CreatedAt: fixtureTime, UpdatedAt: fixtureTime,
	}).Error)
}

func (f fixtures) product(barcode, name, sellerID string, variations ...models.VariationModel) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&models.ProductSKUModel{
		BarCode: barcode, Name: name, SellerID: sellerID, CreatedAt: fixtureTime, UpdatedAt: fixtureTime,
	}).Error)
	for i := range variations {
		variations[i].BarCode = barcode
		require.NoError(f.t, f.db.Create(&variations[i]).Error)
	}
}

func (f fixtures) order(id, buyerID, status string, placedAt time.Time, items ...models.OrderItemModel) {
	f.t.Helper()
	total := decimal.Zero
	for i := range items {
		items[i].OrderID = id
		total = total.Add(items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	require.NoError(f.t, f.db.Create(&models.OrderModel{
		ID: id, BuyerID: buyerID, Address: "1 Main St", Status: status, Total: total,
		PlacedAt: placedAt, UpdatedAt: placedAt,
	}).Error)
	for i := range items {
		require.NoError(f.t, f.db.Create(&items[i]).Error)
	}
}

func item(id, barcode, variation string, qty int, price string) models.OrderItemModel {
	return models.OrderItemModel{
		ID: id, BarCode: barcode, VariationName: variation, Quantity: qty, Price: decimal.RequireFromString(price),
	}
}
