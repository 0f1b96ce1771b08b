package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func seedReportData(t *testing.T) fixtures {
	f := fixtures{db: newSQLiteDB(t), t: t}
	f.user("buyer-1", "alice", "Alice Smith")
	f.user("buyer-2", "bob", "")
	f.product("B1", "Mug", "seller-1", models.VariationModel{Name: "Red", Price: decimal.RequireFromString("5.00"), Stock: 3})
	f.product("B2", "Plate", "seller-2", models.VariationModel{Name: "Large", Price: decimal.RequireFromString("8.00"), Stock: 1})

	f.order("o1", "buyer-1", "Delivered", fixtureTime,
		item("i1", "B1", "Red", 4, "5.00"),
		item("i2", "B2", "Large", 1, "8.00"))
	f.order("o2", "buyer-2", "Delivered", fixtureTime.Add(time.Hour),
		item("i3", "B1", "Red", 3, "5.00"))
	f.order("o3", "buyer-2", "Pending", fixtureTime.Add(2*time.Hour),
		item("i4", "B2", "Large", 10, "8.00"))
	f.order("o4", "buyer-1", "Completed", fixtureTime.Add(3*time.Hour),
		item("i5", "B2", "Large", 2, "8.00"))
	return f
}

func TestGormOrderReportRepository_OrderDetails_Fallback(t *testing.T) {
	f := seedReportData(t)
	core, logs := observer.New(zapcore.WarnLevel)
	recorder := newCountingRecorder()
	repo := NewGormOrderReportRepository(f.db, zap.New(core), recorder)

	rows, err := repo.OrderDetails(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "o4", rows[0].ID)
	assert.Equal(t, "o1", rows[3].ID)
	assert.Equal(t, "Alice Smith", rows[3].Buyer)
	assert.Equal(t, 2, rows[3].ItemCount)
	assert.True(t, rows[3].Total.Equal(decimal.RequireFromString("28")))
	assert.Equal(t, "bob", rows[2].Buyer)

	entries := logs.FilterMessage("Stored procedure failed, falling back to inline query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, ProcOrderDetails, entries[0].ContextMap()["procedure"])
	assert.Equal(t, 1, recorder.count(ProcOrderDetails))
}

func TestGormOrderReportRepository_OrderDetails_Filters(t *testing.T) {
	f := seedReportData(t)
	repo := NewGormOrderReportRepository(f.db, zap.NewNop(), nil)

	delivered := trade.OrderStatusDelivered
	rows, err := repo.OrderDetails(context.Background(), &delivered, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = repo.OrderDetails(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "o1", rows[0].ID)
}

func TestGormOrderReportRepository_TopSelling_Fallback(t *testing.T) {
	f := seedReportData(t)
	recorder := newCountingRecorder()
	repo := NewGormOrderReportRepository(f.db, zap.NewNop(), recorder)

	rows, err := repo.TopSellingProducts(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B1", rows[0].Barcode)
	assert.EqualValues(t, 7, rows[0].TotalQuantitySold)
	assert.Equal(t, "B2", rows[1].Barcode)
	assert.EqualValues(t, 3, rows[1].TotalQuantitySold)

	rows, err = repo.TopSellingProducts(context.Background(), 1, "seller-2")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Plate", rows[0].Name)

	rows, err = repo.TopSellingProducts(context.Background(), 5, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "B1", rows[0].Barcode)

	assert.Equal(t, 3, recorder.count(ProcTopSellingProducts))
}

func TestGormOrderReportRepository_UsesStoredFunction(t *testing.T) {
	db, mock := newMockDB(t)
	core, logs := observer.New(zapcore.WarnLevel)
	recorder := newCountingRecorder()
	repo := NewGormOrderReportRepository(db, zap.New(core), recorder)

	mock.ExpectQuery(`SELECT \* FROM usp_get_top_selling_products\(CAST\(\$1 AS INTEGER\), CAST\(\$2 AS VARCHAR\)\)`).
		WithArgs(2, "seller-1").
		WillReturnRows(sqlmock.NewRows([]string{"bar_code", "name", "total_quantity_sold"}).
			AddRow("B1", "Mug", 9))

	rows, err := repo.TopSellingProducts(context.Background(), 2, "seller-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 9, rows[0].TotalQuantitySold)
	assert.Zero(t, logs.Len())
	assert.Zero(t, recorder.count(ProcTopSellingProducts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
