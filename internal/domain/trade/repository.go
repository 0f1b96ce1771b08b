package trade

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	BuyerID string
	Status  *OrderStatus
	shared.Pagination
}

// OrderRepository defines persistence for the order aggregate.
// Every write runs in a single transaction together with the item and delivery rows.
type OrderRepository interface {
	// FindByID loads an order with its items and deliveries
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindAll lists orders, newest first
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// Create inserts the order and all of its items atomically
	Create(ctx context.Context, order *Order) error

	// Transition locks the order row, applies fn and persists the result.
	// The status write is guarded by the status observed under the lock.
	Transition(ctx context.Context, id string, fn func(*Order) error) (*Order, error)

	// DeleteIf locks the order row and deletes it with its items when check passes
	DeleteIf(ctx context.Context, id string, check func(*Order) error) error
}

// OrderDetail is a row of the order details report
type OrderDetail struct {
	ID        string          `json:"id"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Buyer     string          `json:"buyer"`
	ItemCount int             `json:"item_count"`
	PlacedAt  time.Time       `json:"placed_at"`
}

// TopSellingProduct is a row of the top selling products report
type TopSellingProduct struct {
	Barcode           string `json:"bar_code"`
	Name              string `json:"name"`
	TotalQuantitySold int64  `json:"total_quantity_sold"`
}

// OrderReportRepository runs the reporting queries
type OrderReportRepository interface {
	// OrderDetails lists orders with buyer name, optionally filtered by status and a minimum item count
	OrderDetails(ctx context.Context, status *OrderStatus, minItems int) ([]OrderDetail, error)

	// TopSellingProducts aggregates sold quantities of delivered orders per product
	TopSellingProducts(ctx context.Context, minQuantity int, sellerID string) ([]TopSellingProduct, error)
}
