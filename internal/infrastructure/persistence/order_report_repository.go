package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stored function names used by the reports
const (
	ProcOrderDetails       = "usp_get_order_details"
	ProcTopSellingProducts = "usp_get_top_selling_products"
)

// soldStatuses are the order statuses counted as sales
var soldStatuses = []string{string(trade.OrderStatusDelivered), string(trade.OrderStatusCompleted)}

type orderDetailRow struct {
	ID        string          `gorm:"column:id"`
	Status    string          `gorm:"column:status"`
	Total     decimal.Decimal `gorm:"column:total"`
	Buyer     string          `gorm:"column:buyer"`
	ItemCount int             `gorm:"column:item_count"`
	PlacedAt  time.Time       `gorm:"column:placed_at"`
}

type topSellingRow struct {
	BarCode           string `gorm:"column:bar_code"`
	Name              string `gorm:"column:name"`
	TotalQuantitySold int64  `gorm:"column:total_quantity_sold"`
}

// GormOrderReportRepository implements trade.OrderReportRepository.
// Each report calls its stored function first and runs the inline query when the call fails.
type GormOrderReportRepository struct {
	db    *gorm.DB
	procs procedureRunner
}

// NewGormOrderReportRepository creates a new GormOrderReportRepository
func NewGormOrderReportRepository(db *gorm.DB, logger *zap.Logger, recorder FallbackRecorder) *GormOrderReportRepository {
	return &GormOrderReportRepository{db: db, procs: newProcedureRunner(logger, recorder)}
}

// OrderDetails lists orders with buyer name and item count
func (r *GormOrderReportRepository) OrderDetails(ctx context.Context, status *trade.OrderStatus, minItems int) ([]trade.OrderDetail, error) {
	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}

	rows, err := queryWithFallback[orderDetailRow](ctx, r.db, r.procs, ProcOrderDetails,
		"SELECT * FROM usp_get_order_details(CAST(? AS VARCHAR), CAST(? AS INTEGER))",
		[]any{statusArg, minItems},
		func(tx *gorm.DB) *gorm.DB {
			q := tx.Table("orders AS o").
				Select("o.id, o.status, o.total, COALESCE(NULLIF(u.full_name, ''), u.username) AS buyer, COUNT(oi.id) AS item_count, o.placed_at").
				Joins("JOIN users AS u ON u.id = o.buyer_id").
				Joins("LEFT JOIN order_items AS oi ON oi.order_id = o.id")
			if status != nil {
				q = q.Where("o.status = ?", string(*status))
			}
			return q.Group("o.id, o.status, o.total, u.full_name, u.username, o.placed_at").
				Having("COUNT(oi.id) >= ?", minItems).
				Order("o.placed_at DESC")
		})
	if err != nil {
		return nil, err
	}

	out := make([]trade.OrderDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, trade.OrderDetail{
			ID:        row.ID,
			Status:    trade.OrderStatus(row.Status),
			Total:     row.Total,
			Buyer:     row.Buyer,
			ItemCount: row.ItemCount,
			PlacedAt:  row.PlacedAt,
		})
	}
	return out, nil
}

// TopSellingProducts sums sold quantities per product, optionally for one seller
func (r *GormOrderReportRepository) TopSellingProducts(ctx context.Context, minQuantity int, sellerID string) ([]trade.TopSellingProduct, error) {
	var sellerArg any
	if sellerID != "" {
		sellerArg = sellerID
	}

	rows, err := queryWithFallback[topSellingRow](ctx, r.db, r.procs, ProcTopSellingProducts,
		"SELECT * FROM usp_get_top_selling_products(CAST(? AS INTEGER), CAST(? AS VARCHAR))",
		[]any{minQuantity, sellerArg},
		func(tx *gorm.DB) *gorm.DB {
			q := tx.Table("order_items AS oi").
				Select("p.bar_code, p.name, SUM(oi.quantity) AS total_quantity_sold").
				Joins("JOIN orders AS o ON o.id = oi.order_id").
				Joins("JOIN product_skus AS p ON p.bar_code = oi.bar_code").
				Where("o.status IN ?", soldStatuses)
			if sellerID != "" {
				q = q.Where("p.seller_id = ?", sellerID)
			}
			return q.Group("p.bar_code, p.name").
				Having("SUM(oi.quantity) >= ?", minQuantity).
				Order("total_quantity_sold DESC")
		})
	if err != nil {
		return nil, err
	}

	out := make([]trade.TopSellingProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, trade.TopSellingProduct{
			Barcode:           row.BarCode,
			Name:              row.Name,
			TotalQuantitySold: row.TotalQuantitySold,
		})
	}
	return out, nil
}

var _ trade.OrderReportRepository = (*GormOrderReportRepository)(nil)
