package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM.
// The order row, its items and its deliver rows are always written in one transaction.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with items and deliveries
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*trade.Order, error) {
	tx := r.db.WithContext(ctx)
	var model models.OrderModel
	if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.loadChildren(tx, &model)
}

// FindAll lists orders matching the filter, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.BuyerID != "" {
		query = query.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Pagination.Normalize()
	var orderModels []models.OrderModel
	if err := query.Order("placed_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	if len(orderModels) == 0 {
		return []trade.Order{}, total, nil
	}

	ids := make([]string, 0, len(orderModels))
	for _, m := range orderModels {
		ids = append(ids, m.ID)
	}

	var items []models.OrderItemModel
	if err := r.db.WithContext(ctx).Where("order_id IN ?", ids).Order("id").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	var delivers []models.DeliverModel
	if err := r.db.WithContext(ctx).Where("order_id IN ?", ids).Find(&delivers).Error; err != nil {
		return nil, 0, err
	}

	itemsByOrder := make(map[string][]models.OrderItemModel, len(orderModels))
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
	}
	deliversByOrder := make(map[string][]models.DeliverModel)
	for _, d := range delivers {
		deliversByOrder[d.OrderID] = append(deliversByOrder[d.OrderID], d)
	}

	orders := make([]trade.Order, 0, len(orderModels))
	for i := range orderModels {
		m := &orderModels[i]
		orders = append(orders, *m.ToDomain(itemsByOrder[m.ID], deliversByOrder[m.ID]))
	}
	return orders, total, nil
}

// Create inserts the order row and all item rows in one transaction
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.OrderModelFromDomain(order)).Error; err != nil {
			return translateError(err)
		}
		items := models.OrderItemModelsFromDomain(order)
		if len(items) == 0 {
			return nil
		}
		return translateError(tx.Create(&items).Error)
	})
}

// Transition locks the order, lets fn mutate it and writes the result back.
// The status update is guarded by the status observed under the lock, so a
// concurrent writer that got there first makes this call fail with a conflict.
func (r *GormOrderRepository) Transition(ctx context.Context, id string, fn func(*trade.Order) error) (*trade.Order, error) {
	var result *trade.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := r.lockOrder(tx, id)
		if err != nil {
			return err
		}

		observed := order.Status
		before := make(map[string]trade.Delivery, len(order.Deliveries))
		for _, d := range order.Deliveries {
			before[d.ShipperID] = d
		}

		if err := fn(order); err != nil {
			return err
		}

		res := tx.Model(&models.OrderModel{}).
			Where("id = ? AND status = ?", id, string(observed)).
			Updates(map[string]any{
				"status":     string(order.Status),
				"address":    order.Address,
				"updated_at": order.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for _, d := range order.Deliveries {
			prev, existed := before[d.ShipperID]
			if !existed {
				if err := tx.Create(models.DeliverModelFromDomain(d)).Error; err != nil {
					return translateError(err)
				}
				continue
			}
			if !deliveryChanged(prev, d) {
				continue
			}
			if err := tx.Model(&models.DeliverModel{}).
				Where("order_id = ? AND shipper_id = ?", id, d.ShipperID).
				Updates(map[string]any{
					"departure_time": d.DepartureTime,
					"finish_time":    d.FinishTime,
					"shipping_fee":   d.ShippingFee,
				}).Error; err != nil {
				return err
			}
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteIf locks the order and removes it with its items when check returns nil
func (r *GormOrderRepository) DeleteIf(ctx context.Context, id string, check func(*trade.Order) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&model).Error; err != nil {
			return translateError(err)
		}
		if err := check(model.ToDomain(nil, nil)); err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.OrderModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormOrderRepository) lockOrder(tx *gorm.DB, id string) (*trade.Order, error) {
	var model models.OrderModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.loadChildren(tx, &model)
}

func (r *GormOrderRepository) loadChildren(tx *gorm.DB, model *models.OrderModel) (*trade.Order, error) {
	var items []models.OrderItemModel
	if err := tx.Where("order_id = ?", model.ID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	var delivers []models.DeliverModel
	if err := tx.Where("order_id = ?", model.ID).Find(&delivers).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(items, delivers), nil
}

func deliveryChanged(a, b trade.Delivery) bool {
	return !sameTime(a.DepartureTime, b.DepartureTime) ||
		!sameTime(a.FinishTime, b.FinishTime) ||
		!sameFee(a, b)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameFee(a, b trade.Delivery) bool {
	if a.ShippingFee == nil || b.ShippingFee == nil {
		return a.ShippingFee == b.ShippingFee
	}
	return a.ShippingFee.Equal(*b.ShippingFee)
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
