package models

import (
	"time"

	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the orders table
type OrderModel struct {
	ID        string          `gorm:"type:varchar(32);primaryKey"`
	BuyerID   string          `gorm:"type:varchar(32);not null;index"`
	Address   string          `gorm:"type:varchar(500);not null"`
	Status    string          `gorm:"type:varchar(20);not null;index"`
	Total     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	PlacedAt  time.Time       `gorm:"not null;index"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for the order_items table.
// Items keep barcode and variation name without a foreign key so history survives product removal.
type OrderItemModel struct {
	ID            string          `gorm:"type:varchar(32);primaryKey"`
	OrderID       string          `gorm:"type:varchar(32);not null;index"`
	BarCode       string          `gorm:"column:bar_code;type:varchar(64);not null;index"`
	VariationName string          `gorm:"type:varchar(100);not null"`
	Quantity      int             `gorm:"not null"`
	Price         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// DeliverModel is the persistence model for the delivers table
type DeliverModel struct {
	ShipperID     string `gorm:"type:varchar(32);primaryKey"`
	OrderID       string `gorm:"type:varchar(32);primaryKey"`
	DepartureTime *time.Time
	FinishTime    *time.Time
	ShippingFee   *decimal.Decimal `gorm:"type:numeric(18,2)"`
}

// TableName returns the table name for GORM
func (DeliverModel) TableName() string {
	return "delivers"
}

// ToDomain converts the order row and its child rows to a domain Order
func (m *OrderModel) ToDomain(items []OrderItemModel, delivers []DeliverModel) *trade.Order {
	order := &trade.Order{
		ID:         m.ID,
		BuyerID:    m.BuyerID,
		Address:    m.Address,
		Status:     trade.OrderStatus(m.Status),
		Total:      m.Total,
		PlacedAt:   m.PlacedAt,
		UpdatedAt:  m.UpdatedAt,
		Items:      make([]trade.OrderItem, 0, len(items)),
		Deliveries: make([]trade.Delivery, 0, len(delivers)),
	}
	for _, it := range items {
		order.Items = append(order.Items, trade.OrderItem{
			ID:            it.ID,
			OrderID:       it.OrderID,
			Barcode:       it.BarCode,
			VariationName: it.VariationName,
			Quantity:      it.Quantity,
			Price:         it.Price,
		})
	}
	for _, d := range delivers {
		order.Deliveries = append(order.Deliveries, d.ToDomain())
	}
	return order
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	return &OrderModel{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		Address:   o.Address,
		Status:    string(o.Status),
		Total:     o.Total,
		PlacedAt:  o.PlacedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// OrderItemModelsFromDomain converts the items of an order
func OrderItemModelsFromDomain(o *trade.Order) []OrderItemModel {
	out := make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, OrderItemModel{
			ID:            it.ID,
			OrderID:       o.ID,
			BarCode:       it.Barcode,
			VariationName: it.VariationName,
			Quantity:      it.Quantity,
			Price:         it.Price,
		})
	}
	return out
}

// ToDomain converts the model to a domain Delivery
func (m *DeliverModel) ToDomain() trade.Delivery {
	return trade.Delivery{
		ShipperID:     m.ShipperID,
		OrderID:       m.OrderID,
		DepartureTime: m.DepartureTime,
		FinishTime:    m.FinishTime,
		ShippingFee:   m.ShippingFee,
	}
}

// DeliverModelFromDomain creates a persistence model from a domain Delivery
func DeliverModelFromDomain(d trade.Delivery) *DeliverModel {
	return &DeliverModel{
		ShipperID:     d.ShipperID,
		OrderID:       d.OrderID,
		DepartureTime: d.DepartureTime,
		FinishTime:    d.FinishTime,
		ShippingFee:   d.ShippingFee,
	}
}
