package trade

import (
	"time"

	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest places a new order
type CreateOrderRequest struct {
	Address string                   `json:"address" binding:"required,max=500"`
	Status  string                   `json:"status" binding:"omitempty,order_status"`
	Items   []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItemRequest is one line of a new order
type CreateOrderItemRequest struct {
	Barcode       string          `json:"bar_code" binding:"required,max=64"`
	VariationName string          `json:"variation_name" binding:"required,max=100"`
	Quantity      int             `json:"quantity" binding:"required,gt=0"`
	Price         decimal.Decimal `json:"price"`
}

// UpdateOrderRequest patches an order; at least one field is required
type UpdateOrderRequest struct {
	NewStatus  *string `json:"newStatus" binding:"omitempty,order_status"`
	NewAddress *string `json:"newAddress" binding:"omitempty,max=500"`
}

// DepartRequest starts a delivery
type DepartRequest struct {
	ShippingFee *decimal.Decimal `json:"shipping_fee"`
}

// ListOrdersQuery filters the caller's orders
type ListOrdersQuery struct {
	Status   string `form:"status" binding:"omitempty,order_status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderDetailsQuery filters the order details report
type OrderDetailsQuery struct {
	Status   string `form:"status" binding:"omitempty,order_status"`
	MinItems int    `form:"minItems" binding:"omitempty,min=0"`
}

// TopSellingQuery filters the top selling report
type TopSellingQuery struct {
	MinQuantity int    `form:"minQuantity" binding:"omitempty,min=0"`
	SellerID    string `form:"sellerId" binding:"omitempty,max=32"`
}

// OrderItemResponse is one line of an order
type OrderItemResponse struct {
	ID            string          `json:"id"`
	Barcode       string          `json:"bar_code"`
	VariationName string          `json:"variation_name"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Amount        decimal.Decimal `json:"amount"`
}

// DeliveryResponse is the delivery record of a shipper
type DeliveryResponse struct {
	ShipperID     string           `json:"shipper_id"`
	DepartureTime *time.Time       `json:"departure_time"`
	FinishTime    *time.Time       `json:"finish_time"`
	ShippingFee   *decimal.Decimal `json:"shipping_fee"`
}

// OrderResponse is an order with its lines
type OrderResponse struct {
	ID         string              `json:"id"`
	BuyerID    string              `json:"buyer_id"`
	Address    string              `json:"address"`
	Status     string              `json:"status"`
	Total      decimal.Decimal     `json:"total"`
	PlacedAt   time.Time           `json:"placed_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Items      []OrderItemResponse `json:"items"`
	Deliveries []DeliveryResponse  `json:"deliveries"`
}

// StatusResponse reports the status an operation moved the order to
type StatusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// ToOrderResponse converts a domain Order
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		BuyerID:    o.BuyerID,
		Address:    o.Address,
		Status:     string(o.Status),
		Total:      o.Total,
		PlacedAt:   o.PlacedAt,
		UpdatedAt:  o.UpdatedAt,
		Items:      make([]OrderItemResponse, 0, len(o.Items)),
		Deliveries: make([]DeliveryResponse, 0, len(o.Deliveries)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:            it.ID,
			Barcode:       it.Barcode,
			VariationName: it.VariationName,
			Quantity:      it.Quantity,
			Price:         it.Price,
			Amount:        it.Amount(),
		})
	}
	for _, d := range o.Deliveries {
		resp.Deliveries = append(resp.Deliveries, DeliveryResponse{
			ShipperID:     d.ShipperID,
			DepartureTime: d.DepartureTime,
			FinishTime:    d.FinishTime,
			ShippingFee:   d.ShippingFee,
		})
	}
	return resp
}

// ToOrderResponses converts a list of domain Orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}
