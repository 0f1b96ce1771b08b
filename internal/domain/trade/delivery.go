package trade

import (
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Delivery links a shipper to an order they claimed
type Delivery struct {
	ShipperID     string
	OrderID       string
	DepartureTime *time.Time
	FinishTime    *time.Time
	ShippingFee   *decimal.Decimal
}

// NewDelivery creates an unstarted delivery
func NewDelivery(orderID, shipperID string) (*Delivery, error) {
	if shipperID == "" {
		return nil, shared.NewDomainError("INVALID_SHIPPER", "Shipper ID cannot be empty")
	}
	return &Delivery{ShipperID: shipperID, OrderID: orderID}, nil
}

// Depart stamps the departure time. A nil fee keeps the previous one.
func (d *Delivery) Depart(fee *decimal.Decimal, at time.Time) {
	d.DepartureTime = &at
	if fee != nil {
		f := *fee
		d.ShippingFee = &f
	}
}

// Finish stamps the finish time
func (d *Delivery) Finish(at time.Time) {
	d.FinishTime = &at
}

// IsFinished reports whether the delivery was completed
func (d *Delivery) IsFinished() bool {
	return d.FinishTime != nil
}
