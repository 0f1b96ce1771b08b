package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusDispatched OrderStatus = "Dispatched"
	OrderStatusDelivering OrderStatus = "Delivering"
	OrderStatusDelivered  OrderStatus = "Delivered"

	// OrderStatusCompleted only exists on rows imported from the previous store.
	// It is never assigned, but reports treat it like Delivered.
	OrderStatusCompleted OrderStatus = "Completed"
)

// IsValid checks if the status can be assigned to an order
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusDispatched, OrderStatusDelivering, OrderStatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can move to target.
// Transitions only go forward, one step at a time.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing
	case OrderStatusProcessing:
		return target == OrderStatusDispatched
	case OrderStatusDispatched:
		return target == OrderStatusDelivering
	case OrderStatusDelivering:
		return target == OrderStatusDelivered
	}
	return false
}

// CanPatchTo checks if a buyer update may move the status to target.
// Only Pending to Processing is a buyer step.
func (s OrderStatus) CanPatchTo(target OrderStatus) bool {
	return s == OrderStatusPending && target == OrderStatusProcessing
}

// IsCancellable reports whether an order in this status may still be deleted by the buyer
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// ParseOrderStatus parses a status name, accepting any letter case
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusDispatched, OrderStatusDelivering, OrderStatusDelivered} {
		if strings.EqualFold(value, string(s)) {
			return s, nil
		}
	}
	return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", value))
}

// OrderItem represents a line of an order
type OrderItem struct {
	ID            string
	OrderID       string
	Barcode       string
	VariationName string
	Quantity      int
	Price         decimal.Decimal
}

// NewOrderItem creates a new order line
func NewOrderItem(orderID, barcode, variationName string, quantity int, price decimal.Decimal) (*OrderItem, error) {
	if barcode == "" || variationName == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "barcode and variation name are required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}

	return &OrderItem{
		ID:            shared.NewID(),
		OrderID:       orderID,
		Barcode:       barcode,
		VariationName: variationName,
		Quantity:      quantity,
		Price:         price,
	}, nil
}

// Amount returns quantity * price
func (i OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root of the order lifecycle.
// Items and deliveries are always loaded and persisted together with it.
type Order struct {
	ID         string
	BuyerID    string
	Address    string
	Status     OrderStatus
	Total      decimal.Decimal
	PlacedAt   time.Time
	UpdatedAt  time.Time
	Items      []OrderItem
	Deliveries []Delivery
}

// NewOrder creates a new order for a buyer.
// New orders start in Pending unless the buyer already marks them Processing.
func NewOrder(buyerID, address string, status OrderStatus) (*Order, error) {
	if buyerID == "" {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Address cannot be empty")
	}
	if status == "" {
		status = OrderStatusPending
	}
	if status != OrderStatusPending && status != OrderStatusProcessing {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("A new order cannot start in %s status", status))
	}

	now := time.Now()
	return &Order{
		ID:        shared.NewID(),
		BuyerID:   buyerID,
		Address:   address,
		Status:    status,
		Total:     decimal.Zero,
		PlacedAt:  now,
		UpdatedAt: now,
		Items:     make([]OrderItem, 0),
	}, nil
}

// AddItem adds a line to the order
func (o *Order) AddItem(barcode, variationName string, quantity int, price decimal.Decimal) (*OrderItem, error) {
	if !o.Status.IsCancellable() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to an order in %s status", o.Status))
	}
	for _, item := range o.Items {
		if item.Barcode == barcode && item.VariationName == variationName {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Variation already exists in order, update quantity instead")
		}
	}

	item, err := NewOrderItem(o.ID, barcode, variationName, quantity, price)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	return item, nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount())
	}
	o.Total = total
}

// ItemCount returns the number of order lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// IsOwnedBy reports whether the order belongs to the buyer
func (o *Order) IsOwnedBy(buyerID string) bool {
	return o.BuyerID == buyerID
}

// EnsureCancellable returns an error unless the order can still be deleted
func (o *Order) EnsureCancellable() error {
	if !o.Status.IsCancellable() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete/cancel an order that is in transit or delivered.")
	}
	return nil
}

// ApplyPatch changes status and/or address. A nil or empty argument keeps the current value.
// The only status a patch may set is Processing on a Pending order; later statuses are
// reached through Claim, Depart and ConfirmDelivery.
func (o *Order) ApplyPatch(newStatus *OrderStatus, newAddress *string) error {
	if newStatus != nil && *newStatus == "" {
		newStatus = nil
	}
	var address string
	if newAddress != nil {
		address = strings.TrimSpace(*newAddress)
		if address == "" {
			newAddress = nil
		}
	}
	if newStatus == nil && newAddress == nil {
		return shared.NewDomainError("INVALID_INPUT", "Must provide newStatus or newAddress")
	}

	if newStatus != nil && *newStatus != o.Status {
		if !newStatus.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", *newStatus))
		}
		if !o.Status.CanPatchTo(*newStatus) {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, *newStatus))
		}
	}
	if newAddress != nil && address != o.Address && !o.Status.IsCancellable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change the address of an order in %s status", o.Status))
	}

	if newAddress != nil {
		o.Address = address
	}
	if newStatus != nil {
		o.Status = *newStatus
	}
	o.UpdatedAt = time.Now()
	return nil
}

// shipperDeliveries returns the deliveries the caller may act on.
// An admin acts on every delivery of the order.
func (o *Order) shipperDeliveries(shipperID string, asAdmin bool) ([]*Delivery, error) {
	var out []*Delivery
	for i := range o.Deliveries {
		d := &o.Deliveries[i]
		if asAdmin || d.ShipperID == shipperID {
			out = append(out, d)
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	if asAdmin {
		return nil, shared.NewDomainError("INVALID_STATE", "Order has no claimed delivery")
	}
	return nil, shared.NewDomainError("FORBIDDEN", "Order was not claimed by this shipper")
}

// Claim assigns the order to a shipper, moving it from Processing to Dispatched
func (o *Order) Claim(shipperID string, at time.Time) (*Delivery, error) {
	if !o.Status.CanTransitionTo(OrderStatusDispatched) {
		return nil, shared.NewDomainError("INVALID_STATE", `Order status must be "Processing" to be claimed.`)
	}

	delivery, err := NewDelivery(o.ID, shipperID)
	if err != nil {
		return nil, err
	}

	o.Deliveries = append(o.Deliveries, *delivery)
	o.Status = OrderStatusDispatched
	o.UpdatedAt = at
	return delivery, nil
}

// Depart marks the shipper as on the way, moving the order from Dispatched to Delivering.
// An admin acting on behalf of the shippers stamps every delivery of the order.
func (o *Order) Depart(shipperID string, asAdmin bool, fee *decimal.Decimal, at time.Time) error {
	if !o.Status.CanTransitionTo(OrderStatusDelivering) {
		return shared.NewDomainError("INVALID_STATE", `Order must be in "Dispatched" status to start delivering.`)
	}
	if fee != nil && fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Shipping fee cannot be negative")
	}

	deliveries, err := o.shipperDeliveries(shipperID, asAdmin)
	if err != nil {
		return err
	}
	for _, d := range deliveries {
		d.Depart(fee, at)
	}

	o.Status = OrderStatusDelivering
	o.UpdatedAt = at
	return nil
}

// ConfirmDelivery stamps the finish time and moves the order from Delivering to Delivered
func (o *Order) ConfirmDelivery(shipperID string, asAdmin bool, at time.Time) error {
	if !o.Status.CanTransitionTo(OrderStatusDelivered) {
		return shared.NewDomainError("INVALID_STATE", `Order must be in "Delivering" status to be confirmed as delivered.`)
	}

	deliveries, err := o.shipperDeliveries(shipperID, asAdmin)
	if err != nil {
		return err
	}
	for _, d := range deliveries {
		d.Finish(at)
	}

	o.Status = OrderStatusDelivered
	o.UpdatedAt = at
	return nil
}
