package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransitionRecorder counts order status changes
type TransitionRecorder interface {
	RecordOrderTransition(ctx context.Context, operation, status string)
}

type nopTransitionRecorder struct{}

func (nopTransitionRecorder) RecordOrderTransition(context.Context, string, string) {}

// OrderService runs the order lifecycle use cases
type OrderService struct {
	orderRepo   trade.OrderRepository
	reportRepo  trade.OrderReportRepository
	productRepo catalog.ProductRepository
	recorder    TransitionRecorder
	now         func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	reportRepo trade.OrderReportRepository,
	productRepo catalog.ProductRepository,
	recorder TransitionRecorder,
) *OrderService {
	if recorder == nil {
		recorder = nopTransitionRecorder{}
	}
	return &OrderService{
		orderRepo:   orderRepo,
		reportRepo:  reportRepo,
		productRepo: productRepo,
		recorder:    recorder,
		now:         time.Now,
	}
}

// Create places an order with all of its items in one transaction
func (s *OrderService) Create(ctx context.Context, actor identity.Actor, req CreateOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create", telemetry.SpanAttrActorRole, string(actor.Role))
	defer func() { telemetry.EndSpan(span, err) }()

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "An order needs at least one item")
	}

	var status trade.OrderStatus
	if req.Status != "" {
		if status, err = trade.ParseOrderStatus(req.Status); err != nil {
			return nil, err
		}
	}

	order, err := trade.NewOrder(actor.UserID, req.Address, status)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := s.productRepo.FindVariation(ctx, item.Barcode, item.VariationName); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("VALIDATION_ERROR",
					fmt.Sprintf("Variation %q of product %q does not exist", item.VariationName, item.Barcode))
			}
			return nil, err
		}
		if _, err := order.AddItem(item.Barcode, item.VariationName, item.Quantity, item.Price); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int("items", order.ItemCount()),
		zap.String("total", order.Total.StringFixed(2)),
	)
	s.recorder.RecordOrderTransition(ctx, "create", string(order.Status))

	out := ToOrderResponse(order)
	return &out, nil
}

// Get returns an order of the buyer; admins may read any order
func (s *OrderService) Get(ctx context.Context, actor identity.Actor, orderID string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessOwnedBy(order.BuyerID) {
		return nil, orderNotFound()
	}
	out := ToOrderResponse(order)
	return &out, nil
}

// ListMine lists the caller's orders, newest first
func (s *OrderService) ListMine(ctx context.Context, actor identity.Actor, query ListOrdersQuery) (*shared.Paginated[OrderResponse], error) {
	filter := trade.OrderFilter{
		BuyerID:    actor.UserID,
		Pagination: shared.Pagination{Page: query.Page, PageSize: query.PageSize}.Normalize(),
	}
	if query.Status != "" {
		status, err := trade.ParseOrderStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToOrderResponses(orders), total, filter.Pagination)
	return &page, nil
}

// Update patches status and/or address. Empty values count as not provided.
// The status may only move from Pending to Processing here.
func (s *OrderService) Update(ctx context.Context, actor identity.Actor, orderID string, req UpdateOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update", telemetry.SpanAttrOrderID, orderID)
	defer func() { telemetry.EndSpan(span, err) }()

	rawStatus, newAddress := nonEmpty(req.NewStatus), nonEmpty(req.NewAddress)
	if rawStatus == nil && newAddress == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Must provide newStatus or newAddress")
	}
	var newStatus *trade.OrderStatus
	if rawStatus != nil {
		status, err := trade.ParseOrderStatus(*rawStatus)
		if err != nil {
			return nil, err
		}
		newStatus = &status
	}

	var previous trade.OrderStatus
	order, err := s.orderRepo.Transition(ctx, orderID, func(o *trade.Order) error {
		if !actor.CanAccessOwnedBy(o.BuyerID) {
			return orderNotFound()
		}
		previous = o.Status
		return o.ApplyPatch(newStatus, newAddress)
	})
	if err != nil {
		return nil, err
	}

	if order.Status != previous {
		s.recordTransition(ctx, "update", previous, order)
	}
	out := ToOrderResponse(order)
	return &out, nil
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}

// Delete removes an order that has not been dispatched yet
func (s *OrderService) Delete(ctx context.Context, actor identity.Actor, orderID string) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "delete", telemetry.SpanAttrOrderID, orderID)
	defer func() { telemetry.EndSpan(span, err) }()

	err = s.orderRepo.DeleteIf(ctx, orderID, func(o *trade.Order) error {
		if !actor.CanAccessOwnedBy(o.BuyerID) {
			return orderNotFound()
		}
		return o.EnsureCancellable()
	})
	if err != nil {
		return err
	}
	logger.L(ctx).Info("Order deleted", zap.String("order_id", orderID))
	return nil
}

// Claim assigns a Processing order to the calling shipper
func (s *OrderService) Claim(ctx context.Context, actor identity.Actor, orderID string) (resp *StatusResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "claim", telemetry.SpanAttrOrderID, orderID)
	defer func() { telemetry.EndSpan(span, err) }()

	order, err := s.orderRepo.Transition(ctx, orderID, func(o *trade.Order) error {
		_, err := o.Claim(actor.UserID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(ctx, "claim", trade.OrderStatusProcessing, order)
	return &StatusResponse{OrderID: order.ID, Status: string(order.Status)}, nil
}

// Depart starts the delivery of a Dispatched order
func (s *OrderService) Depart(ctx context.Context, actor identity.Actor, orderID string, req DepartRequest) (resp *StatusResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "depart", telemetry.SpanAttrOrderID, orderID)
	defer func() { telemetry.EndSpan(span, err) }()

	var fee *decimal.Decimal
	if req.ShippingFee != nil {
		f := req.ShippingFee.Round(2)
		fee = &f
	}

	order, err := s.orderRepo.Transition(ctx, orderID, func(o *trade.Order) error {
		return o.Depart(actor.UserID, actor.IsAdmin(), fee, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(ctx, "depart", trade.OrderStatusDispatched, order)
	return &StatusResponse{OrderID: order.ID, Status: string(order.Status)}, nil
}

// Confirm marks a Delivering order as Delivered and stamps the finish time
func (s *OrderService) Confirm(ctx context.Context, actor identity.Actor, orderID string) (resp *StatusResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "confirm", telemetry.SpanAttrOrderID, orderID)
	defer func() { telemetry.EndSpan(span, err) }()

	order, err := s.orderRepo.Transition(ctx, orderID, func(o *trade.Order) error {
		return o.ConfirmDelivery(actor.UserID, actor.IsAdmin(), s.now())
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(ctx, "confirm", trade.OrderStatusDelivering, order)
	return &StatusResponse{OrderID: order.ID, Status: string(order.Status)}, nil
}

// OrderDetails runs the order details report
func (s *OrderService) OrderDetails(ctx context.Context, query OrderDetailsQuery) ([]trade.OrderDetail, error) {
	var status *trade.OrderStatus
	if query.Status != "" {
		parsed, err := trade.ParseOrderStatus(query.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}
	if query.MinItems < 0 {
		query.MinItems = 0
	}
	return s.reportRepo.OrderDetails(ctx, status, query.MinItems)
}

// TopSellingProducts runs the top selling report.
// Sellers always see their own products; an admin may pick a seller and defaults to their own id.
func (s *OrderService) TopSellingProducts(ctx context.Context, actor identity.Actor, query TopSellingQuery) ([]trade.TopSellingProduct, error) {
	sellerID := actor.UserID
	if actor.IsAdmin() && query.SellerID != "" {
		sellerID = query.SellerID
	}
	if query.MinQuantity < 0 {
		query.MinQuantity = 0
	}
	return s.reportRepo.TopSellingProducts(ctx, query.MinQuantity, sellerID)
}

func (s *OrderService) recordTransition(ctx context.Context, operation string, from trade.OrderStatus, order *trade.Order) {
	logger.L(ctx).Info("Order status changed",
		zap.String("order_id", order.ID),
		zap.String("operation", operation),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)),
	)
	s.recorder.RecordOrderTransition(ctx, operation, string(order.Status))
}

func orderNotFound() error {
	return shared.NewDomainError("NOT_FOUND", "Order not found")
}
