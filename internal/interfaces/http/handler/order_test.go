package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	tradeapp "github.com/marketplace/backend/internal/application/trade"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type MockOrderUseCases struct {
	mock.Mock
}

func (m *MockOrderUseCases) Create(ctx context.Context, actor identity.Actor, req tradeapp.CreateOrderRequest) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) Get(ctx context.Context, actor identity.Actor, orderID string) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) ListMine(ctx context.Context, actor identity.Actor, query tradeapp.ListOrdersQuery) (*shared.Paginated[tradeapp.OrderResponse], error) {
	args := m.Called(ctx, actor, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[tradeapp.OrderResponse]), args.Error(1)
}

func (m *MockOrderUseCases) Update(ctx context.Context, actor identity.Actor, orderID string, req tradeapp.UpdateOrderRequest) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, actor, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) Delete(ctx context.Context, actor identity.Actor, orderID string) error {
	return m.Called(ctx, actor, orderID).Error(0)
}

func (m *MockOrderUseCases) Claim(ctx context.Context, actor identity.Actor, orderID string) (*tradeapp.StatusResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.StatusResponse), args.Error(1)
}

func (m *MockOrderUseCases) Depart(ctx context.Context, actor identity.Actor, orderID string, req tradeapp.DepartRequest) (*tradeapp.StatusResponse, error) {
	args := m.Called(ctx, actor, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.StatusResponse), args.Error(1)
}

func (m *MockOrderUseCases) Confirm(ctx context.Context, actor identity.Actor, orderID string) (*tradeapp.StatusResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.StatusResponse), args.Error(1)
}

func (m *MockOrderUseCases) OrderDetails(ctx context.Context, query tradeapp.OrderDetailsQuery) ([]trade.OrderDetail, error) {
	args := m.Called(ctx, query)
	rows, _ := args.Get(0).([]trade.OrderDetail)
	return rows, args.Error(1)
}

func (m *MockOrderUseCases) TopSellingProducts(ctx context.Context, actor identity.Actor, query tradeapp.TopSellingQuery) ([]trade.TopSellingProduct, error) {
	args := m.Called(ctx, actor, query)
	rows, _ := args.Get(0).([]trade.TopSellingProduct)
	return rows, args.Error(1)
}

func sampleOrder() *tradeapp.OrderResponse {
	return &tradeapp.OrderResponse{
		ID:       "0123456789abcdef0123456789abcdef",
		BuyerID:  "buyer-1",
		Address:  "12 Nguyen Hue",
		Status:   "Pending",
		Total:    decimal.RequireFromString("25.50"),
		PlacedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Items: []tradeapp.OrderItemResponse{{
			ID: "i1", Barcode: "P1", VariationName: "Red", Quantity: 3,
			Price: decimal.RequireFromString("8.50"), Amount: decimal.RequireFromString("25.50"),
		}},
	}
}

func newOrderEngine(principal *identityapp.Principal) (*MockOrderUseCases, *gin.Engine) {
	orders := new(MockOrderUseCases)
	h := NewOrderHandler(orders)
	engine := newTestEngine(principal)
	engine.POST("/orders", h.Create)
	engine.GET("/orders", h.List)
	engine.GET("/orders/details", h.Details)
	engine.GET("/orders/reports/top-selling", h.TopSelling)
	engine.GET("/orders/:orderId", h.Get)
	engine.PUT("/orders/:orderId", h.Update)
	engine.DELETE("/orders/:orderId", h.Delete)
	engine.POST("/orders/claim/:orderId", h.Claim)
	engine.POST("/orders/depart/:orderId", h.Depart)
	engine.POST("/orders/confirm/:orderId", h.Confirm)
	return orders, engine
}

func TestOrderHandler_Create(t *testing.T) {
	orders, engine := newOrderEngine(buyerPrincipal)
	orders.On("Create", mock.Anything, actorOf(buyerPrincipal), mock.MatchedBy(func(req tradeapp.CreateOrderRequest) bool {
		return req.Address == "12 Nguyen Hue" && len(req.Items) == 1 &&
			req.Items[0].Price.Equal(decimal.RequireFromString("8.50")) && req.Items[0].Quantity == 3
	})).Return(sampleOrder(), nil)

	w := perform(engine, http.MethodPost, "/orders",
		`{"address":"12 Nguyen Hue","items":[{"bar_code":"P1","variation_name":"Red","quantity":3,"price":8.50}]}`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := w.Body.String()
	assert.Equal(t, "25.5", gjson.Get(body, "data.total").String())
	assert.Equal(t, "Pending", gjson.Get(body, "data.status").String())
	assert.Equal(t, int64(1), gjson.Get(body, "data.items.#").Int())
	orders.AssertExpectations(t)
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no items", `{"address":"x","items":[]}`},
		{"no address", `{"items":[{"bar_code":"P1","variation_name":"Red","quantity":1,"price":1}]}`},
		{"zero quantity", `{"address":"x","items":[{"bar_code":"P1","variation_name":"Red","quantity":0,"price":1}]}`},
		{"unknown status", `{"address":"x","status":"Lost","items":[{"bar_code":"P1","variation_name":"Red","quantity":1,"price":1}]}`},
		{"malformed", `{"address":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, engine := newOrderEngine(buyerPrincipal)

			w := perform(engine, http.MethodPost, "/orders", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	orders, engine := newOrderEngine(buyerPrincipal)
	page := shared.NewPaginated([]tradeapp.OrderResponse{*sampleOrder()}, 21, shared.Pagination{Page: 2, PageSize: 20})
	orders.On("ListMine", mock.Anything, actorOf(buyerPrincipal), tradeapp.ListOrdersQuery{Status: "Pending", Page: 2}).
		Return(&page, nil)

	w := perform(engine, http.MethodGet, "/orders?status=Pending&page=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "data.#").Int())
	assert.Equal(t, int64(21), gjson.Get(body, "meta.total").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "meta.total_pages").Int())
}

func TestOrderHandler_Get_NotFound(t *testing.T) {
	orders, engine := newOrderEngine(buyerPrincipal)
	orders.On("Get", mock.Anything, actorOf(buyerPrincipal), "missing").
		Return(nil, shared.NewDomainError("NOT_FOUND", "Order not found"))

	w := perform(engine, http.MethodGet, "/orders/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_NOT_FOUND", gjson.Get(w.Body.String(), "error.code").String())
}

func TestOrderHandler_Update(t *testing.T) {
	t.Run("forwards the patch", func(t *testing.T) {
		orders, engine := newOrderEngine(buyerPrincipal)
		orders.On("Update", mock.Anything, actorOf(buyerPrincipal), "o1", mock.MatchedBy(func(req tradeapp.UpdateOrderRequest) bool {
			return req.NewStatus != nil && *req.NewStatus == "Processing" && req.NewAddress == nil
		})).Return(sampleOrder(), nil)

		w := perform(engine, http.MethodPut, "/orders/o1", `{"newStatus":"Processing"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("illegal transition", func(t *testing.T) {
		orders, engine := newOrderEngine(buyerPrincipal)
		orders.On("Update", mock.Anything, mock.Anything, "o1", mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_STATE", "Cannot move an order from Pending to Delivered"))

		w := perform(engine, http.MethodPut, "/orders/o1", `{"newStatus":"Delivered"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ERR_INVALID_STATE", gjson.Get(w.Body.String(), "error.code").String())
	})

	t.Run("stale status", func(t *testing.T) {
		orders, engine := newOrderEngine(buyerPrincipal)
		orders.On("Update", mock.Anything, mock.Anything, "o1", mock.Anything).
			Return(nil, shared.ErrConcurrencyConflict)

		w := perform(engine, http.MethodPut, "/orders/o1", `{"newAddress":"elsewhere"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestOrderHandler_Delete(t *testing.T) {
	orders, engine := newOrderEngine(buyerPrincipal)
	orders.On("Delete", mock.Anything, actorOf(buyerPrincipal), "o1").Return(nil)
	orders.On("Delete", mock.Anything, actorOf(buyerPrincipal), "o2").
		Return(shared.NewDomainError("INVALID_STATE", "Cannot delete/cancel an order that is in transit or delivered."))

	assert.Equal(t, http.StatusNoContent, perform(engine, http.MethodDelete, "/orders/o1", "").Code)

	w := perform(engine, http.MethodDelete, "/orders/o2", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Cannot delete/cancel an order that is in transit or delivered.", gjson.Get(w.Body.String(), "error.message").String())
}

func TestOrderHandler_ShipperFlow(t *testing.T) {
	orders, engine := newOrderEngine(shipperPrincipal)
	shipper := actorOf(shipperPrincipal)
	orders.On("Claim", mock.Anything, shipper, "o1").Return(&tradeapp.StatusResponse{OrderID: "o1", Status: "Dispatched"}, nil)
	orders.On("Depart", mock.Anything, shipper, "o1", tradeapp.DepartRequest{}).Return(&tradeapp.StatusResponse{OrderID: "o1", Status: "Delivering"}, nil)
	orders.On("Confirm", mock.Anything, shipper, "o1").Return(&tradeapp.StatusResponse{OrderID: "o1", Status: "Delivered"}, nil)

	for path, want := range map[string]string{
		"/orders/claim/o1":   "Dispatched",
		"/orders/depart/o1":  "Delivering",
		"/orders/confirm/o1": "Delivered",
	} {
		w := perform(engine, http.MethodPost, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, gjson.Get(w.Body.String(), "data.status").String())
	}
	orders.AssertExpectations(t)
}

func TestOrderHandler_Depart_WithFee(t *testing.T) {
	orders, engine := newOrderEngine(shipperPrincipal)
	orders.On("Depart", mock.Anything, actorOf(shipperPrincipal), "o1", mock.MatchedBy(func(req tradeapp.DepartRequest) bool {
		return req.ShippingFee != nil && req.ShippingFee.Equal(decimal.RequireFromString("3.25"))
	})).Return(&tradeapp.StatusResponse{OrderID: "o1", Status: "Delivering"}, nil)

	w := perform(engine, http.MethodPost, "/orders/depart/o1", `{"shipping_fee":"3.25"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	orders.AssertExpectations(t)
}

func TestOrderHandler_Reports(t *testing.T) {
	orders, engine := newOrderEngine(sellerPrincipal)
	orders.On("OrderDetails", mock.Anything, tradeapp.OrderDetailsQuery{Status: "Delivered", MinItems: 2}).Return(nil, nil)
	orders.On("TopSellingProducts", mock.Anything, actorOf(sellerPrincipal), tradeapp.TopSellingQuery{MinQuantity: 5}).
		Return([]trade.TopSellingProduct{{Barcode: "P1", Name: "Shirt", TotalQuantitySold: 9}}, nil)

	w := perform(engine, http.MethodGet, "/orders/details?status=Delivered&minItems=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "data").IsArray())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "data.#").Int())

	w = perform(engine, http.MethodGet, "/orders/reports/top-selling?minQuantity=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(9), gjson.Get(w.Body.String(), "data.0.total_quantity_sold").Int())

	w = perform(engine, http.MethodGet, "/orders/details?minItems=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
