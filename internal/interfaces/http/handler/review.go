package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	reviewapp "github.com/marketplace/backend/internal/application/review"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/review"
)

// ReviewUseCases is what the review endpoints need from the review service
type ReviewUseCases interface {
	ListForProduct(ctx context.Context, barcode string, query reviewapp.ListReviewsQuery) ([]reviewapp.ReviewResponse, error)
	Get(ctx context.Context, reviewID string) (*reviewapp.ReviewResponse, error)
	Create(ctx context.Context, actor identity.Actor, req reviewapp.CreateReviewRequest) (*reviewapp.ReviewResponse, error)
	React(ctx context.Context, actor identity.Actor, reviewID string, req reviewapp.ReactRequest) (*reviewapp.ReviewResponse, error)
	PurchasedItems(ctx context.Context, actor identity.Actor) ([]review.PurchasedItem, error)
	Reply(ctx context.Context, actor identity.Actor, reviewID string, req reviewapp.ReplyRequest) (*review.Reply, error)
}

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	BaseHandler
	reviews ReviewUseCases
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews ReviewUseCases) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ListForProduct godoc
// @Summary      Reviews of a product
// @Tags         reviews
// @Produce      json
// @Param        barcode path  string true  "Barcode"
// @Param        rating  query int    false "Only this rating"
// @Param        sort    query string false "ASC or DESC by date" default(DESC)
// @Success      200 {object} APIResponse[[]reviewapp.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products/{barcode}/reviews [get]
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	var query reviewapp.ListReviewsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	reviews, err := h.reviews.ListForProduct(c.Request.Context(), c.Param("barcode"), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(reviews))
}

// Get godoc
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        reviewId path string true "Review ID"
// @Success      200 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /reviews/{reviewId} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	rv, err := h.reviews.Get(c.Request.Context(), c.Param("reviewId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rv)
}

// Create godoc
// @Summary      Review a purchased item
// @Description  The item must belong to one of the buyer's delivered orders and not be reviewed yet
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        request body reviewapp.CreateReviewRequest true "Review"
// @Success      201 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req reviewapp.CreateReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rv, err := h.reviews.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rv)
}

// React godoc
// @Summary      React to a review
// @Description  helpful or unhelpful; reacting again replaces the previous reaction
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        reviewId path string true "Review ID"
// @Param        request body reviewapp.ReactRequest true "Reaction"
// @Success      200 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{reviewId}/reactions [post]
func (h *ReviewHandler) React(c *gin.Context) {
	var req reviewapp.ReactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rv, err := h.reviews.React(c.Request.Context(), actor(c), c.Param("reviewId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rv)
}

// Purchased godoc
// @Summary      Items waiting for a review
// @Tags         reviews
// @Produce      json
// @Success      200 {object} APIResponse[[]review.PurchasedItem]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/purchased [get]
func (h *ReviewHandler) Purchased(c *gin.Context) {
	items, err := h.reviews.PurchasedItems(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(items))
}

// Reply godoc
// @Summary      Reply to a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        reviewId path string true "Review ID"
// @Param        request body reviewapp.ReplyRequest true "Reply"
// @Success      201 {object} APIResponse[review.Reply]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{reviewId}/replies [post]
func (h *ReviewHandler) Reply(c *gin.Context) {
	var req reviewapp.ReplyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	reply, err := h.reviews.Reply(c.Request.Context(), actor(c), c.Param("reviewId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reply)
}
