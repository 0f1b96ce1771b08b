package review

import (
	"time"

	"github.com/marketplace/backend/internal/domain/review"
)

// CreateReviewRequest reviews an order item of a delivered order
type CreateReviewRequest struct {
	OrderID     string `json:"orderId" binding:"required,max=32"`
	OrderItemID string `json:"orderItemId" binding:"required,max=32"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Content     string `json:"content" binding:"max=2000"`
}

// ReactRequest marks a review helpful or unhelpful
type ReactRequest struct {
	Type string `json:"type" binding:"required,oneof=helpful unhelpful"`
}

// ReplyRequest replies to a review
type ReplyRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// ListReviewsQuery filters the reviews of a product
type ListReviewsQuery struct {
	Rating *int   `form:"rating" binding:"omitempty,min=1,max=5"`
	Sort   string `form:"sort" binding:"omitempty,oneof=ASC DESC asc desc"`
}

// ReviewResponse is a review with its author, reactions and replies
type ReviewResponse struct {
	ID            string         `json:"id"`
	Rating        int            `json:"rating"`
	Description   string         `json:"description"`
	CreatedAt     time.Time      `json:"created_at"`
	AuthorID      string         `json:"author_id"`
	AuthorName    string         `json:"author_name"`
	OrderID       string         `json:"order_id"`
	OrderItemID   string         `json:"order_item_id"`
	Barcode       string         `json:"bar_code"`
	VariationName string         `json:"variation_name"`
	HelpfulCount  int64          `json:"helpful_count"`
	Replies       []review.Reply `json:"replies"`
}

// ToReviewResponse converts a domain Review
func ToReviewResponse(r *review.Review) ReviewResponse {
	replies := r.Replies
	if replies == nil {
		replies = []review.Reply{}
	}
	return ReviewResponse{
		ID:            r.ID,
		Rating:        r.Rating,
		Description:   r.Description,
		CreatedAt:     r.CreatedAt,
		AuthorID:      r.AuthorID,
		AuthorName:    r.AuthorName,
		OrderID:       r.OrderID,
		OrderItemID:   r.OrderItemID,
		Barcode:       r.Barcode,
		VariationName: r.VariationName,
		HelpfulCount:  r.HelpfulCount,
		Replies:       replies,
	}
}
