package review

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReviewFilter narrows the reviews of a product
type ReviewFilter struct {
	Rating    *int
	Ascending bool
}

// PurchasedItem is an order item of a delivered order the buyer has not reviewed yet
type PurchasedItem struct {
	OrderID       string          `json:"order_id"`
	OrderItemID   string          `json:"order_item_id"`
	Barcode       string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	VariationName string          `json:"variation_name"`
	Price         decimal.Decimal `json:"price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	ProductImage  *string         `json:"product_image"`
}

// ReviewableItem describes the order item a review is about
type ReviewableItem struct {
	OrderID     string
	OrderItemID string
	BuyerID     string
	OrderStatus string
	Reviewed    bool
}

// ReviewRepository defines persistence for reviews, reactions and replies
type ReviewRepository interface {
	// FindByID loads a review with author, helpful count and replies
	FindByID(ctx context.Context, id string) (*Review, error)

	// ListForProduct lists the reviews of a product, newest first unless Ascending
	ListForProduct(ctx context.Context, barcode string, filter ReviewFilter) ([]Review, error)

	// FindReviewableItem loads the order item a buyer wants to review
	FindReviewableItem(ctx context.Context, orderID, orderItemID string) (*ReviewableItem, error)

	// Create inserts the review and its author link in one transaction
	Create(ctx context.Context, review *Review) error

	// UpsertReaction records the author's reaction, replacing a previous one
	UpsertReaction(ctx context.Context, reviewID, authorID string, reactionType ReactionType) error

	// CountHelpful counts helpful reactions of a review
	CountHelpful(ctx context.Context, reviewID string) (int64, error)

	// AddReply stores a reply
	AddReply(ctx context.Context, reply *Reply) error

	// PurchasedItemsForReview lists delivered items of the buyer that have no review yet
	PurchasedItemsForReview(ctx context.Context, buyerID string) ([]PurchasedItem, error)
}
