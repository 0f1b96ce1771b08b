package review

import (
	"strings"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
)

// ReactionType is the kind of reaction left on a review
type ReactionType string

const (
	ReactionHelpful   ReactionType = "helpful"
	ReactionUnhelpful ReactionType = "unhelpful"
)

// IsValid checks if the reaction type is known
func (t ReactionType) IsValid() bool {
	return t == ReactionHelpful || t == ReactionUnhelpful
}

// Reply is a comment posted under a review
type Reply struct {
	ID         string    `json:"id"`
	ReviewID   string    `json:"review_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Review is a rating a buyer leaves on a purchased order item
type Review struct {
	ID            string
	Rating        int
	Description   string
	CreatedAt     time.Time
	AuthorID      string
	AuthorName    string
	OrderID       string
	OrderItemID   string
	Barcode       string
	VariationName string
	HelpfulCount  int64
	Replies       []Reply
}

// NewReview creates a review for an order item
func NewReview(authorID, orderID, orderItemID string, rating int, description string) (*Review, error) {
	if authorID == "" || orderID == "" || orderItemID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "orderId, orderItemId and userId are required to link a review")
	}
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	description = strings.TrimSpace(description)
	if len(description) > 2000 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Review cannot exceed 2000 characters")
	}

	return &Review{
		ID:          shared.NewID(),
		Rating:      rating,
		Description: description,
		CreatedAt:   time.Now(),
		AuthorID:    authorID,
		OrderID:     orderID,
		OrderItemID: orderItemID,
		Replies:     make([]Reply, 0),
	}, nil
}

// NewReply creates a reply to a review
func NewReply(reviewID, authorID, content string) (*Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Reply cannot be empty")
	}
	if len(content) > 2000 {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Reply cannot exceed 2000 characters")
	}
	return &Reply{
		ID:        shared.NewID(),
		ReviewID:  reviewID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}
