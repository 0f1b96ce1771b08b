package review

import (
	"context"
	"errors"
	"strings"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/review"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReviewService handles product reviews, reactions and replies
type ReviewService struct {
	reviewRepo review.ReviewRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo review.ReviewRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo}
}

// ListForProduct lists the reviews of a product, newest first unless sort is ASC
func (s *ReviewService) ListForProduct(ctx context.Context, barcode string, query ListReviewsQuery) ([]ReviewResponse, error) {
	filter := review.ReviewFilter{
		Rating:    query.Rating,
		Ascending: strings.EqualFold(query.Sort, "ASC"),
	}
	reviews, err := s.reviewRepo.ListForProduct(ctx, barcode, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ToReviewResponse(&reviews[i]))
	}
	return out, nil
}

// Get returns a review by id
func (s *ReviewService) Get(ctx context.Context, reviewID string) (*ReviewResponse, error) {
	rv, err := s.find(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	resp := ToReviewResponse(rv)
	return &resp, nil
}

// Create reviews an item of one of the buyer's delivered orders. Each item is reviewed once.
func (s *ReviewService) Create(ctx context.Context, actor identity.Actor, req CreateReviewRequest) (resp *ReviewResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "create", telemetry.SpanAttrOrderID, req.OrderID)
	defer func() { telemetry.EndSpan(span, err) }()

	item, err := s.reviewRepo.FindReviewableItem(ctx, req.OrderID, req.OrderItemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order item not found")
		}
		return nil, err
	}
	if item.BuyerID != actor.UserID {
		return nil, shared.NewDomainError("FORBIDDEN", "You can only review items you bought")
	}
	if status := trade.OrderStatus(item.OrderStatus); status != trade.OrderStatusDelivered && status != trade.OrderStatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only items of delivered orders can be reviewed")
	}
	if item.Reviewed {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "This item has already been reviewed")
	}

	rv, err := review.NewReview(actor.UserID, item.OrderID, item.OrderItemID, req.Rating, req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "This item has already been reviewed")
		}
		return nil, err
	}

	logger.L(ctx).Info("Review created",
		zap.String("review_id", rv.ID),
		zap.String("order_item_id", rv.OrderItemID),
		zap.Int("rating", rv.Rating),
	)

	created, err := s.find(ctx, rv.ID)
	if err != nil {
		return nil, err
	}
	out := ToReviewResponse(created)
	return &out, nil
}

// React records the caller's reaction and returns the review with its updated helpful count
func (s *ReviewService) React(ctx context.Context, actor identity.Actor, reviewID string, req ReactRequest) (*ReviewResponse, error) {
	reactionType := review.ReactionType(strings.ToLower(req.Type))
	if !reactionType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "type must be helpful or unhelpful")
	}
	if _, err := s.find(ctx, reviewID); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.UpsertReaction(ctx, reviewID, actor.UserID, reactionType); err != nil {
		return nil, err
	}

	rv, err := s.find(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	resp := ToReviewResponse(rv)
	return &resp, nil
}

// PurchasedItems lists the buyer's delivered items that still wait for a review
func (s *ReviewService) PurchasedItems(ctx context.Context, actor identity.Actor) ([]review.PurchasedItem, error) {
	items, err := s.reviewRepo.PurchasedItemsForReview(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []review.PurchasedItem{}
	}
	return items, nil
}

// Reply posts a reply under a review
func (s *ReviewService) Reply(ctx context.Context, actor identity.Actor, reviewID string, req ReplyRequest) (*review.Reply, error) {
	if _, err := s.find(ctx, reviewID); err != nil {
		return nil, err
	}
	reply, err := review.NewReply(reviewID, actor.UserID, req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.AddReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *ReviewService) find(ctx context.Context, reviewID string) (*review.Review, error) {
	rv, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Review not found")
		}
		return nil, err
	}
	return rv, nil
}
