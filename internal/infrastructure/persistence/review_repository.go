package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/review"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stored function names used by the review repository
const (
	ProcReactionsUpsert         = "usp_reactions_upsert"
	ProcPurchasedItemsForReview = "usp_get_purchased_items_for_review"
	reviewSelect                = "r.id, r.rating, r.description, r.created_at, w.user_id AS author_id, " +
		"COALESCE(NULLIF(u.full_name, ''), u.username) AS author_name, w.order_id, w.order_item_id, " +
		"oi.bar_code, oi.variation_name, " +
		"(SELECT COUNT(*) FROM reactions AS x WHERE x.review_id = r.id AND x.type = 'helpful') AS helpful_count"
)

type reviewRow struct {
	ID            string    `gorm:"column:id"`
	Rating        int       `gorm:"column:rating"`
	Description   string    `gorm:"column:description"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	AuthorID      string    `gorm:"column:author_id"`
	AuthorName    string    `gorm:"column:author_name"`
	OrderID       string    `gorm:"column:order_id"`
	OrderItemID   string    `gorm:"column:order_item_id"`
	BarCode       string    `gorm:"column:bar_code"`
	VariationName string    `gorm:"column:variation_name"`
	HelpfulCount  int64     `gorm:"column:helpful_count"`
}

func (row reviewRow) toDomain() review.Review {
	return review.Review{
		ID:            row.ID,
		Rating:        row.Rating,
		Description:   row.Description,
		CreatedAt:     row.CreatedAt,
		AuthorID:      row.AuthorID,
		AuthorName:    row.AuthorName,
		OrderID:       row.OrderID,
		OrderItemID:   row.OrderItemID,
		Barcode:       row.BarCode,
		VariationName: row.VariationName,
		HelpfulCount:  row.HelpfulCount,
		Replies:       make([]review.Reply, 0),
	}
}

type replyRow struct {
	ID         string    `gorm:"column:id"`
	ReviewID   string    `gorm:"column:review_id"`
	AuthorID   string    `gorm:"column:author_id"`
	AuthorName string    `gorm:"column:author_name"`
	Content    string    `gorm:"column:content"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

type reviewableRow struct {
	OrderID     string `gorm:"column:order_id"`
	OrderItemID string `gorm:"column:order_item_id"`
	BuyerID     string `gorm:"column:buyer_id"`
	OrderStatus string `gorm:"column:order_status"`
	Reviewed    bool   `gorm:"column:reviewed"`
}

type purchasedItemRow struct {
	OrderID       string          `gorm:"column:order_id"`
	OrderItemID   string          `gorm:"column:order_item_id"`
	ProductID     string          `gorm:"column:product_id"`
	ProductName   string          `gorm:"column:product_name"`
	VariationName string          `gorm:"column:variation_name"`
	Price         decimal.Decimal `gorm:"column:price"`
	PurchaseDate  time.Time       `gorm:"column:purchase_date"`
	ProductImage  *string         `gorm:"column:product_image"`
}

// GormReviewRepository implements review.ReviewRepository using GORM
type GormReviewRepository struct {
	db    *gorm.DB
	procs procedureRunner
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB, logger *zap.Logger, recorder FallbackRecorder) *GormReviewRepository {
	return &GormReviewRepository{db: db, procs: newProcedureRunner(logger, recorder)}
}

func (r *GormReviewRepository) reviewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("reviews AS r").
		Select(reviewSelect).
		Joins("JOIN write_reviews AS w ON w.review_id = r.id").
		Joins("JOIN users AS u ON u.id = w.user_id").
		Joins("JOIN order_items AS oi ON oi.id = w.order_item_id")
}

// FindByID loads a review with author, helpful count and replies
func (r *GormReviewRepository) FindByID(ctx context.Context, id string) (*review.Review, error) {
	var rows []reviewRow
	if err := r.reviewQuery(ctx).Where("r.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}

	reviews := []review.Review{rows[0].toDomain()}
	if err := r.attachReplies(ctx, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

// ListForProduct lists the reviews of a product
func (r *GormReviewRepository) ListForProduct(ctx context.Context, barcode string, filter review.ReviewFilter) ([]review.Review, error) {
	q := r.reviewQuery(ctx).Where("oi.bar_code = ?", barcode)
	if filter.Rating != nil {
		q = q.Where("r.rating = ?", *filter.Rating)
	}
	if filter.Ascending {
		q = q.Order("r.created_at ASC")
	} else {
		q = q.Order("r.created_at DESC")
	}

	var rows []reviewRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	reviews := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.toDomain())
	}
	if err := r.attachReplies(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormReviewRepository) attachReplies(ctx context.Context, reviews []review.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reviews))
	index := make(map[string]int, len(reviews))
	for i, rv := range reviews {
		ids = append(ids, rv.ID)
		index[rv.ID] = i
	}

	var rows []replyRow
	if err := r.db.WithContext(ctx).Table("replies AS rp").
		Select("rp.id, rp.review_id, rp.author AS author_id, COALESCE(NULLIF(u.full_name, ''), u.username, '') AS author_name, rp.content, rp.created_at").
		Joins("LEFT JOIN users AS u ON u.id = rp.author").
		Where("rp.review_id IN ?", ids).
		Order("rp.created_at ASC").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		i := index[row.ReviewID]
		reviews[i].Replies = append(reviews[i].Replies, review.Reply{
			ID:         row.ID,
			ReviewID:   row.ReviewID,
			AuthorID:   row.AuthorID,
			AuthorName: row.AuthorName,
			Content:    row.Content,
			CreatedAt:  row.CreatedAt,
		})
	}
	return nil
}

// FindReviewableItem loads the order item with its order's buyer and status
func (r *GormReviewRepository) FindReviewableItem(ctx context.Context, orderID, orderItemID string) (*review.ReviewableItem, error) {
	var rows []reviewableRow
	if err := r.db.WithContext(ctx).Table("order_items AS oi").
		Select("o.id AS order_id, oi.id AS order_item_id, o.buyer_id, o.status AS order_status, "+
			"EXISTS (SELECT 1 FROM write_reviews AS w WHERE w.order_item_id = oi.id) AS reviewed").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Where("oi.id = ? AND o.id = ?", orderItemID, orderID).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	row := rows[0]
	return &review.ReviewableItem{
		OrderID:     row.OrderID,
		OrderItemID: row.OrderItemID,
		BuyerID:     row.BuyerID,
		OrderStatus: row.OrderStatus,
		Reviewed:    row.Reviewed,
	}, nil
}

// Create inserts the review and its author link in one transaction
func (r *GormReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ReviewModel{
			ID:          rv.ID,
			Rating:      rv.Rating,
			Description: rv.Description,
			CreatedAt:   rv.CreatedAt,
		}
		if err := tx.Create(&model).Error; err != nil {
			return translateError(err)
		}
		link := models.WriteReviewModel{
			ReviewID:    rv.ID,
			UserID:      rv.AuthorID,
			OrderID:     rv.OrderID,
			OrderItemID: rv.OrderItemID,
		}
		return translateError(tx.Create(&link).Error)
	})
}

// UpsertReaction records the author's reaction, replacing any previous one
func (r *GormReviewRepository) UpsertReaction(ctx context.Context, reviewID, authorID string, reactionType review.ReactionType) error {
	return execWithFallback(ctx, r.db, r.procs, ProcReactionsUpsert,
		"SELECT usp_reactions_upsert(CAST(? AS VARCHAR), CAST(? AS VARCHAR), CAST(? AS VARCHAR))",
		[]any{reviewID, string(reactionType), authorID},
		func(tx *gorm.DB) error {
			reaction := models.ReactionModel{
				ReviewID:  reviewID,
				Author:    authorID,
				Type:      string(reactionType),
				CreatedAt: time.Now(),
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "review_id"}, {Name: "author"}},
				DoUpdates: clause.AssignmentColumns([]string{"type", "created_at"}),
			}).Create(&reaction).Error
		})
}

// CountHelpful counts the helpful reactions of a review
func (r *GormReviewRepository) CountHelpful(ctx context.Context, reviewID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReactionModel{}).
		Where("review_id = ? AND type = ?", reviewID, string(review.ReactionHelpful)).
		Count(&count).Error
	return count, err
}

// AddReply stores a reply
func (r *GormReviewRepository) AddReply(ctx context.Context, reply *review.Reply) error {
	model := models.ReplyModel{
		ID:        reply.ID,
		ReviewID:  reply.ReviewID,
		Author:    reply.AuthorID,
		Content:   reply.Content,
		CreatedAt: reply.CreatedAt,
	}
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

// PurchasedItemsForReview lists delivered items of the buyer without a review
func (r *GormReviewRepository) PurchasedItemsForReview(ctx context.Context, buyerID string) ([]review.PurchasedItem, error) {
	rows, err := queryWithFallback[purchasedItemRow](ctx, r.db, r.procs, ProcPurchasedItemsForReview,
		"SELECT * FROM usp_get_purchased_items_for_review(CAST(? AS VARCHAR))",
		[]any{buyerID},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Table("order_items AS oi").
				Select("o.id AS order_id, oi.id AS order_item_id, oi.bar_code AS product_id, "+
					"COALESCE(p.name, '') AS product_name, oi.variation_name, oi.price, o.placed_at AS purchase_date, "+
					"(SELECT MIN(i.image_url) FROM images AS i WHERE i.bar_code = oi.bar_code) AS product_image").
				Joins("JOIN orders AS o ON o.id = oi.order_id").
				Joins("LEFT JOIN product_skus AS p ON p.bar_code = oi.bar_code").
				Where("o.buyer_id = ? AND o.status IN ?", buyerID, soldStatuses).
				Where("NOT EXISTS (SELECT 1 FROM write_reviews AS w WHERE w.order_item_id = oi.id)").
				Order("o.placed_at DESC, oi.id ASC")
		})
	if err != nil {
		return nil, err
	}

	out := make([]review.PurchasedItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, review.PurchasedItem{
			OrderID:       row.OrderID,
			OrderItemID:   row.OrderItemID,
			Barcode:       row.ProductID,
			ProductName:   row.ProductName,
			VariationName: row.VariationName,
			Price:         row.Price,
			PurchaseDate:  row.PurchaseDate,
			ProductImage:  row.ProductImage,
		})
	}
	return out, nil
}

var _ review.ReviewRepository = (*GormReviewRepository)(nil)
