package models

import "time"

// ReviewModel is the persistence model for the reviews table
type ReviewModel struct {
	ID          string    `gorm:"type:varchar(32);primaryKey"`
	Rating      int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// WriteReviewModel links a review to its author and the reviewed order item.
// An order item can be reviewed once.
type WriteReviewModel struct {
	ReviewID    string `gorm:"type:varchar(32);primaryKey"`
	UserID      string `gorm:"type:varchar(32);not null;index"`
	OrderID     string `gorm:"type:varchar(32);not null"`
	OrderItemID string `gorm:"type:varchar(32);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (WriteReviewModel) TableName() string {
	return "write_reviews"
}

// ReactionModel is one user's reaction to a review
type ReactionModel struct {
	ReviewID  string    `gorm:"type:varchar(32);primaryKey"`
	Author    string    `gorm:"type:varchar(32);primaryKey"`
	Type      string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReactionModel) TableName() string {
	return "reactions"
}

// ReplyModel is the persistence model for the replies table
type ReplyModel struct {
	ID        string    `gorm:"type:varchar(32);primaryKey"`
	ReviewID  string    `gorm:"type:varchar(32);not null;index"`
	Author    string    `gorm:"type:varchar(32);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReplyModel) TableName() string {
	return "replies"
}

// AllModels lists every persisted model, used to auto-migrate test databases
func AllModels() []any {
	return []any{
		&UserModel{},
		&CategoryModel{},
		&ProductSKUModel{},
		&VariationModel{},
		&BelongsToModel{},
		&ImageModel{},
		&OrderModel{},
		&OrderItemModel{},
		&DeliverModel{},
		&ReviewModel{},
		&WriteReviewModel{},
		&ReactionModel{},
		&ReplyModel{},
	}
}
