package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Stock filter values
const (
	StockIn  = "in"
	StockOut = "out"
)

// Image filter values
const (
	ImagesWith    = "with"
	ImagesWithout = "without"
)

// Sortable columns
const (
	SortByBarcode           = "BarCode"
	SortByName              = "Name"
	SortByManufacturingDate = "Manufacturing_date"
	SortByExpiredDate       = "Expired_date"
)

// ProductFilter holds the seller listing filters
type ProductFilter struct {
	Search    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Size      string
	Color     string
	Category  string
	Stock     string
	HasImages string
	OrderBy   string
	Ascending bool
	Limit     int
	Offset    int
}

// ProductSummary is a listing row with the first image of the product
type ProductSummary struct {
	Barcode     string
	Name        string
	Description string
	SellerID    string
	ImageURL    *string
	MinPrice    *decimal.Decimal
}

// ProductRepository defines persistence for products and their variations, category and images
type ProductRepository interface {
	// FindByBarcode loads a product with variations, category and images
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// ListBySeller lists a seller's products using the dynamic filter
	ListBySeller(ctx context.Context, sellerID string, filter ProductFilter) ([]ProductSummary, error)

	// Search lists products whose name contains the term
	Search(ctx context.Context, name string, limit, offset int) ([]ProductSummary, error)

	// ListByCategory lists products linked to a category
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]ProductSummary, error)

	// Create inserts the product with variations and category in one transaction
	Create(ctx context.Context, product *Product) error

	// Update applies the patch to a seller's product in one transaction.
	// It returns ErrNotFound when the seller owns no such product.
	Update(ctx context.Context, sellerID, barcode string, patch ProductPatch) error

	// Delete removes a seller's product, returning ErrNotFound when nothing was deleted
	Delete(ctx context.Context, sellerID, barcode string) error

	// ReplaceVariations checks ownership and overwrites the variations in one transaction
	ReplaceVariations(ctx context.Context, sellerID, barcode string, variations []Variation) error

	// FindVariation returns a single variation
	FindVariation(ctx context.Context, barcode, name string) (*Variation, error)

	// AssignCategory replaces the category link of a product
	AssignCategory(ctx context.Context, barcode, category string) error

	// AddImage links an image url to the product
	AddImage(ctx context.Context, barcode, url string) error

	// RemoveImage unlinks an image url, returning ErrNotFound when it was not linked
	RemoveImage(ctx context.Context, barcode, url string) error
}

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	// FindAll lists all categories by name
	FindAll(ctx context.Context) ([]Category, error)

	// Exists checks if a category exists
	Exists(ctx context.Context, name string) (bool, error)
}
