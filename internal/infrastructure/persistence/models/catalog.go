package models

import (
	"time"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductSKUModel is the persistence model for the product_skus table
type ProductSKUModel struct {
	BarCode           string     `gorm:"column:bar_code;type:varchar(64);primaryKey"`
	Name              string     `gorm:"type:varchar(200);not null;index"`
	ManufacturingDate *time.Time `gorm:"type:date"`
	ExpiredDate       *time.Time `gorm:"type:date"`
	Description       string     `gorm:"type:text"`
	SellerID          string     `gorm:"type:varchar(32);not null;index"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductSKUModel) TableName() string {
	return "product_skus"
}

// VariationModel is the persistence model for the variations table
type VariationModel struct {
	BarCode string          `gorm:"column:bar_code;type:varchar(64);primaryKey"`
	Name    string          `gorm:"type:varchar(100);primaryKey"`
	Price   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Stock   int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariationModel) TableName() string {
	return "variations"
}

// CategoryModel is the persistence model for the categories table
type CategoryModel struct {
	Name        string `gorm:"type:varchar(100);primaryKey"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// BelongsToModel links a product to its category
type BelongsToModel struct {
	BarCode      string `gorm:"column:bar_code;type:varchar(64);primaryKey"`
	CategoryName string `gorm:"type:varchar(100);not null;index"`
}

// TableName returns the table name for GORM
func (BelongsToModel) TableName() string {
	return "belongs_to"
}

// ImageModel is the persistence model for the images table
type ImageModel struct {
	BarCode  string `gorm:"column:bar_code;type:varchar(64);primaryKey"`
	ImageURL string `gorm:"column:image_url;type:varchar(1024);primaryKey"`
}

// TableName returns the table name for GORM
func (ImageModel) TableName() string {
	return "images"
}

// ToDomain converts the model to a domain Variation
func (m *VariationModel) ToDomain() catalog.Variation {
	return catalog.Variation{Name: m.Name, Price: m.Price, Stock: m.Stock}
}

// VariationModelsFromDomain converts domain variations for a product
func VariationModelsFromDomain(barcode string, variations []catalog.Variation) []VariationModel {
	out := make([]VariationModel, 0, len(variations))
	for _, v := range variations {
		out = append(out, VariationModel{BarCode: barcode, Name: v.Name, Price: v.Price, Stock: v.Stock})
	}
	return out
}

// ToDomain converts the model to a domain Category
func (m *CategoryModel) ToDomain() catalog.Category {
	return catalog.Category{Name: m.Name, Description: m.Description}
}

// ToDomain converts the SKU row to a domain Product without its child rows
func (m *ProductSKUModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		Barcode:           m.BarCode,
		Name:              m.Name,
		ManufacturingDate: m.ManufacturingDate,
		ExpiredDate:       m.ExpiredDate,
		Description:       m.Description,
		SellerID:          m.SellerID,
		Variations:        make([]catalog.Variation, 0),
		Images:            make([]string, 0),
		Timestamps: shared.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ProductSKUModelFromDomain creates a persistence model from a domain Product
func ProductSKUModelFromDomain(p *catalog.Product) *ProductSKUModel {
	return &ProductSKUModel{
		BarCode:           p.Barcode,
		Name:              p.Name,
		ManufacturingDate: p.ManufacturingDate,
		ExpiredDate:       p.ExpiredDate,
		Description:       p.Description,
		SellerID:          p.SellerID,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
