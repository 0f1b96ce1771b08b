package catalog

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// VariationRequest is a variation in create and update payloads
type VariationRequest struct {
	Name  string          `json:"name" binding:"required,max=100"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" binding:"min=0"`
}

// CreateProductRequest creates a product. BarCode is generated when empty.
type CreateProductRequest struct {
	Barcode           string             `json:"bar_code" binding:"omitempty,max=64"`
	Name              string             `json:"name" binding:"required,max=200"`
	ManufacturingDate *time.Time         `json:"manufacturing_date"`
	ExpiredDate       *time.Time         `json:"expired_date"`
	Description       string             `json:"description" binding:"max=5000"`
	Variations        []VariationRequest `json:"variations" binding:"omitempty,dive"`
	Category          *string            `json:"category" binding:"omitempty,max=100"`
}

// OptionalString distinguishes an absent JSON field from an explicit null
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only called when the key is present
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// UpdateProductRequest patches a product. A null category removes the category link.
type UpdateProductRequest struct {
	Name              *string             `json:"name" binding:"omitempty,max=200"`
	ManufacturingDate *time.Time          `json:"manufacturing_date"`
	ExpiredDate       *time.Time          `json:"expired_date"`
	Description       *string             `json:"description" binding:"omitempty,max=5000"`
	Variations        *[]VariationRequest `json:"variations" binding:"omitempty,dive"`
	Category          OptionalString      `json:"category"`
}

// AddVariationsRequest overwrites the variations of a product
type AddVariationsRequest struct {
	Variations []VariationRequest `json:"variations" binding:"required,min=1,dive"`
}

// ImageUploadRequest asks for a presigned upload url
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse carries the presigned url and where the image will be served from
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ImageURL  string    `json:"image_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageRequest references an image url of a product
type ImageRequest struct {
	ImageURL string `json:"image_url" binding:"required,max=1024"`
}

// AssignCategoryRequest links a product to a category
type AssignCategoryRequest struct {
	Category string `json:"category_name" binding:"required,max=100"`
}

// SellerProductQuery holds the seller listing filters
type SellerProductQuery struct {
	Search    string `form:"search"`
	MinPrice  string `form:"minPrice"`
	MaxPrice  string `form:"maxPrice"`
	Size      string `form:"size"`
	Color     string `form:"color"`
	Category  string `form:"category"`
	Stock     string `form:"stock" binding:"omitempty,oneof=in out"`
	HasImages string `form:"hasImages" binding:"omitempty,oneof=with without"`
	OrderBy   string `form:"orderBy"`
	Order     string `form:"order" binding:"omitempty,oneof=ASC DESC asc desc"`
	Limit     int    `form:"limit" binding:"omitempty,min=0,max=200"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

// PageQuery pages the public listings
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=0,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Normalize applies the default page size
func (q PageQuery) Normalize() PageQuery {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// VariationResponse is a variation of a product
type VariationResponse struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
	InStock bool            `json:"in_stock"`
}

// ProductResponse is a product with variations, category and images
type ProductResponse struct {
	Barcode           string              `json:"bar_code"`
	Name              string              `json:"name"`
	ManufacturingDate *time.Time          `json:"manufacturing_date"`
	ExpiredDate       *time.Time          `json:"expired_date"`
	Description       string              `json:"description"`
	SellerID          string              `json:"seller_id"`
	Category          *string             `json:"category"`
	Variations        []VariationResponse `json:"variations"`
	Images            []string            `json:"images"`
}

// ProductSummaryResponse is a listing row
type ProductSummaryResponse struct {
	Barcode     string           `json:"bar_code"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	SellerID    string           `json:"seller_id"`
	ImageURL    *string          `json:"image_url"`
	MinPrice    *decimal.Decimal `json:"min_price"`
}

// CategoryResponse is a product category
type CategoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toVariations(in []VariationRequest) []catalog.Variation {
	out := make([]catalog.Variation, 0, len(in))
	for _, v := range in {
		out = append(out, catalog.Variation{Name: v.Name, Price: v.Price.Round(2), Stock: v.Stock})
	}
	return out
}

// ToProductResponse converts a domain Product
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		Barcode:           p.Barcode,
		Name:              p.Name,
		ManufacturingDate: p.ManufacturingDate,
		ExpiredDate:       p.ExpiredDate,
		Description:       p.Description,
		SellerID:          p.SellerID,
		Category:          p.Category,
		Variations:        make([]VariationResponse, 0, len(p.Variations)),
		Images:            append(make([]string, 0, len(p.Images)), p.Images...),
	}
	for _, v := range p.Variations {
		resp.Variations = append(resp.Variations, VariationResponse{
			Name:    v.Name,
			Price:   v.Price,
			Stock:   v.Stock,
			InStock: v.InStock(),
		})
	}
	return resp
}

// ToProductSummaryResponses converts listing rows
func ToProductSummaryResponses(rows []catalog.ProductSummary) []ProductSummaryResponse {
	out := make([]ProductSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductSummaryResponse(r))
	}
	return out
}
