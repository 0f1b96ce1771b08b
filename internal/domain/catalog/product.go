package catalog

import (
	"strings"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Variation is a sellable variant of a product, identified by name within the product
type Variation struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// Validate checks the variation fields
func (v Variation) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return shared.NewDomainError("INVALID_VARIATION", "Variation name cannot be empty")
	}
	if v.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Variation price cannot be negative")
	}
	if v.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Variation stock cannot be negative")
	}
	return nil
}

// InStock reports whether the variation has stock left
func (v Variation) InStock() bool {
	return v.Stock > 0
}

// Category groups products
type Category struct {
	Name        string
	Description string
}

// Product is a stock keeping unit listed by a seller
type Product struct {
	Barcode           string
	Name              string
	ManufacturingDate *time.Time
	ExpiredDate       *time.Time
	Description       string
	SellerID          string
	Variations        []Variation
	Category          *string
	Images            []string
	shared.Timestamps
}

// NewProduct creates a product owned by a seller. An empty barcode gets a generated one.
func NewProduct(sellerID, barcode, name string) (*Product, error) {
	if sellerID == "" {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		barcode = shared.NewID()
	}
	if len(barcode) > 64 {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 64 characters")
	}

	return &Product{
		Barcode:    barcode,
		Name:       name,
		SellerID:   sellerID,
		Variations: make([]Variation, 0),
		Images:     make([]string, 0),
		Timestamps: shared.NewTimestamps(),
	}, nil
}

// SetDates sets manufacturing and expiry dates
func (p *Product) SetDates(manufacturing, expired *time.Time) error {
	if manufacturing != nil && expired != nil && expired.Before(*manufacturing) {
		return shared.NewDomainError("INVALID_DATES", "Expired date cannot be before manufacturing date")
	}
	p.ManufacturingDate = manufacturing
	p.ExpiredDate = expired
	return nil
}

// ReplaceVariations overwrites the variation list
func (p *Product) ReplaceVariations(variations []Variation) error {
	seen := make(map[string]struct{}, len(variations))
	for _, v := range variations {
		if err := v.Validate(); err != nil {
			return err
		}
		if _, ok := seen[v.Name]; ok {
			return shared.NewDomainError("DUPLICATE_VARIATION", "Variation names must be unique per product")
		}
		seen[v.Name] = struct{}{}
	}
	p.Variations = variations
	return nil
}

// IsOwnedBy reports whether the product belongs to the seller
func (p *Product) IsOwnedBy(sellerID string) bool {
	return p.SellerID == sellerID
}

// FindVariation returns the variation with the given name
func (p *Product) FindVariation(name string) (*Variation, bool) {
	for i := range p.Variations {
		if p.Variations[i].Name == name {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

// ProductPatch holds a partial product update. Nil fields are left untouched.
// ClearCategory removes the category link.
type ProductPatch struct {
	Name              *string
	ManufacturingDate *time.Time
	ExpiredDate       *time.Time
	Description       *string
	Variations        []Variation
	ReplaceVariations bool
	Category          *string
	ClearCategory     bool
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.ManufacturingDate == nil && p.ExpiredDate == nil && p.Description == nil &&
		!p.ReplaceVariations && p.Category == nil && !p.ClearCategory
}

// Validate checks the patch fields
func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if p.ManufacturingDate != nil && p.ExpiredDate != nil && p.ExpiredDate.Before(*p.ManufacturingDate) {
		return shared.NewDomainError("INVALID_DATES", "Expired date cannot be before manufacturing date")
	}
	if p.ReplaceVariations {
		candidate := Product{}
		if err := candidate.ReplaceVariations(p.Variations); err != nil {
			return err
		}
	}
	return nil
}
