package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const productSummarySelect = "p.bar_code, p.name, p.description, p.seller_id, " +
	"(SELECT MIN(i.image_url) FROM images AS i WHERE i.bar_code = p.bar_code) AS image_url, " +
	"(SELECT MIN(v.price) FROM variations AS v WHERE v.bar_code = p.bar_code) AS min_price"

type productSummaryRow struct {
	BarCode     string           `gorm:"column:bar_code"`
	Name        string           `gorm:"column:name"`
	Description string           `gorm:"column:description"`
	SellerID    string           `gorm:"column:seller_id"`
	ImageURL    *string          `gorm:"column:image_url"`
	MinPrice    *decimal.Decimal `gorm:"column:min_price"`
}

func (row productSummaryRow) toDomain() catalog.ProductSummary {
	return catalog.ProductSummary{
		Barcode:     row.BarCode,
		Name:        row.Name,
		Description: row.Description,
		SellerID:    row.SellerID,
		ImageURL:    row.ImageURL,
		MinPrice:    row.MinPrice,
	}
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByBarcode loads a product with its variations, category and images
func (r *GormProductRepository) FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	tx := r.db.WithContext(ctx)

	var sku models.ProductSKUModel
	if err := tx.Where("bar_code = ?", barcode).First(&sku).Error; err != nil {
		return nil, translateError(err)
	}
	product := sku.ToDomain()

	var variations []models.VariationModel
	if err := tx.Where("bar_code = ?", barcode).Order("name").Find(&variations).Error; err != nil {
		return nil, err
	}
	for i := range variations {
		product.Variations = append(product.Variations, variations[i].ToDomain())
	}

	var links []models.BelongsToModel
	if err := tx.Where("bar_code = ?", barcode).Limit(1).Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) > 0 {
		category := links[0].CategoryName
		product.Category = &category
	}

	var images []models.ImageModel
	if err := tx.Where("bar_code = ?", barcode).Order("image_url").Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		product.Images = append(product.Images, img.ImageURL)
	}

	return product, nil
}

// ListBySeller lists a seller's products with the dynamic filter applied
func (r *GormProductRepository) ListBySeller(ctx context.Context, sellerID string, filter catalog.ProductFilter) ([]catalog.ProductSummary, error) {
	q := r.db.WithContext(ctx).Table("product_skus AS p").
		Select(productSummarySelect).
		Where("p.seller_id = ?", sellerID)

	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("(LOWER(p.name) LIKE ? OR LOWER(p.bar_code) LIKE ?)", like, like)
	}
	if filter.MinPrice != nil {
		q = q.Where("EXISTS (SELECT 1 FROM variations AS v WHERE v.bar_code = p.bar_code AND v.price >= ?)", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("EXISTS (SELECT 1 FROM variations AS v WHERE v.bar_code = p.bar_code AND v.price <= ?)", *filter.MaxPrice)
	}
	if size := strings.ToLower(strings.TrimSpace(filter.Size)); size != "" {
		q = q.Where("EXISTS (SELECT 1 FROM variations AS v WHERE v.bar_code = p.bar_code AND LOWER(v.name) LIKE ?)", "%"+size+"%")
	}
	if color := strings.ToLower(strings.TrimSpace(filter.Color)); color != "" {
		q = q.Where("EXISTS (SELECT 1 FROM variations AS v WHERE v.bar_code = p.bar_code AND LOWER(v.name) LIKE ?)", "%"+color+"%")
	}
	if filter.Category != "" {
		q = q.Where("EXISTS (SELECT 1 FROM belongs_to AS b WHERE b.bar_code = p.bar_code AND b.category_name = ?)", filter.Category)
	}
	switch filter.Stock {
	case catalog.StockIn:
		q = q.Where("EXISTS (SELECT 1 FROM variations AS v WHERE v.bar_code = p.bar_code AND v.stock > 0)")
	case catalog.StockOut:
		q = q.Where("NOT EXISTS (SELECT 1 FROM variations AS v WHERE v.bar_code = p.bar_code AND v.stock > 0)")
	}
	switch filter.HasImages {
	case catalog.ImagesWith:
		q = q.Where("EXISTS (SELECT 1 FROM images AS i WHERE i.bar_code = p.bar_code)")
	case catalog.ImagesWithout:
		q = q.Where("NOT EXISTS (SELECT 1 FROM images AS i WHERE i.bar_code = p.bar_code)")
	}

	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	column := ValidateSortField(filter.OrderBy, ProductSortFields, "p.bar_code")
	q = q.Order(fmt.Sprintf("%s %s", column, direction))

	return r.scanSummaries(q, filter.Limit, filter.Offset)
}

// Search lists products whose name contains name; an empty name lists everything
func (r *GormProductRepository) Search(ctx context.Context, name string, limit, offset int) ([]catalog.ProductSummary, error) {
	q := r.db.WithContext(ctx).Table("product_skus AS p").Select(productSummarySelect)
	if term := strings.ToLower(strings.TrimSpace(name)); term != "" {
		q = q.Where("LOWER(p.name) LIKE ?", "%"+term+"%")
	}
	return r.scanSummaries(q.Order("p.name ASC, p.bar_code ASC"), limit, offset)
}

// ListByCategory lists products linked to the category
func (r *GormProductRepository) ListByCategory(ctx context.Context, category string, limit, offset int) ([]catalog.ProductSummary, error) {
	q := r.db.WithContext(ctx).Table("product_skus AS p").
		Select(productSummarySelect).
		Joins("JOIN belongs_to AS b ON b.bar_code = p.bar_code").
		Where("b.category_name = ?", category).
		Order("p.name ASC, p.bar_code ASC")
	return r.scanSummaries(q, limit, offset)
}

func (r *GormProductRepository) scanSummaries(q *gorm.DB, limit, offset int) ([]catalog.ProductSummary, error) {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var rows []productSummaryRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.ProductSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Create inserts the product, its variations and its category link in one transaction
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ProductSKUModelFromDomain(product)).Error; err != nil {
			return translateError(err)
		}
		if len(product.Variations) > 0 {
			variations := models.VariationModelsFromDomain(product.Barcode, product.Variations)
			if err := tx.Create(&variations).Error; err != nil {
				return translateError(err)
			}
		}
		if product.Category != nil {
			link := models.BelongsToModel{BarCode: product.Barcode, CategoryName: *product.Category}
			if err := tx.Create(&link).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// Update applies the patch to the seller's product in one transaction
func (r *GormProductRepository) Update(ctx context.Context, sellerID, barcode string, patch catalog.ProductPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"updated_at": time.Now()}
		if patch.Name != nil {
			updates["name"] = strings.TrimSpace(*patch.Name)
		}
		if patch.ManufacturingDate != nil {
			updates["manufacturing_date"] = *patch.ManufacturingDate
		}
		if patch.ExpiredDate != nil {
			updates["expired_date"] = *patch.ExpiredDate
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}

		res := tx.Model(&models.ProductSKUModel{}).
			Where("bar_code = ? AND seller_id = ?", barcode, sellerID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if patch.ReplaceVariations {
			if err := replaceVariations(tx, barcode, patch.Variations); err != nil {
				return err
			}
		}
		if patch.ClearCategory || patch.Category != nil {
			if err := tx.Where("bar_code = ?", barcode).Delete(&models.BelongsToModel{}).Error; err != nil {
				return err
			}
		}
		if patch.Category != nil && !patch.ClearCategory {
			link := models.BelongsToModel{BarCode: barcode, CategoryName: *patch.Category}
			if err := tx.Create(&link).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// Delete removes the seller's product and its child rows
func (r *GormProductRepository) Delete(ctx context.Context, sellerID, barcode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("bar_code = ? AND seller_id = ?", barcode, sellerID).Delete(&models.ProductSKUModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		for _, child := range []any{&models.VariationModel{}, &models.BelongsToModel{}, &models.ImageModel{}} {
			if err := tx.Where("bar_code = ?", barcode).Delete(child).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceVariations checks the seller owns the product and overwrites its variations
func (r *GormProductRepository) ReplaceVariations(ctx context.Context, sellerID, barcode string, variations []catalog.Variation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProductSKUModel{}).
			Where("bar_code = ? AND seller_id = ?", barcode, sellerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return replaceVariations(tx, barcode, variations)
	})
}

func replaceVariations(tx *gorm.DB, barcode string, variations []catalog.Variation) error {
	if err := tx.Where("bar_code = ?", barcode).Delete(&models.VariationModel{}).Error; err != nil {
		return err
	}
	if len(variations) == 0 {
		return nil
	}
	rows := models.VariationModelsFromDomain(barcode, variations)
	return translateError(tx.Create(&rows).Error)
}

// FindVariation loads one variation of a product
func (r *GormProductRepository) FindVariation(ctx context.Context, barcode, name string) (*catalog.Variation, error) {
	var model models.VariationModel
	if err := r.db.WithContext(ctx).
		Where("bar_code = ? AND name = ?", barcode, name).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	v := model.ToDomain()
	return &v, nil
}

// AssignCategory replaces the category link of a product
func (r *GormProductRepository) AssignCategory(ctx context.Context, barcode, category string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bar_code = ?", barcode).Delete(&models.BelongsToModel{}).Error; err != nil {
			return err
		}
		link := models.BelongsToModel{BarCode: barcode, CategoryName: category}
		return translateError(tx.Create(&link).Error)
	})
}

// AddImage links an image url to a product
func (r *GormProductRepository) AddImage(ctx context.Context, barcode, url string) error {
	img := models.ImageModel{BarCode: barcode, ImageURL: url}
	return translateError(r.db.WithContext(ctx).Create(&img).Error)
}

// RemoveImage unlinks an image url from a product
func (r *GormProductRepository) RemoveImage(ctx context.Context, barcode, url string) error {
	res := r.db.WithContext(ctx).
		Where("bar_code = ? AND image_url = ?", barcode, url).
		Delete(&models.ImageModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindAll lists all categories ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Category, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// Exists checks if a category exists
func (r *GormCategoryRepository) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
