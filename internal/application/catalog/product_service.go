package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImageStorage is the object storage product images are uploaded to
type ImageStorage interface {
	// PresignUpload returns a presigned PUT url for key and its expiry
	PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error)

	// PublicURL returns the url an uploaded object is served from
	PublicURL(key string) string

	// KeyFromURL extracts the object key from a url served by this storage
	KeyFromURL(url string) (string, bool)

	ObjectExists(ctx context.Context, key string) (bool, error)
	DeleteObject(ctx context.Context, key string) error
}

// imageExtensions whitelists the content types accepted for product images.
// SVG is excluded because it can carry scripts.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storage      ImageStorage
}

// NewProductService creates a new ProductService. storage may be nil when object storage is disabled.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ImageStorage,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
	}
}

// ListBySeller lists the caller's products
func (s *ProductService) ListBySeller(ctx context.Context, actor identity.Actor, query SellerProductQuery) ([]ProductSummaryResponse, error) {
	filter := catalog.ProductFilter{
		Search:    query.Search,
		Size:      query.Size,
		Color:     query.Color,
		Category:  query.Category,
		Stock:     query.Stock,
		HasImages: query.HasImages,
		OrderBy:   query.OrderBy,
		Ascending: strings.EqualFold(query.Order, "ASC"),
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	var err error
	if filter.MinPrice, err = parsePrice("minPrice", query.MinPrice); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parsePrice("maxPrice", query.MaxPrice); err != nil {
		return nil, err
	}

	rows, err := s.productRepo.ListBySeller(ctx, actor.UserID, filter)
	if err != nil {
		return nil, err
	}
	return ToProductSummaryResponses(rows), nil
}

// Get returns one of the caller's products
func (s *ProductService) Get(ctx context.Context, actor identity.Actor, barcode string) (*ProductResponse, error) {
	product, err := s.ownedProduct(ctx, actor, barcode)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create creates a product with its variations and category
func (s *ProductService) Create(ctx context.Context, actor identity.Actor, req CreateProductRequest) (resp *ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create", telemetry.SpanAttrActorRole, string(actor.Role))
	defer func() { telemetry.EndSpan(span, err) }()

	product, err := catalog.NewProduct(actor.UserID, req.Barcode, req.Name)
	if err != nil {
		return nil, err
	}
	if err := product.SetDates(req.ManufacturingDate, req.ExpiredDate); err != nil {
		return nil, err
	}
	product.Description = strings.TrimSpace(req.Description)
	if err := product.ReplaceVariations(toVariations(req.Variations)); err != nil {
		return nil, err
	}
	if req.Category != nil && *req.Category != "" {
		if err := s.ensureCategory(ctx, *req.Category); err != nil {
			return nil, err
		}
		product.Category = req.Category
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this barcode already exists")
		}
		return nil, err
	}

	logger.L(ctx).Info("Product created",
		zap.String("bar_code", product.Barcode),
		zap.Int("variations", len(product.Variations)),
	)
	out := ToProductResponse(product)
	return &out, nil
}

// Update patches a product. Variations are overwritten when provided.
func (s *ProductService) Update(ctx context.Context, actor identity.Actor, barcode string, req UpdateProductRequest) (*ProductResponse, error) {
	patch := catalog.ProductPatch{
		Name:              req.Name,
		ManufacturingDate: req.ManufacturingDate,
		ExpiredDate:       req.ExpiredDate,
		Description:       req.Description,
	}
	if req.Variations != nil {
		patch.ReplaceVariations = true
		patch.Variations = toVariations(*req.Variations)
	}
	if req.Category.Set {
		if req.Category.Value == nil || *req.Category.Value == "" {
			patch.ClearCategory = true
		} else {
			patch.Category = req.Category.Value
		}
	}
	if patch.IsEmpty() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "No fields to update")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Category != nil {
		if err := s.ensureCategory(ctx, *patch.Category); err != nil {
			return nil, err
		}
	}

	sellerID, err := s.sellerFor(ctx, actor, barcode)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, sellerID, barcode, patch); err != nil {
		return nil, notFoundAs(err)
	}

	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes one of the caller's products
func (s *ProductService) Delete(ctx context.Context, actor identity.Actor, barcode string) error {
	sellerID, err := s.sellerFor(ctx, actor, barcode)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, sellerID, barcode); err != nil {
		return notFoundAs(err)
	}
	logger.L(ctx).Info("Product deleted", zap.String("bar_code", barcode))
	return nil
}

// AddVariations overwrites the variations of one of the caller's products
func (s *ProductService) AddVariations(ctx context.Context, actor identity.Actor, barcode string, req AddVariationsRequest) (*ProductResponse, error) {
	variations := toVariations(req.Variations)
	candidate := catalog.Product{}
	if err := candidate.ReplaceVariations(variations); err != nil {
		return nil, err
	}

	sellerID, err := s.sellerFor(ctx, actor, barcode)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.ReplaceVariations(ctx, sellerID, barcode, variations); err != nil {
		return nil, notFoundAs(err)
	}

	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// RequestImageUpload returns a presigned url the client uploads the image to
func (s *ProductService) RequestImageUpload(ctx context.Context, actor identity.Actor, barcode string, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("SERVICE_UNAVAILABLE", "Image storage is not enabled")
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", fmt.Sprintf("Content type %q is not allowed", req.ContentType))
	}
	if _, err := s.ownedProduct(ctx, actor, barcode); err != nil {
		return nil, err
	}

	key := path.Join("products", barcode, shared.NewID()+ext)
	uploadURL, expiresAt, err := s.storage.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &ImageUploadResponse{
		UploadURL: uploadURL,
		Key:       key,
		ImageURL:  s.storage.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}

// AttachImage links an image url to one of the caller's products.
// Urls served by our storage must point at an uploaded object.
func (s *ProductService) AttachImage(ctx context.Context, actor identity.Actor, barcode string, req ImageRequest) (*ProductResponse, error) {
	product, err := s.ownedProduct(ctx, actor, barcode)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSpace(req.ImageURL)
	if url == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "image_url is required")
	}
	for _, existing := range product.Images {
		if existing == url {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Image already linked to the product")
		}
	}

	if s.storage != nil {
		if key, ok := s.storage.KeyFromURL(url); ok {
			exists, err := s.storage.ObjectExists(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("check uploaded image: %w", err)
			}
			if !exists {
				return nil, shared.NewDomainError("VALIDATION_ERROR", "Image has not been uploaded")
			}
		}
	}

	if err := s.productRepo.AddImage(ctx, barcode, url); err != nil {
		return nil, err
	}
	product.Images = append(product.Images, url)
	resp := ToProductResponse(product)
	return &resp, nil
}

// DetachImage unlinks an image and removes the object when our storage serves it
func (s *ProductService) DetachImage(ctx context.Context, actor identity.Actor, barcode string, req ImageRequest) error {
	if _, err := s.ownedProduct(ctx, actor, barcode); err != nil {
		return err
	}
	url := strings.TrimSpace(req.ImageURL)
	if err := s.productRepo.RemoveImage(ctx, barcode, url); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Image not found")
		}
		return err
	}

	if s.storage != nil {
		if key, ok := s.storage.KeyFromURL(url); ok {
			if err := s.storage.DeleteObject(ctx, key); err != nil {
				logger.L(ctx).Warn("Failed to delete image object",
					zap.String("bar_code", barcode),
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Search lists products whose name contains name
func (s *ProductService) Search(ctx context.Context, name string, page PageQuery) ([]ProductSummaryResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "name is required")
	}
	page = page.Normalize()
	rows, err := s.productRepo.Search(ctx, name, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return ToProductSummaryResponses(rows), nil
}

// ListAll lists every product by name
func (s *ProductService) ListAll(ctx context.Context, page PageQuery) ([]ProductSummaryResponse, error) {
	page = page.Normalize()
	rows, err := s.productRepo.Search(ctx, "", page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return ToProductSummaryResponses(rows), nil
}

// ListByCategory lists the products of a category
func (s *ProductService) ListByCategory(ctx context.Context, category string, page PageQuery) ([]ProductSummaryResponse, error) {
	page = page.Normalize()
	rows, err := s.productRepo.ListByCategory(ctx, category, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return ToProductSummaryResponses(rows), nil
}

// Details returns any product by barcode
func (s *ProductService) Details(ctx context.Context, barcode string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFoundAs(err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// AssignCategory links a product to a category. Only the owning seller or an admin may do so.
func (s *ProductService) AssignCategory(ctx context.Context, actor identity.Actor, barcode string, req AssignCategoryRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFoundAs(err)
	}
	if !actor.CanAccessOwnedBy(product.SellerID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the seller of the product can categorize it")
	}
	if err := s.ensureCategory(ctx, req.Category); err != nil {
		return nil, err
	}
	if err := s.productRepo.AssignCategory(ctx, barcode, req.Category); err != nil {
		return nil, err
	}
	product.Category = &req.Category
	resp := ToProductResponse(product)
	return &resp, nil
}

// ownedProduct loads a product the actor may manage; other sellers' products are reported as missing
func (s *ProductService) ownedProduct(ctx context.Context, actor identity.Actor, barcode string) (*catalog.Product, error) {
	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFoundAs(err)
	}
	if !actor.CanAccessOwnedBy(product.SellerID) {
		return nil, productNotFound()
	}
	return product, nil
}

// sellerFor returns the seller id seller-scoped writes run under.
// Admins act on behalf of the product's seller.
func (s *ProductService) sellerFor(ctx context.Context, actor identity.Actor, barcode string) (string, error) {
	if !actor.IsAdmin() {
		return actor.UserID, nil
	}
	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return "", notFoundAs(err)
	}
	return product.SellerID, nil
}

func (s *ProductService) ensureCategory(ctx context.Context, name string) error {
	exists, err := s.categoryRepo.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Category %q does not exist", name))
	}
	return nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("%s must be a number", field))
	}
	return &d, nil
}

func notFoundAs(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return productNotFound()
	}
	return err
}

func productNotFound() error {
	return shared.NewDomainError("NOT_FOUND", "Product not found")
}
