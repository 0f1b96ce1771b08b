package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
)

// ProductUseCases is what the product endpoints need from the product service
type ProductUseCases interface {
	ListBySeller(ctx context.Context, actor identity.Actor, query catalogapp.SellerProductQuery) ([]catalogapp.ProductSummaryResponse, error)
	Get(ctx context.Context, actor identity.Actor, barcode string) (*catalogapp.ProductResponse, error)
	Create(ctx context.Context, actor identity.Actor, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, actor identity.Actor, barcode string, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, actor identity.Actor, barcode string) error
	AddVariations(ctx context.Context, actor identity.Actor, barcode string, req catalogapp.AddVariationsRequest) (*catalogapp.ProductResponse, error)
	RequestImageUpload(ctx context.Context, actor identity.Actor, barcode string, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error)
	AttachImage(ctx context.Context, actor identity.Actor, barcode string, req catalogapp.ImageRequest) (*catalogapp.ProductResponse, error)
	DetachImage(ctx context.Context, actor identity.Actor, barcode string, req catalogapp.ImageRequest) error
	Search(ctx context.Context, name string, page catalogapp.PageQuery) ([]catalogapp.ProductSummaryResponse, error)
	ListAll(ctx context.Context, page catalogapp.PageQuery) ([]catalogapp.ProductSummaryResponse, error)
	ListByCategory(ctx context.Context, category string, page catalogapp.PageQuery) ([]catalogapp.ProductSummaryResponse, error)
	Details(ctx context.Context, barcode string) (*catalogapp.ProductResponse, error)
	AssignCategory(ctx context.Context, actor identity.Actor, barcode string, req catalogapp.AssignCategoryRequest) (*catalogapp.ProductResponse, error)
}

// ProductHandler handles the seller product endpoints and the public catalog
type ProductHandler struct {
	BaseHandler
	products ProductUseCases
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductUseCases) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListMine godoc
// @Summary      List my products
// @Description  The seller's products with filters. orderBy is one of BarCode, Name, Manufacturing_date, Expired_date.
// @Tags         seller-products
// @Produce      json
// @Param        search    query string false "Name or barcode contains"
// @Param        minPrice  query string false "Minimum variation price"
// @Param        maxPrice  query string false "Maximum variation price"
// @Param        size      query string false "Variation name contains"
// @Param        color     query string false "Variation name contains"
// @Param        category  query string false "Category name"
// @Param        stock     query string false "in or out"
// @Param        hasImages query string false "with or without"
// @Param        orderBy   query string false "Sort column" default(BarCode)
// @Param        order     query string false "ASC or DESC" default(DESC)
// @Param        limit     query int    false "Page size"
// @Param        offset    query int    false "Offset"
// @Success      200 {object} APIResponse[[]catalogapp.ProductSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products [get]
func (h *ProductHandler) ListMine(c *gin.Context) {
	var query catalogapp.SellerProductQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rows, err := h.products.ListBySeller(c.Request.Context(), actor(c), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(rows))
}

// Get godoc
// @Summary      Get my product
// @Tags         seller-products
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products/{barcode} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), actor(c), c.Param("barcode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Description  Product, variations and category link are written in one transaction. A barcode is generated when absent.
// @Tags         seller-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.products.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Only provided fields change. Variations are replaced when given; "category": null removes the category.
// @Tags         seller-products
// @Accept       json
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Param        request body catalogapp.UpdateProductRequest true "Patch"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products/{barcode} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.products.Update(c.Request.Context(), actor(c), c.Param("barcode"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         seller-products
// @Param        barcode path string true "Barcode"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products/{barcode} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), actor(c), c.Param("barcode")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddVariations godoc
// @Summary      Replace variations
// @Tags         seller-products
// @Accept       json
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Param        request body catalogapp.AddVariationsRequest true "Variations"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products/{barcode}/variations [post]
func (h *ProductHandler) AddVariations(c *gin.Context) {
	var req catalogapp.AddVariationsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.products.AddVariations(c.Request.Context(), actor(c), c.Param("barcode"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// RequestImageUpload godoc
// @Summary      Presigned image upload
// @Description  Returns a presigned PUT url. Upload the file there, then attach image_url.
// @Tags         seller-products
// @Accept       json
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Param        request body catalogapp.ImageUploadRequest true "Content type"
// @Success      200 {object} APIResponse[catalogapp.ImageUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products/{barcode}/images/upload-url [post]
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	var req catalogapp.ImageUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upload, err := h.products.RequestImageUpload(c.Request.Context(), actor(c), c.Param("barcode"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// AttachImage godoc
// @Summary      Attach an image
// @Tags         seller-products
// @Accept       json
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Param        request body catalogapp.ImageRequest true "Image"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products/{barcode}/images [post]
func (h *ProductHandler) AttachImage(c *gin.Context) {
	var req catalogapp.ImageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.products.AttachImage(c.Request.Context(), actor(c), c.Param("barcode"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DetachImage godoc
// @Summary      Remove an image
// @Tags         seller-products
// @Accept       json
// @Param        barcode path string true "Barcode"
// @Param        request body catalogapp.ImageRequest true "Image"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seller/products/{barcode}/images [delete]
func (h *ProductHandler) DetachImage(c *gin.Context) {
	var req catalogapp.ImageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.products.DetachImage(c.Request.Context(), actor(c), c.Param("barcode"), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Search godoc
// @Summary      Search products
// @Tags         products
// @Produce      json
// @Param        name   query string true  "Name contains"
// @Param        limit  query int    false "Page size" default(20)
// @Param        offset query int    false "Offset"
// @Success      200 {object} APIResponse[[]catalogapp.ProductSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products/search [get]
func (h *ProductHandler) Search(c *gin.Context) {
	var page catalogapp.PageQuery
	if !h.bindQuery(c, &page) {
		return
	}

	rows, err := h.products.Search(c.Request.Context(), c.Query("name"), page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(rows))
}

// ListAll godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        limit  query int false "Page size" default(20)
// @Param        offset query int false "Offset"
// @Success      200 {object} APIResponse[[]catalogapp.ProductSummaryResponse]
// @Router       /products/all [get]
func (h *ProductHandler) ListAll(c *gin.Context) {
	var page catalogapp.PageQuery
	if !h.bindQuery(c, &page) {
		return
	}

	rows, err := h.products.ListAll(c.Request.Context(), page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(rows))
}

// ListByCategory godoc
// @Summary      List products of a category
// @Tags         products
// @Produce      json
// @Param        name   path  string true  "Category name"
// @Param        limit  query int    false "Page size" default(20)
// @Param        offset query int    false "Offset"
// @Success      200 {object} APIResponse[[]catalogapp.ProductSummaryResponse]
// @Router       /products/category/{name} [get]
func (h *ProductHandler) ListByCategory(c *gin.Context) {
	var page catalogapp.PageQuery
	if !h.bindQuery(c, &page) {
		return
	}

	rows, err := h.products.ListByCategory(c.Request.Context(), c.Param("name"), page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(rows))
}

// Details godoc
// @Summary      Product details
// @Tags         products
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{barcode} [get]
func (h *ProductHandler) Details(c *gin.Context) {
	product, err := h.products.Details(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AssignCategory godoc
// @Summary      Assign a category
// @Description  The owning seller or an admin sets the product category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Param        request body catalogapp.AssignCategoryRequest true "Category"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /categories/{barcode} [post]
func (h *ProductHandler) AssignCategory(c *gin.Context) {
	var req catalogapp.AssignCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.products.AssignCategory(c.Request.Context(), actor(c), c.Param("barcode"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
