package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/marketplace/backend/internal/application/catalog"
)

// CategoryLister lists product categories
type CategoryLister interface {
	List(ctx context.Context) ([]catalogapp.CategoryResponse, error)
}

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	BaseHandler
	categories CategoryLister
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories CategoryLister) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.CategoryResponse]
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(categories))
}
