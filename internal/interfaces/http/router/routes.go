package router

import (
	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoint handlers mounted under /api
type Handlers struct {
	Auth     *handler.AuthHandler
	Order    *handler.OrderHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Review   *handler.ReviewHandler
}

// Guards are the middleware placed in front of individual routes
type Guards struct {
	// Authenticate resolves the caller from the session token (middleware.JWTAuth)
	Authenticate gin.HandlerFunc
	// AuthRateLimit throttles register and login; nil disables it
	AuthRateLimit gin.HandlerFunc
}

// MarketplaceGroups returns the route groups of the marketplace API
func MarketplaceGroups(h Handlers, g Guards) []RouteRegistrar {
	auth := g.Authenticate
	buyers := middleware.RequireRoles(identity.RoleBuyer, identity.RoleAdmin)
	sellers := middleware.RequireRoles(identity.RoleSeller, identity.RoleAdmin)
	shippers := middleware.RequireRoles(identity.RoleShipper, identity.RoleAdmin)
	onlyBuyers := middleware.RequireRoles(identity.RoleBuyer)

	users := NewDomainGroup("users", "/users").
		POST("/register", chain(g.AuthRateLimit, h.Auth.Register)...).
		POST("/login", chain(g.AuthRateLimit, h.Auth.Login)...).
		POST("/logout", auth, h.Auth.Logout).
		GET("/me", auth, h.Auth.Me)

	orders := NewDomainGroup("orders", "/orders").
		Use(auth).
		POST("", buyers, h.Order.Create).
		GET("", buyers, h.Order.List).
		GET("/details", sellers, h.Order.Details).
		GET("/reports/top-selling", sellers, h.Order.TopSelling).
		GET("/:orderId", buyers, h.Order.Get).
		PUT("/:orderId", buyers, h.Order.Update).
		DELETE("/:orderId", buyers, h.Order.Delete).
		POST("/claim/:orderId", shippers, h.Order.Claim).
		POST("/depart/:orderId", shippers, h.Order.Depart).
		POST("/confirm/:orderId", shippers, h.Order.Confirm)

	products := NewDomainGroup("products", "/products").
		GET("/categories", h.Category.List).
		GET("/search", h.Product.Search).
		GET("/all", h.Product.ListAll).
		GET("/category/:name", h.Product.ListByCategory).
		GET("/:barcode", h.Product.Details).
		GET("/:barcode/reviews", h.Review.ListForProduct)

	categories := NewDomainGroup("categories", "/categories").
		GET("", h.Category.List).
		POST("/:barcode", auth, sellers, h.Product.AssignCategory)

	seller := NewDomainGroup("seller-products", "/seller/products").
		Use(auth, sellers).
		GET("", h.Product.ListMine).
		POST("", h.Product.Create).
		GET("/:barcode", h.Product.Get).
		PUT("/:barcode", h.Product.Update).
		DELETE("/:barcode", h.Product.Delete).
		POST("/:barcode/variations", h.Product.AddVariations).
		POST("/:barcode/images/upload-url", h.Product.RequestImageUpload).
		POST("/:barcode/images", h.Product.AttachImage).
		DELETE("/:barcode/images", h.Product.DetachImage)

	reviews := NewDomainGroup("reviews", "/reviews").
		GET("/purchased", auth, onlyBuyers, h.Review.Purchased).
		POST("", auth, onlyBuyers, h.Review.Create).
		GET("/:reviewId", h.Review.Get).
		POST("/:reviewId/reactions", auth, h.Review.React).
		POST("/:reviewId/replies", auth, h.Review.Reply)

	return []RouteRegistrar{users, orders, products, categories, seller, reviews}
}

// chain drops nil handlers so optional middleware can be passed inline
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
