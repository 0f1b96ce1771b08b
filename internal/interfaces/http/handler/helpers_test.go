package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
)

var (
	buyerPrincipal   = &identityapp.Principal{UserID: "buyer-1", Role: identity.RoleBuyer, TokenID: "jti-1"}
	sellerPrincipal  = &identityapp.Principal{UserID: "seller-1", Role: identity.RoleSeller, TokenID: "jti-2"}
	shipperPrincipal = &identityapp.Principal{UserID: "shipper-1", Role: identity.RoleShipper, TokenID: "jti-3"}
)

func actorOf(p *identityapp.Principal) identity.Actor {
	return identity.Actor{UserID: p.UserID, Role: p.Role}
}

// newTestEngine builds an engine that authenticates every request as principal.
// A nil principal leaves the request anonymous.
func newTestEngine(principal *identityapp.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	if principal != nil {
		engine.Use(func(c *gin.Context) {
			c.Set(middleware.PrincipalKey, principal)
			c.Next()
		})
	}
	return engine
}

func perform(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
