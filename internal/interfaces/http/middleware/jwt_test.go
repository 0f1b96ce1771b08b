package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

type fakeAuthenticator struct {
	principals map[string]*identityapp.Principal
	err        error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*identityapp.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.principals[token]; ok {
		return p, nil
	}
	return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid token")
}

func newAuthRouter(authn Authenticator, roles ...identity.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	chain := []gin.HandlerFunc{JWTAuth(JWTConfig{Authenticator: authn, CookieName: "token"})}
	if len(roles) > 0 {
		chain = append(chain, RequireRoles(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		actor := GetActor(c)
		c.String(http.StatusOK, actor.UserID+":"+string(actor.Role))
	})
	router.GET("/me", chain...)
	return router
}

func TestJWTAuth(t *testing.T) {
	authn := &fakeAuthenticator{principals: map[string]*identityapp.Principal{
		"buyer-token":   {UserID: "u1", Role: identity.RoleBuyer},
		"shipper-token": {UserID: "u2", Role: identity.RoleShipper},
	}}

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{
			name:     "bearer header",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer buyer-token") },
			wantCode: http.StatusOK,
			wantBody: "u1:buyer",
		},
		{
			name: "cookie wins over header",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "token", Value: "shipper-token"})
				r.Header.Set("Authorization", "Bearer buyer-token")
			},
			wantCode: http.StatusOK,
			wantBody: "u2:shipper",
		},
		{
			name:     "missing token",
			setup:    func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "wrong scheme",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "invalid token",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantCode: http.StatusUnauthorized,
		},
	}

	router := newAuthRouter(authn)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.Equal(t, "ERR_UNAUTHORIZED", gjson.Get(w.Body.String(), "error.code").String())
			}
		})
	}
}

func TestJWTAuth_BlacklistUnavailable(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{err: shared.NewDomainError("SERVICE_UNAVAILABLE", "Unable to verify token")})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestJWTAuth_UnexpectedError(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{err: errors.New("db down")})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestRequireRoles(t *testing.T) {
	authn := &fakeAuthenticator{principals: map[string]*identityapp.Principal{
		"buyer-token": {UserID: "u1", Role: identity.RoleBuyer},
		"admin-token": {UserID: "u9", Role: identity.RoleAdmin},
	}}
	router := newAuthRouter(authn, identity.RoleShipper, identity.RoleAdmin)

	send := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send("buyer-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ERR_FORBIDDEN", gjson.Get(w.Body.String(), "error.code").String())

	assert.Equal(t, http.StatusOK, send("admin-token").Code)
}
