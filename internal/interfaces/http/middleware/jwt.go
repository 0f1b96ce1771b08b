package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	PrincipalKey  = "auth_principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator resolves a session token to the calling user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identityapp.Principal, error)
}

// JWTConfig holds configuration for the auth middleware
type JWTConfig struct {
	Authenticator Authenticator
	// CookieName is read before the Authorization header
	CookieName string
}

// JWTAuth requires a valid session token from the cookie or a Bearer header
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cfg.CookieName)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		principal, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				code := dto.NormalizeErrorCode(de.Code)
				abortWithError(c, dto.GetHTTPStatus(code), code, de.Message)
				return
			}
			logger.L(c.Request.Context()).Error("Authentication failed", zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}

		c.Set(PrincipalKey, principal)
		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), principal.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token
		}
	}
	header := c.GetHeader(AuthHeaderKey)
	if token, ok := strings.CutPrefix(header, BearerPrefix); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireRoles allows only the listed roles; it must run after JWTAuth
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !principal.Role.In(roles...) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or nil
func GetPrincipal(c *gin.Context) *identityapp.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*identityapp.Principal); ok {
			return p
		}
	}
	return nil
}

// GetActor returns the authenticated caller as a use case actor
func GetActor(c *gin.Context) identity.Actor {
	if p := GetPrincipal(c); p != nil {
		return identity.Actor{UserID: p.UserID, Role: p.Role}
	}
	return identity.Actor{}
}
