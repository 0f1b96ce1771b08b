package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
)

// AuthUseCases is what the auth endpoints need from the identity service
type AuthUseCases interface {
	Register(ctx context.Context, input identityapp.RegisterInput) (*identityapp.AuthResult, error)
	Login(ctx context.Context, input identityapp.LoginInput) (*identityapp.AuthResult, error)
	Me(ctx context.Context, userID string) (*identityapp.UserResponse, error)
	Logout(ctx context.Context, input identityapp.LogoutInput) error
}

// CookieSettings describes the session cookie
type CookieSettings struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	MaxAge   time.Duration
	SameSite http.SameSite
}

// ParseSameSite maps a config value to a cookie SameSite mode. Unknown values are Strict.
func ParseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	auth   AuthUseCases
	cookie CookieSettings
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthUseCases, cookie CookieSettings) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

// Register godoc
// @Summary      Register a new user
// @Description  Create a buyer, seller or shipper account and start a session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} APIResponse[identityapp.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Register(c.Request.Context(), identityapp.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     identity.Role(strings.ToLower(req.Role)),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token)
	h.Created(c, result)
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with an email or username and start a session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[identityapp.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), identityapp.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token)
	h.Success(c, result)
}

// Logout godoc
// @Summary      User logout
// @Description  Revoke the presented token and clear the session cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[LogoutResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}

	err := h.auth.Logout(c.Request.Context(), identityapp.LogoutInput{
		UserID:    principal.UserID,
		TokenID:   principal.TokenID,
		ExpiresAt: principal.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearSessionCookie(c)
	h.Success(c, LogoutResponse{Message: "Logged out"})
}

// Me godoc
// @Summary      Current user
// @Description  Return the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(h.cookie.SameSite)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(h.cookie.SameSite)
	c.SetCookie(h.cookie.Name, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}
