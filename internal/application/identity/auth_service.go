package identity

import (
	"context"
	"errors"
	"time"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthFailureRecorder counts rejected credentials
type AuthFailureRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
}

type nopAuthFailureRecorder struct{}

func (nopAuthFailureRecorder) RecordAuthFailure(context.Context, string) {}

var errInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid credentials")

// AuthService handles registration, login, logout and token resolution
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	recorder   AuthFailureRecorder
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	recorder AuthFailureRecorder,
	logger *zap.Logger,
) *AuthService {
	if recorder == nil {
		recorder = nopAuthFailureRecorder{}
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		recorder:   recorder,
		logger:     logger,
	}
}

// Register creates an account and signs the user in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role := input.Role
	if role == "" {
		role = identity.RoleBuyer
	}
	if role.IsAdmin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Admin accounts cannot be self-registered")
	}

	user, err := identity.NewUser(input.Username, input.Email, input.Password, role)
	if err != nil {
		return nil, err
	}
	if err := user.SetProfile(input.FullName, input.Phone); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Login checks the credentials and issues a session token.
// Unknown users and wrong passwords get the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if input.Identifier == "" || input.Password == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Identifier and password are required")
	}

	user, err := s.userRepo.FindByLogin(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.recorder.RecordAuthFailure(ctx, "unknown_user")
			s.logger.Warn("Login for unknown user")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.recorder.RecordAuthFailure(ctx, "wrong_password")
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID))
		return nil, errInvalidCredentials
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	token, err := s.jwtService.Generate(user.ID, string(user.Role))
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}
	return &AuthResult{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      ToUserResponse(user),
	}, nil
}

// Authenticate resolves a session token into the calling user.
// The user must still exist; a deleted account invalidates its tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.jwtService.Validate(token)
	if err != nil {
		s.recorder.RecordAuthFailure(ctx, "invalid_token")
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("UNAUTHORIZED", "Token has expired")
		}
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid token")
	}

	if claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Failed to check token blacklist", zap.Error(err))
			return nil, shared.NewDomainError("SERVICE_UNAVAILABLE", "Unable to verify token")
		}
		if revoked {
			s.recorder.RecordAuthFailure(ctx, "revoked_token")
			return nil, shared.NewDomainError("UNAUTHORIZED", "Token has been revoked")
		}
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.recorder.RecordAuthFailure(ctx, "unknown_user")
			return nil, shared.NewDomainError("UNAUTHORIZED", "User no longer exists")
		}
		return nil, err
	}

	principal := &Principal{UserID: user.ID, Role: user.Role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenID == "" {
		return nil
	}
	ttl := time.Until(input.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Add(ctx, input.TokenID, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return shared.NewDomainError("SERVICE_UNAVAILABLE", "Unable to revoke token")
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID))
	return nil
}

// HashStoredPassword replaces a plaintext password column with its bcrypt hash.
// lookup is a user id, email or username. It reports whether anything changed.
func (s *AuthService) HashStoredPassword(ctx context.Context, lookup string) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, lookup)
	if errors.Is(err, shared.ErrNotFound) {
		user, err = s.userRepo.FindByLogin(ctx, lookup)
	}
	if err != nil {
		return false, err
	}

	changed, err := user.HashStoredPassword()
	if err != nil || !changed {
		return false, err
	}
	if err := s.userRepo.UpdatePassword(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Stored password hashed", zap.String("user_id", user.ID))
	return true, nil
}
