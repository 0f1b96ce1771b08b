package identity

import (
	"time"

	"github.com/marketplace/backend/internal/domain/identity"
)

// RegisterInput carries the sign-up form
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
	Role     identity.Role
}

// LoginInput carries the credentials; Identifier is an email or a username
type LoginInput struct {
	Identifier string
	Password   string
}

// LogoutInput identifies the token to revoke
type LogoutInput struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// Principal is the authenticated caller resolved from a token
type Principal struct {
	UserID    string
	Role      identity.Role
	TokenID   string
	ExpiresAt time.Time
}

// ToUserResponse converts a domain User, dropping the password hash
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
