package identity

import "context"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// UpdatePassword stores a new password hash
	UpdatePassword(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByLogin finds a user by email or username
	FindByLogin(ctx context.Context, identifier string) (*User, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
