package identity

import (
	"regexp"
	"strings"

	"github.com/marketplace/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)
)

// User represents a marketplace account
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Phone        string
	PasswordHash string
	Role         Role
	shared.Timestamps
}

// NewUser creates a new user with a hashed password
func NewUser(username, email, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		ID:           shared.NewID(),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
		Timestamps:   shared.NewTimestamps(),
	}, nil
}

// SetProfile sets the optional profile fields
func (u *User) SetProfile(fullName, phone string) error {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	if len(fullName) > 200 {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 200 characters")
	}
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	u.FullName = fullName
	u.Phone = phone
	u.Touch()
	return nil
}

// DisplayName returns the full name, or the username when none was given
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HasHashedPassword reports whether the stored password is a bcrypt hash
func (u *User) HasHashedPassword() bool {
	_, err := bcrypt.Cost([]byte(u.PasswordHash))
	return err == nil
}

// HashStoredPassword replaces a plaintext stored password with its hash.
// It returns false when the password was already hashed.
func (u *User) HashStoredPassword() (bool, error) {
	if u.HasHashedPassword() {
		return false, nil
	}
	if u.PasswordHash == "" {
		return false, shared.NewDomainError("INVALID_PASSWORD", "User has no password to hash")
	}

	hash, err := hashPassword(u.PasswordHash)
	if err != nil {
		return false, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return true, nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be between 3 and 50 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username may only contain letters, digits, '_', '.' and '-'")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
