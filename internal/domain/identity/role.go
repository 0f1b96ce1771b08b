package identity

import (
	"strings"

	"github.com/marketplace/backend/internal/domain/shared"
)

// Role is the marketplace role of a user
type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleSeller  Role = "seller"
	RoleShipper Role = "shipper"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleShipper, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role is admin
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// In reports whether the role is one of roles
func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole parses a role name. Admin accounts are never created through registration.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if role == "" {
		return RoleBuyer, nil
	}
	if !role.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Role must be one of buyer, seller, shipper")
	}
	return role, nil
}
