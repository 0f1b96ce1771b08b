package identity

// Actor is the authenticated user on whose behalf a use case runs
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor is an admin
func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// CanAccessOwnedBy reports whether the actor owns the resource or is an admin
func (a Actor) CanAccessOwnedBy(ownerID string) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
