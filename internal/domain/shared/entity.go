package shared

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a new 32 character hex identifier.
// Rows created outside the service (imports, seed data) use the same shape.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Timestamps holds the audit columns shared by aggregates
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimestamps returns timestamps initialised to now
func NewTimestamps() Timestamps {
	now := time.Now()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Touch updates the modification time
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now()
}
