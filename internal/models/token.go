package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted half of a session. The token value is an
// opaque random string; nothing about the user can be derived from it
// without the row.
type RefreshToken struct {
	ID        int64
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// A refresh token is usable iff it has not been revoked and has not expired.
func (t *RefreshToken) Valid(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
