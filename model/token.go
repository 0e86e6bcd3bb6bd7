// file: model/token.go

package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one entry of a user's refresh-token list.
// Only the SHA-256 digest of the token value is stored.
type RefreshToken struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
