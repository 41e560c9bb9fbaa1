// Package user defines the account entity.
package user

import (
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
)

// User is a registered FitMatch account.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	FirstName    string          `json:"firstName,omitempty"`
	Preferences  *ai.Preferences `json:"preferences,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
