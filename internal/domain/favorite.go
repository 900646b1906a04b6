package domain

import (
	"time"
)

// MaxFavoriteNotesLength bounds the free-form note on a favorite.
const MaxFavoriteNotesLength = 500

// Favorite is a business saved by a user.
type Favorite struct {
	UserID     string    `json:"user_id"`
	BusinessID string    `json:"business_id"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}
