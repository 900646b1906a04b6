package domain

import (
	"time"
)

// Business defaults.
const (
	DefaultCountry  = "Israel"
	DefaultCurrency = "ILS"
)

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BusinessService links a business to a service it offers.
type BusinessService struct {
	ServiceID string `json:"service_id"`
	Price     *int64 `json:"price,omitempty"`
	Currency  string `json:"currency"`
}

// TimeRange is an opening interval in "HH:MM" wall-clock time.
type TimeRange struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OpeningHours describes one weekday; Day 0 is Sunday.
type OpeningHours struct {
	Day    int         `json:"day"`
	Closed bool        `json:"closed"`
	Ranges []TimeRange `json:"ranges,omitempty"`
}

// Business is a directory listing together with its derived aggregates.
// Rating, TotalRatings, Distribution, FavoriteCount and ReviewCount are
// written only by recomputation from reviews and favorites.
type Business struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Address      string            `json:"address"`
	City         string            `json:"city"`
	Country      string            `json:"country"`
	PostalCode   string            `json:"postal_code,omitempty"`
	Prefix       string            `json:"prefix"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Website      string            `json:"website,omitempty"`
	Logo         string            `json:"logo,omitempty"`
	Location     Location          `json:"location"`
	CategoryID   string            `json:"category_id"`
	Services     []BusinessService `json:"services"`
	Tags         []string          `json:"tags"`
	OpeningHours []OpeningHours    `json:"opening_hours"`
	Active       bool              `json:"active"`
	Status       ModerationStatus  `json:"status"`
	Featured     bool              `json:"featured"`
	Verified     bool              `json:"verified"`

	Rating        float64            `json:"rating"`
	TotalRatings  int                `json:"total_ratings"`
	Distribution  RatingDistribution `json:"rating_distribution"`
	ViewCount     int64              `json:"view_count"`
	FavoriteCount int                `json:"favorite_count"`
	ReviewCount   int                `json:"review_count"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Computed on read.
	Approved bool `json:"approved"`
	IsOpen   bool `json:"is_open"`
}

// Visible reports whether the business is listed publicly and counted by
// category and service business counts.
func (b *Business) Visible() bool {
	return b.Active && b.Status == StatusApproved
}

// ServiceIDs returns the IDs of the services the business offers.
func (b *Business) ServiceIDs() []string {
	ids := make([]string, 0, len(b.Services))
	for _, s := range b.Services {
		ids = append(ids, s.ServiceID)
	}
	return ids
}

// Decorate fills the read-time fields Approved and IsOpen.
func (b *Business) Decorate(now time.Time) {
	b.Approved = b.Status == StatusApproved
	b.IsOpen = b.OpenAt(now)
}

// OpenAt reports whether the business is open at now. A business without
// opening hours is considered open, as is a day with no ranges. A day that is
// missing or marked closed is closed.
func (b *Business) OpenAt(now time.Time) bool {
	if len(b.OpeningHours) == 0 {
		return true
	}

	day := int(now.Weekday())
	clock := now.Format("15:04")

	for _, h := range b.OpeningHours {
		if h.Day != day {
			continue
		}
		if h.Closed {
			return false
		}
		if len(h.Ranges) == 0 {
			return true
		}
		for _, r := range h.Ranges {
			if clock >= r.Open && clock <= r.Close {
				return true
			}
		}
		return false
	}
	return false
}

// ApplyRating copies a rating summary onto the business.
func (b *Business) ApplyRating(s RatingSummary) {
	b.Rating = s.Rating
	b.TotalRatings = s.TotalRatings
	b.Distribution = s.Distribution
}
