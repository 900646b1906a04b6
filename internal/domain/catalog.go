package domain

import (
	"time"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#007bff"

// Category groups businesses. BusinessCount is derived from the active and
// approved businesses that reference it.
type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	NameEn        string    `json:"name_en"`
	Description   string    `json:"description,omitempty"`
	DescriptionEn string    `json:"description_en,omitempty"`
	Slug          string    `json:"slug"`
	Icon          string    `json:"icon,omitempty"`
	Color         string    `json:"color"`
	SortOrder     int       `json:"sort_order"`
	Active        bool      `json:"active"`
	BusinessCount int       `json:"business_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Service is something a business offers. BusinessCount is derived from the
// active and approved businesses offering it.
type Service struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	NameEn        string    `json:"name_en"`
	Description   string    `json:"description,omitempty"`
	DescriptionEn string    `json:"description_en,omitempty"`
	Slug          string    `json:"slug"`
	CategoryID    *string   `json:"category_id,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	SortOrder     int       `json:"sort_order"`
	Active        bool      `json:"active"`
	BusinessCount int       `json:"business_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DashboardStats are the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalBusinesses    int `json:"total_businesses"`
	ActiveBusinesses   int `json:"active_businesses"`
	PendingBusinesses  int `json:"pending_businesses"`
	ApprovedBusinesses int `json:"approved_businesses"`
	RejectedBusinesses int `json:"rejected_businesses"`
	TotalReviews       int `json:"total_reviews"`
	PendingReviews     int `json:"pending_reviews"`
	ReportedReviews    int `json:"reported_reviews"`
	TotalFavorites     int `json:"total_favorites"`
	TotalCategories    int `json:"total_categories"`
	TotalServices      int `json:"total_services"`
}

// ReviewStats summarizes approved reviews across all businesses.
type ReviewStats struct {
	TotalReviews  int                `json:"total_reviews"`
	AverageRating float64            `json:"average_rating"`
	HelpfulVotes  int                `json:"helpful_votes"`
	Distribution  RatingDistribution `json:"rating_distribution"`
}

// FavoriteStats summarizes favorites across all users.
type FavoriteStats struct {
	TotalFavorites   int `json:"total_favorites"`
	UniqueUsers      int `json:"unique_users"`
	UniqueBusinesses int `json:"unique_businesses"`
}
