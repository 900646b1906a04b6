package domain

import (
	"time"
)

// Review field limits.
const (
	MaxCommentLength       = 1000
	MaxReportDetailsLength = 500
)

// Report reasons.
const (
	ReportReasonInappropriate = "inappropriate"
	ReportReasonSpam          = "spam"
	ReportReasonFake          = "fake"
	ReportReasonOffensive     = "offensive"
	ReportReasonOther         = "other"
)

// ValidReportReasons returns every accepted report reason.
func ValidReportReasons() []string {
	return []string{
		ReportReasonInappropriate,
		ReportReasonSpam,
		ReportReasonFake,
		ReportReasonOffensive,
		ReportReasonOther,
	}
}

// IsValidReportReason checks whether reason is an accepted report reason.
func IsValidReportReason(reason string) bool {
	for _, r := range ValidReportReasons() {
		if r == reason {
			return true
		}
	}
	return false
}

// BusinessResponse is the owner's public reply to a review.
type BusinessResponse struct {
	Comment     string    `json:"comment"`
	RespondedBy string    `json:"responded_by"`
	RespondedAt time.Time `json:"responded_at"`
}

// Review is one user's rating of one business.
type Review struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	BusinessID      string            `json:"business_id"`
	Rating          int               `json:"rating"`
	Comment         string            `json:"comment"`
	Status          ModerationStatus  `json:"status"`
	ModerationNotes string            `json:"moderation_notes,omitempty"`
	ModeratedBy     *string           `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time        `json:"moderated_at,omitempty"`
	HelpfulVotes    int               `json:"helpful_votes"`
	TotalVotes      int               `json:"total_votes"`
	Reported        bool              `json:"reported"`
	ReportReason    *string           `json:"report_reason,omitempty"`
	ReportDetails   string            `json:"report_details,omitempty"`
	Response        *BusinessResponse `json:"business_response,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Approved reports whether the review counts toward its business aggregates.
func (r *Review) Approved() bool {
	return r.Status == StatusApproved
}

// ReviewSort orders review listings.
type ReviewSort string

// Review sort keys.
const (
	ReviewSortNewest  ReviewSort = "newest"
	ReviewSortOldest  ReviewSort = "oldest"
	ReviewSortRating  ReviewSort = "rating"
	ReviewSortHelpful ReviewSort = "helpful"
)

// ParseReviewSort maps a query value to a sort key. Empty selects newest.
func ParseReviewSort(v string) (ReviewSort, bool) {
	switch ReviewSort(v) {
	case "":
		return ReviewSortNewest, true
	case ReviewSortNewest, ReviewSortOldest, ReviewSortRating, ReviewSortHelpful:
		return ReviewSort(v), true
	default:
		return "", false
	}
}

// VoteTally is the helpful vote count of a review.
type VoteTally struct {
	Helpful int `json:"helpful_votes"`
	Total   int `json:"total_votes"`
}
