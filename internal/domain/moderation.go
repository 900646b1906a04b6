package domain

// ModerationStatus is the visibility state shared by businesses and reviews.
type ModerationStatus string

// Moderation states.
const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// ValidModerationStatuses returns every moderation state.
func ValidModerationStatuses() []ModerationStatus {
	return []ModerationStatus{StatusPending, StatusApproved, StatusRejected}
}

// IsValid reports whether s is a known moderation state.
func (s ModerationStatus) IsValid() bool {
	for _, v := range ValidModerationStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// Transition returns the state reached by an approve or reject decision and
// whether it differs from s. Any state may move to approved or rejected.
func (s ModerationStatus) Transition(approve bool) (ModerationStatus, bool) {
	next := StatusRejected
	if approve {
		next = StatusApproved
	}
	return next, next != s
}
