package domain

// Caller roles carried in the access token.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleEndUser = "end-user"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor may moderate and manage reference data.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may modify an entity owned by ownerID.
func (a Actor) CanManage(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}
