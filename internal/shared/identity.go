package shared

// Role distinguishes the three caller populations of the back office.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
)

// Staff reports whether the role belongs to agency staff.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Identity describes the authenticated caller for the current request.
// ClientID is set only for callers with RoleClient.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	ClientID *int64 `json:"client_id,omitempty"`
}
