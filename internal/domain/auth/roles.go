package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

var Roles = []string{RoleEmployee, RoleManager, RoleAdmin}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of a single request.
type Actor struct {
	UserID    int64
	Name      string
	Role      string
	SessionID string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanReview reports whether the actor may read other people's leave data.
func (a Actor) CanReview() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}
