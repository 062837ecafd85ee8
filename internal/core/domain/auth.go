package domain

const (
	RoleAdmin    = "Admin"
	RoleStaff    = "Staff"
	RoleLecturer = "Lecturer"
)

// Principal is the caller identity resolved from a bearer token.
type Principal struct {
	Email string
	Role  string
}

func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
