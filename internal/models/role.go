package models

// Role is a user's privilege level within an institution.
type Role string

const (
	RoleStudent    Role = "student"
	RoleFaculty    Role = "faculty"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// roleRanks fixes the privilege ordering. Comparisons go through Rank,
// never through string comparison.
var roleRanks = map[Role]int{
	RoleStudent:    0,
	RoleFaculty:    1,
	RoleAdmin:      2,
	RoleSuperadmin: 3,
}

// Rank returns the role's position in the privilege order. The second
// return value is false for unknown or empty roles.
func (r Role) Rank() (int, bool) {
	rank, ok := roleRanks[r]
	return rank, ok
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether the role grants the privileges of required.
// An unknown or empty role (no active context) fails every check.
func (r Role) AtLeast(required Role) bool {
	rank, ok := r.Rank()
	if !ok {
		return false
	}
	requiredRank, ok := required.Rank()
	if !ok {
		return false
	}
	return rank >= requiredRank
}
