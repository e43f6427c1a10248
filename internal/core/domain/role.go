package domain

// Role is the coarse authorization level of an identity.
type Role string

const (
	RoleClient    Role = "client"
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
)

// roleRanks orders the roles: client < admin < developer.
// There is no per-resource ACL, only this linear hierarchy.
var roleRanks = map[Role]int{
	RoleClient:    1,
	RoleAdmin:     2,
	RoleDeveloper: 3,
}

// Rank returns the position of r in the hierarchy, or 0 for an unknown role.
func Rank(r Role) int {
	return roleRanks[r]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return Rank(r) > 0
}

// Satisfies reports whether a caller holding r may access something that
// requires the given role. An empty requirement means the lowest rank.
func (r Role) Satisfies(required Role) bool {
	if required == "" {
		required = RoleClient
	}
	if !r.Valid() {
		return false
	}
	return Rank(r) >= Rank(required)
}

// Landing is the route a freshly logged-in caller is sent to.
func (r Role) Landing() string {
	switch r {
	case RoleDeveloper:
		return "/developer/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/events"
	}
}
