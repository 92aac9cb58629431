package entities

// Member is the role state of a guild member as seen by the eligibility filter
type Member struct {
	ID       int64
	Username string
	RoleIDs  []int64
	// Removed marks a member that left the guild
	Removed bool
}

// HasRole reports whether the member holds the role
func (m Member) HasRole(roleID int64) bool {
	for _, r := range m.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}
