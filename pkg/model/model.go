// Package model defines the vendor-neutral migration model. Every source
// vendor transforms its records into these types, and the Tallyfy loader
// consumes them, so no vendor package ever depends on another.
package model

// MemberRole is the access level a migrated member receives in Tallyfy.
type MemberRole string

const (
	RoleAdmin    MemberRole = "admin"
	RoleStandard MemberRole = "standard"
	RoleLight    MemberRole = "light" // View and complete only, no editing
)

// Member is a person in the source system who becomes an organization member.
type Member struct {
	SourceID  string     `json:"source_id"`
	Email     string     `json:"email"      validate:"required,email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      MemberRole `json:"role"       validate:"required,oneof=admin standard light"`
	Active    bool       `json:"active"`
}

// Group is a team of members, migrated as a Tallyfy group and usable as a
// step assignee.
type Group struct {
	SourceID string   `json:"source_id"`
	Name     string   `json:"name"    validate:"required"`
	Members  []string `json:"members"` // Member emails
}
