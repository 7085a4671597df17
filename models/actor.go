package models

// Role of the acting party.
type Role string

const (
	RoleProvider Role = "provider"
	RoleBuyer    Role = "buyer"
	RoleAdmin    Role = "admin"
)

// Actor is the identity supplied by the caller; the core never authenticates.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
