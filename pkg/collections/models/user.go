package models

import "time"

// Role distinguishes members from admins. Stored as the integer the
// collections always carried (0=member, 1=admin).
type Role int

const (
	RoleMember Role = 0
	RoleAdmin  Role = 1
)

func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is a storefront account. Points are mutated only through the ledger
// and never go negative.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Points    int       `json:"points"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"timestamp"`
}
