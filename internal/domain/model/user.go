package model

import (
	"time"
)

// Role is the closed set of portal account kinds.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSpoc       Role = "SPOC"
	RoleTeamLeader Role = "TEAM_LEADER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSpoc, RoleTeamLeader:
		return true
	}
	return false
}

type User struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	HashedPassword    string    `json:"-"` // Not exposed
	Role              Role      `json:"role"`
	Phone             *string   `json:"phone,omitempty"`
	Age               *int      `json:"age,omitempty"`
	InstitutionName   *string   `json:"institution_name,omitempty"`
	IdentificationDoc *string   `json:"identification_doc,omitempty"`
	Verified          bool      `json:"verified"`
	CreatedAt         time.Time `json:"created_at"`
}

// CanLogin reports whether the account may be issued a session.
// Only SPOC accounts wait for admin verification.
func (u *User) CanLogin() bool {
	switch u.Role {
	case RoleSpoc:
		return u.Verified
	case RoleAdmin, RoleTeamLeader:
		return true
	}
	return false
}
