package model

import "time"

// Role values gate administrative operations. RoleAdmin unlocks user
// management, RoleClerk is the everyday data-entry tier.
const (
	RoleClerk = "clerk"
	RoleAdmin = "admin"
)

// User represents an account record as stored in the `users` table. The role
// column is nullable: records created through the administrative bootstrap
// path predate the column and carry no value. Role is therefore modelled as
// a pointer and resolved through ResolvedRole rather than read directly.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	Email        – unique email address.
//	FirstName    – given name (may be empty).
//	LastName     – family name (may be empty).
//	PasswordHash – bcrypt hashed password; never serialized.
//	Role         – persisted role ("clerk" or "admin"), nil when unset.
//	IsStaff      – grants access to user management endpoints.
//	IsSuperuser  – bootstrap accounts; resolves to admin when role is unset.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         *string
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResolvedRole returns the effective role for a user. When the persisted
// role is absent, superusers resolve to admin and everyone else to clerk.
// Every user-facing payload must go through this function so that legacy
// records without a role still present a defined value.
func (u User) ResolvedRole() string {
	if u.Role != nil && *u.Role != "" {
		return *u.Role
	}
	if u.IsSuperuser {
		return RoleAdmin
	}
	return RoleClerk
}
