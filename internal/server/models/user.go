// Package models defines the persisted entities of the label validation
// service: operator accounts and the append-only scan log.
package models

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser       Role = "user"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// CanAuthorizeOverride reports whether the role may release a divergence.
func (r Role) CanAuthorizeOverride() bool {
	return r == RoleSupervisor || r == RoleAdmin
}

// User is an operator account. SaltHex and HashHex hold the password salt
// and the argon2id hash, both hex-encoded; the plaintext password is never
// stored or logged.
type User struct {
	ID        string
	Login     string
	Name      string
	Role      Role
	SaltHex   string
	HashHex   string
	Active    bool
	CreatedAt time.Time
}

// Sanitized returns a copy of the user without credential material,
// suitable for returning to callers after authentication.
func (u *User) Sanitized() *User {
	c := *u
	c.SaltHex = ""
	c.HashHex = ""
	return &c
}
