package domain

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Role is a user's permission tier.
type Role string

const (
	RoleUser     Role = "user"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleBusiness, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts a role name; empty means RoleUser.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleUser, nil
	}
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Status is a user's account standing.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusActive, StatusInactive, StatusSuspended}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Document is a free-form JSON object (profile, hours, accessibility).
type Document map[string]any

// Merge returns a copy of d with every key of patch applied on top. Nil
// values are stored like any other.
func (d Document) Merge(patch Document) Document {
	out := make(Document, len(d)+len(patch))
	maps.Copy(out, d)
	maps.Copy(out, patch)
	return out
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	Role         Role       `json:"role"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	Profile      Document   `json:"profile,omitempty"`
	Status       Status     `json:"status"`
	AdminNotes   string     `json:"adminNotes,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanManageBusinesses reports whether the user may create listings.
func (u User) CanManageBusinesses() bool {
	return u.Role == RoleBusiness || u.Role == RoleAdmin
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail checks only the basic shape of an address: one @ with text on
// both sides and a dot in the domain.
func ValidEmail(email string) bool {
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || domainPart == "" || strings.Contains(domainPart, "@") {
		return false
	}
	return strings.Contains(domainPart, ".") && !strings.ContainsAny(email, " \t\r\n")
}
