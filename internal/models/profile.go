// Package models holds the domain types shared by storage, services and handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role of a profile.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Profile is the platform-side record of a user created by the auth provider at signup.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the profile has the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// StudentOverview is a student together with their entitlement history, newest first.
type StudentOverview struct {
	Profile      Profile       `json:"profile"`
	Entitlements []Entitlement `json:"entitlements"`
}
