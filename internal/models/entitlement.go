package models

import (
	"time"

	"github.com/google/uuid"
)

// Entitlement is a user's time-boxed grant to gated content, stored as a user package.
type Entitlement struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PackageID uuid.UUID `json:"package_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	// PackageName is filled when the entitlement is read joined with its package.
	PackageName string `json:"package_name,omitempty"`
}

// CurrentAt reports whether the entitlement grants access at t.
func (e *Entitlement) CurrentAt(t time.Time) bool {
	return e.IsActive && !e.EndDate.Before(t)
}

// ActiveEntitlement is the caller's current entitlement joined with its package.
type ActiveEntitlement struct {
	Entitlement Entitlement `json:"entitlement"`
	Package     Package     `json:"package"`
}
