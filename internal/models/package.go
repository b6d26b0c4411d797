package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Package is a purchasable, time-boxed access offering.
// DurationMonths == 0 marks a three-day trial.
type Package struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	DurationMonths int             `json:"duration_months"`
	Features       []string        `json:"features"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsTrial reports whether the package uses the trial sentinel.
func (p *Package) IsTrial() bool {
	return p.DurationMonths == 0
}

// IsFree reports whether buying the package moves no money.
func (p *Package) IsFree() bool {
	return !p.Price.IsPositive()
}

// PackageInput carries the admin-editable fields of a package.
type PackageInput struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Description    string           `json:"description" validate:"max=2000"`
	Price          *decimal.Decimal `json:"price" validate:"required" swaggertype:"string" example:"999.00"`
	DurationMonths *int             `json:"duration_months" validate:"required,min=0,max=120"`
	Features       []string         `json:"features" validate:"dive,required,max=200"`
	IsActive       *bool            `json:"is_active"`
}
