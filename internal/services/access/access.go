// Package access decides whether a user may view gated content.
//
// Every check reads the store directly. Lookup failures are logged and
// answered with "no access" so a broken dependency never opens content.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/lib/month"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

// Repository is the read side of profiles and entitlements.
type Repository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	HasActiveEntitlement(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
	GetActiveEntitlement(ctx context.Context, userID uuid.UUID, now time.Time) (*models.ActiveEntitlement, error)
}

// Status is the caller's access summary.
type Status struct {
	CanAccess     bool                      `json:"can_access"`
	IsAdmin       bool                      `json:"is_admin"`
	ActivePackage *models.ActiveEntitlement `json:"active_package,omitempty"`
	DaysRemaining *int                      `json:"days_remaining,omitempty"`
}

// Service evaluates access rules.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New creates the evaluator.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IsAdmin reports whether userID has the admin role.
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	const op = "access.IsAdmin"
	if userID == uuid.Nil {
		return false
	}
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		s.log.Warn("profile lookup failed, treating as non-admin",
			slog.String("op", op), slog.String("user_id", userID.String()), sl.Err(err))
		return false
	}
	return p.IsAdmin()
}

// HasActivePackage reports whether userID holds a current entitlement.
func (s *Service) HasActivePackage(ctx context.Context, userID uuid.UUID) bool {
	const op = "access.HasActivePackage"
	if userID == uuid.Nil {
		return false
	}
	ok, err := s.repo.HasActiveEntitlement(ctx, userID, s.now().UTC())
	if err != nil {
		s.log.Warn("entitlement lookup failed, treating as not entitled",
			slog.String("op", op), slog.String("user_id", userID.String()), sl.Err(err))
		return false
	}
	return ok
}

// CanAccessContent is true for admins and for users with a current entitlement.
func (s *Service) CanAccessContent(ctx context.Context, userID uuid.UUID) bool {
	if s.IsAdmin(ctx, userID) {
		return true
	}
	return s.HasActivePackage(ctx, userID)
}

// ActivePackage returns the latest-expiring current entitlement of userID
// with its package, or nil when there is none.
func (s *Service) ActivePackage(ctx context.Context, userID uuid.UUID) (*models.ActiveEntitlement, error) {
	const op = "access.ActivePackage"
	ae, err := s.repo.GetActiveEntitlement(ctx, userID, s.now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ae, nil
}

// Status combines the checks for the access endpoint.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) *Status {
	const op = "access.Status"
	st := &Status{IsAdmin: s.IsAdmin(ctx, userID)}

	ae, err := s.ActivePackage(ctx, userID)
	if err != nil {
		s.log.Warn("active package lookup failed", slog.String("op", op), sl.Err(err))
	}
	if ae != nil {
		st.ActivePackage = ae
		days := month.DaysRemaining(ae.Entitlement.EndDate, s.now().UTC())
		st.DaysRemaining = &days
	}
	st.CanAccess = st.IsAdmin || ae != nil
	return st
}
