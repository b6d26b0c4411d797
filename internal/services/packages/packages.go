// Package packages manages the package catalog and admin assignments.
package packages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/cache"
	"github.com/magabrotheeeer/learning-platform/internal/lib/month"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

var (
	ErrPackageNotFound = errors.New("package not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrPackageInUse    = errors.New("package is referenced by entitlements")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// Repository is the package and entitlement persistence.
type Repository interface {
	ListActivePackages(ctx context.Context) ([]models.Package, error)
	ListPackages(ctx context.Context) ([]models.Package, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error)
	GetActivePackage(ctx context.Context, id uuid.UUID) (*models.Package, error)
	CreatePackage(ctx context.Context, p models.Package) (*models.Package, error)
	UpdatePackage(ctx context.Context, p models.Package) (*models.Package, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GrantEntitlement(ctx context.Context, userID, packageID uuid.UUID, start, end time.Time) (*models.Entitlement, int64, error)
}

// Cache describes the JSON cache used for the public package list.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service implements package administration.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// New creates the service. cache may be nil, then every read hits the store.
func New(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListActive returns the purchasable packages ordered by price.
func (s *Service) ListActive(ctx context.Context) ([]models.Package, error) {
	const op = "packages.ListActive"
	if s.cache != nil {
		var cached []models.Package
		found, err := s.cache.Get(ctx, cache.KeyActivePackages, &cached)
		if err != nil {
			s.log.Warn("failed to read cache", slog.String("op", op), sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	list, err := s.repo.ListActivePackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.KeyActivePackages, list, s.ttl); err != nil {
			s.log.Warn("failed to add to cache", slog.String("op", op), sl.Err(err))
		}
	}
	return list, nil
}

// ListAll returns every package including inactive ones.
func (s *Service) ListAll(ctx context.Context) ([]models.Package, error) {
	const op = "packages.ListAll"
	list, err := s.repo.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get returns one package.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	const op = "packages.Get"
	p, err := s.repo.GetPackage(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Create adds a package built from in.
func (s *Service) Create(ctx context.Context, in models.PackageInput) (*models.Package, error) {
	const op = "packages.Create"
	p, err := fromInput(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreatePackage(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("package created", slog.String("id", created.ID.String()), slog.String("name", created.Name))
	s.invalidate(ctx)
	return created, nil
}

// Update replaces the editable fields of package id.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in models.PackageInput) (*models.Package, error) {
	const op = "packages.Update"
	p, err := fromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.repo.UpdatePackage(ctx, p)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a package that no entitlement references.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "packages.Delete"
	err := s.repo.DeletePackage(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrPackageNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrPackageInUse
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	return nil
}

// Assign grants packageID to userID without a payment, superseding the
// user's current entitlement the same way a purchase does.
func (s *Service) Assign(ctx context.Context, userID, packageID uuid.UUID) (*models.Entitlement, error) {
	const op = "packages.Assign"
	if _, err := s.repo.GetProfile(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pkg, err := s.repo.GetActivePackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := s.now().UTC()
	ent, superseded, err := s.repo.GrantEntitlement(ctx, userID, pkg.ID, start, month.EndDate(start, pkg.DurationMonths))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ent.PackageName = pkg.Name
	s.log.Info("package assigned",
		slog.String("user_id", userID.String()),
		slog.String("package_id", pkg.ID.String()),
		slog.Int64("superseded", superseded),
	)
	return ent, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.KeyActivePackages); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cache.KeyActivePackages), sl.Err(err))
	}
}

func fromInput(in models.PackageInput) (models.Package, error) {
	p := models.Package{
		Name:        in.Name,
		Description: in.Description,
		Features:    in.Features,
		IsActive:    true,
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return models.Package{}, ErrInvalidPrice
		}
		p.Price = in.Price.Round(2)
	}
	if in.DurationMonths != nil {
		p.DurationMonths = *in.DurationMonths
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p, nil
}
