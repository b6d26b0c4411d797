package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

const packageColumns = `id, name, description, price, duration_months, features, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (*models.Package, error) {
	var p models.Package
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationMonths,
		textArray(&p.Features), &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return &p, nil
}

func (s *Storage) queryPackages(ctx context.Context, op, query string, args ...any) ([]models.Package, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListActivePackages returns the purchasable packages, cheapest first.
func (s *Storage) ListActivePackages(ctx context.Context) ([]models.Package, error) {
	const op = "storage.ListActivePackages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	return s.queryPackages(ctx, op,
		`SELECT `+packageColumns+` FROM packages WHERE is_active ORDER BY price ASC, name ASC`)
}

// ListPackages returns every package, cheapest first.
func (s *Storage) ListPackages(ctx context.Context) ([]models.Package, error) {
	const op = "storage.ListPackages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	return s.queryPackages(ctx, op,
		`SELECT `+packageColumns+` FROM packages ORDER BY price ASC, name ASC`)
}

// GetPackage returns a package regardless of its active flag.
func (s *Storage) GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	const op = "storage.GetPackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPackage(s.DB.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// GetActivePackage returns the package only if it can currently be bought.
func (s *Storage) GetActivePackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	const op = "storage.GetActivePackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPackage(s.DB.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1 AND is_active`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// CreatePackage inserts p and returns the stored row.
func (s *Storage) CreatePackage(ctx context.Context, p models.Package) (*models.Package, error) {
	const op = "storage.CreatePackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO packages (name, description, price, duration_months, features, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + packageColumns
	created, err := scanPackage(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.DurationMonths, features(p.Features), p.IsActive))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// UpdatePackage overwrites the editable fields of p.ID.
func (s *Storage) UpdatePackage(ctx context.Context, p models.Package) (*models.Package, error) {
	const op = "storage.UpdatePackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE packages
			  SET name = $1, description = $2, price = $3, duration_months = $4,
			      features = $5, is_active = $6, updated_at = NOW()
			  WHERE id = $7
			  RETURNING ` + packageColumns
	updated, err := scanPackage(s.DB.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.DurationMonths, features(p.Features), p.IsActive, p.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return updated, nil
}

// DeletePackage removes a package. It fails with ErrConflict while any
// entitlement still references the package.
func (s *Storage) DeletePackage(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeletePackage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return affectedOne(op, res)
}

func features(f []string) []string {
	if f == nil {
		return []string{}
	}
	return f
}

func affectedOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
