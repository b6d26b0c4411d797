package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// HasActiveEntitlement reports whether userID holds an active entitlement
// whose end_date is not before now.
func (s *Storage) HasActiveEntitlement(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	const op = "storage.HasActiveEntitlement"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
				SELECT 1 FROM user_packages
				WHERE user_id = $1 AND is_active = TRUE AND end_date >= $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetActiveEntitlement returns the latest-expiring current entitlement of
// userID joined with its package, or ErrNotFound.
func (s *Storage) GetActiveEntitlement(ctx context.Context, userID uuid.UUID, now time.Time) (*models.ActiveEntitlement, error) {
	const op = "storage.GetActiveEntitlement"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT up.id, up.user_id, up.package_id, up.start_date, up.end_date, up.is_active, up.created_at,
				p.id, p.name, p.description, p.price, p.duration_months, p.features, p.is_active,
				p.created_at, p.updated_at
			  FROM user_packages up
			  JOIN packages p ON p.id = up.package_id
			  WHERE up.user_id = $1 AND up.is_active = TRUE AND up.end_date >= $2
			  ORDER BY up.end_date DESC
			  LIMIT 1`

	var res models.ActiveEntitlement
	e, p := &res.Entitlement, &res.Package
	err := s.DB.QueryRowContext(ctx, query, userID, now).Scan(
		&e.ID, &e.UserID, &e.PackageID, &e.StartDate, &e.EndDate, &e.IsActive, &e.CreatedAt,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationMonths, textArray(&p.Features), &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	e.PackageName = p.Name
	return &res, nil
}

// GrantEntitlement supersedes every active entitlement of userID and inserts
// a new active one in a single transaction. Concurrent grants for the same
// user are serialized by a transaction-scoped advisory lock, so the last
// writer wins. It returns the new entitlement and how many were superseded.
func (s *Storage) GrantEntitlement(ctx context.Context, userID, packageID uuid.UUID, start, end time.Time) (*models.Entitlement, int64, error) {
	const op = "storage.GrantEntitlement"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID.String()); err != nil {
		return nil, 0, fmt.Errorf("%s: lock: %w", op, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE user_packages SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: deactivate: %w", op, err)
	}
	superseded, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	e := models.Entitlement{
		UserID:    userID,
		PackageID: packageID,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO user_packages (user_id, package_id, start_date, end_date, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING id, created_at`,
		userID, packageID, start, end).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: insert: %w", op, mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return &e, superseded, nil
}

// ListStudentEntitlements returns the entitlements of every student joined
// with the package name, newest first.
func (s *Storage) ListStudentEntitlements(ctx context.Context) ([]models.Entitlement, error) {
	const op = "storage.ListStudentEntitlements"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT up.id, up.user_id, up.package_id, up.start_date, up.end_date, up.is_active,
				up.created_at, p.name
			  FROM user_packages up
			  JOIN profiles pr ON pr.id = up.user_id AND pr.role = 'student'
			  LEFT JOIN packages p ON p.id = up.package_id
			  ORDER BY up.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.Entitlement
	for rows.Next() {
		var e models.Entitlement
		var name sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.PackageID, &e.StartDate, &e.EndDate,
			&e.IsActive, &e.CreatedAt, &name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.PackageName = name.String
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
