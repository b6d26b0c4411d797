package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// GetProfile returns the profile of userID.
func (s *Storage) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, full_name, role, created_at FROM profiles WHERE id = $1`
	var p models.Profile
	err := s.DB.QueryRowContext(ctx, query, userID).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &p, nil
}

// PrimaryAdminID returns the oldest admin profile, which owns the operator wallet.
func (s *Storage) PrimaryAdminID(ctx context.Context) (uuid.UUID, error) {
	const op = "storage.PrimaryAdminID"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id FROM profiles WHERE role = 'admin' ORDER BY created_at ASC, id ASC LIMIT 1`
	var id uuid.UUID
	if err := s.DB.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// ListStudents returns every student profile, newest first.
func (s *Storage) ListStudents(ctx context.Context) ([]models.Profile, error) {
	const op = "storage.ListStudents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, full_name, role, created_at
			  FROM profiles WHERE role = 'student'
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
