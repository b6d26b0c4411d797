package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// DashboardCounts returns the admin dashboard headline numbers.
func (s *Storage) DashboardCounts(ctx context.Context, now time.Time) (*models.DashboardCounts, error) {
	const op = "storage.DashboardCounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
				(SELECT COUNT(*) FROM profiles WHERE role = 'student'),
				(SELECT COUNT(*) FROM subjects),
				(SELECT COUNT(*) FROM videos),
				(SELECT COUNT(*) FROM quizzes),
				(SELECT COUNT(*) FROM user_packages WHERE is_active = TRUE AND end_date >= $1)`
	var c models.DashboardCounts
	err := s.DB.QueryRowContext(ctx, query, now).
		Scan(&c.Students, &c.Subjects, &c.Videos, &c.Quizzes, &c.ActiveEntitlements)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
