package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// GetAnswerKey returns the correct letter and weight of every question of quizID.
func (s *Storage) GetAnswerKey(ctx context.Context, quizID uuid.UUID) ([]models.AnswerKey, error) {
	const op = "storage.GetAnswerKey"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, correct_answer, points FROM questions
		 WHERE quiz_id = $1 ORDER BY created_at ASC, id ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.AnswerKey{}
	for rows.Next() {
		var k models.AnswerKey
		if err := rows.Scan(&k.QuestionID, &k.CorrectAnswer, &k.Points); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CreateResult stores one graded submission. Resubmissions create new rows.
func (s *Storage) CreateResult(ctx context.Context, r models.Result) (uuid.UUID, error) {
	const op = "storage.CreateResult"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id uuid.UUID
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO results (user_id, quiz_id, score, total_questions, total_points,
			earned_points, percentage)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		r.UserID, r.QuizID, r.Score, r.TotalQuestions, r.TotalPoints, r.EarnedPoints, r.Percentage).
		Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// ListResultsByUser returns the submissions of userID, newest first.
func (s *Storage) ListResultsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Result, error) {
	const op = "storage.ListResultsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.quiz_id, r.score, r.total_questions, r.total_points,
			r.earned_points, r.percentage, r.created_at, q.title
		 FROM results r
		 JOIN quizzes q ON q.id = r.quiz_id
		 WHERE r.user_id = $1
		 ORDER BY r.created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.Result{}
	for rows.Next() {
		var r models.Result
		if err := rows.Scan(&r.ID, &r.UserID, &r.QuizID, &r.Score, &r.TotalQuestions, &r.TotalPoints,
			&r.EarnedPoints, &r.Percentage, &r.CreatedAt, &r.QuizTitle); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
