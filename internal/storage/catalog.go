package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// ListSubjects returns every subject ordered by name.
func (s *Storage) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	const op = "storage.ListSubjects"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM subjects ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.Subject{}
	for rows.Next() {
		var sub models.Subject
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Description, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetSubject returns one subject.
func (s *Storage) GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	const op = "storage.GetSubject"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var sub models.Subject
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM subjects WHERE id = $1`, id).
		Scan(&sub.ID, &sub.Name, &sub.Description, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &sub, nil
}

// CreateSubject inserts a subject.
func (s *Storage) CreateSubject(ctx context.Context, name, description string) (*models.Subject, error) {
	const op = "storage.CreateSubject"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sub := models.Subject{Name: name, Description: description}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO subjects (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		name, description).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &sub, nil
}

// DeleteSubject removes a subject with its videos, quizzes and questions.
func (s *Storage) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteSubject"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return affectedOne(op, res)
}

// ListVideos returns the videos of a subject in creation order.
func (s *Storage) ListVideos(ctx context.Context, subjectID uuid.UUID) ([]models.Video, error) {
	const op = "storage.ListVideos"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, subject_id, title, youtube_url, video_path, created_at
		 FROM videos WHERE subject_id = $1 ORDER BY created_at ASC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.Video{}
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.SubjectID, &v.Title, &v.YoutubeURL, &v.VideoPath, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CreateVideo inserts a video. Unknown subjects yield ErrConflict.
func (s *Storage) CreateVideo(ctx context.Context, v models.Video) (*models.Video, error) {
	const op = "storage.CreateVideo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO videos (subject_id, title, youtube_url, video_path)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		v.SubjectID, v.Title, v.YoutubeURL, v.VideoPath).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &v, nil
}

// DeleteVideo removes a video.
func (s *Storage) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteVideo"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOne(op, res)
}

// ListQuizzes returns the quizzes of a subject in creation order.
func (s *Storage) ListQuizzes(ctx context.Context, subjectID uuid.UUID) ([]models.Quiz, error) {
	const op = "storage.ListQuizzes"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, subject_id, title, duration_minutes, created_at
		 FROM quizzes WHERE subject_id = $1 ORDER BY created_at ASC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.Quiz{}
	for rows.Next() {
		var q models.Quiz
		var duration sql.NullInt32
		if err := rows.Scan(&q.ID, &q.SubjectID, &q.Title, &duration, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		q.DurationMinutes = intPtr(duration)
		res = append(res, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetQuiz returns one quiz.
func (s *Storage) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	const op = "storage.GetQuiz"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var q models.Quiz
	var duration sql.NullInt32
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, subject_id, title, duration_minutes, created_at FROM quizzes WHERE id = $1`, id).
		Scan(&q.ID, &q.SubjectID, &q.Title, &duration, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	q.DurationMinutes = intPtr(duration)
	return &q, nil
}

// CreateQuiz inserts a quiz. Unknown subjects yield ErrConflict.
func (s *Storage) CreateQuiz(ctx context.Context, q models.Quiz) (*models.Quiz, error) {
	const op = "storage.CreateQuiz"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO quizzes (subject_id, title, duration_minutes)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		q.SubjectID, q.Title, nullInt(q.DurationMinutes)).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &q, nil
}

// DeleteQuiz removes the questions of a quiz and then the quiz itself in one transaction.
func (s *Storage) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteQuiz"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id = $1`, id); err != nil {
		return fmt.Errorf("%s: questions: %w", op, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affectedOne(op, res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListQuestions returns the questions of a quiz, including correct answers.
func (s *Storage) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	const op = "storage.ListQuestions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, quiz_id, question, option_a, option_b, option_c, option_d,
			correct_answer, points, created_at
		 FROM questions WHERE quiz_id = $1 ORDER BY created_at ASC, id ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Question, &q.OptionA, &q.OptionB, &q.OptionC,
			&q.OptionD, &q.CorrectAnswer, &q.Points, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CreateQuestion inserts a question. Unknown quizzes yield ErrConflict.
func (s *Storage) CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error) {
	const op = "storage.CreateQuestion"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO questions (quiz_id, question, option_a, option_b, option_c, option_d,
			correct_answer, points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		q.QuizID, q.Question, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, q.Points).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &q, nil
}

// DeleteQuestion removes a question.
func (s *Storage) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteQuestion"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOne(op, res)
}
