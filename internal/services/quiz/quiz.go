// Package quiz grades quiz submissions and serves quizzes for taking.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrSaveFailed   = errors.New("failed to save result")
)

// ResultsLimit caps the results history returned to a user.
const ResultsLimit = 100

// Repository is the persistence used for grading.
type Repository interface {
	GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	GetAnswerKey(ctx context.Context, quizID uuid.UUID) ([]models.AnswerKey, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
	CreateResult(ctx context.Context, r models.Result) (uuid.UUID, error)
	ListResultsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Result, error)
}

// Recorder counts graded submissions.
type Recorder interface {
	QuizGraded(percentage float64)
}

// Service grades quizzes.
type Service struct {
	repo    Repository
	metrics Recorder
	log     *slog.Logger
}

// New creates the grading service. metrics may be nil.
func New(repo Repository, metrics Recorder, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		log:     log,
	}
}

// Score compares answers with the key. Answers are option letters keyed by
// question id; a missing or unknown answer scores zero.
func Score(key []models.AnswerKey, answers map[string]string) models.GradeResult {
	res := models.GradeResult{
		TotalQuestions:  len(key),
		QuestionResults: make([]models.QuestionResult, 0, len(key)),
	}
	for _, q := range key {
		given := strings.ToLower(strings.TrimSpace(answers[q.QuestionID.String()]))
		correct := given != "" && given == strings.ToLower(q.CorrectAnswer)

		qr := models.QuestionResult{
			QuestionID:    q.QuestionID,
			UserAnswer:    given,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			Points:        q.Points,
		}
		res.TotalPoints += q.Points
		if correct {
			res.CorrectCount++
			res.EarnedPoints += q.Points
			qr.EarnedPoints = q.Points
		}
		res.QuestionResults = append(res.QuestionResults, qr)
	}
	res.Percentage = Percentage(res.EarnedPoints, res.TotalPoints)
	return res
}

// Percentage is earned/total*100 rounded to two decimals, 0 when total is 0.
func Percentage(earned, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(earned) / float64(total) * 100
	p = math.Max(0, math.Min(100, p))
	return math.Round(p*100) / 100
}

// Grade scores a submission by userID and stores one result row for it.
func (s *Service) Grade(ctx context.Context, userID, quizID uuid.UUID, answers map[string]string) (*models.GradeResult, error) {
	const op = "quiz.Grade"
	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID.String()),
		slog.String("quiz_id", quizID.String()),
	)

	if _, err := s.repo.GetQuiz(ctx, quizID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key, err := s.repo.GetAnswerKey(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := Score(key, answers)

	id, err := s.repo.CreateResult(ctx, models.Result{
		UserID:         userID,
		QuizID:         quizID,
		Score:          res.CorrectCount,
		TotalQuestions: res.TotalQuestions,
		TotalPoints:    res.TotalPoints,
		EarnedPoints:   res.EarnedPoints,
		Percentage:     res.Percentage,
	})
	if err != nil {
		log.Error("failed to save result", sl.Err(err))
		return nil, ErrSaveFailed
	}
	res.ID = id

	if s.metrics != nil {
		s.metrics.QuizGraded(res.Percentage)
	}
	log.Info("quiz graded",
		slog.Int("correct", res.CorrectCount),
		slog.Int("total", res.TotalQuestions),
		slog.Float64("percentage", res.Percentage),
	)
	return &res, nil
}

// ForTaking returns the quiz with its questions and the correct answers removed.
func (s *Service) ForTaking(ctx context.Context, quizID uuid.UUID) (*models.QuizWithQuestions, error) {
	const op = "quiz.ForTaking"
	q, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	questions, err := s.repo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range questions {
		questions[i].CorrectAnswer = ""
	}
	return &models.QuizWithQuestions{Quiz: *q, Questions: questions}, nil
}

// Results returns the user's latest submissions.
func (s *Service) Results(ctx context.Context, userID uuid.UUID) ([]models.Result, error) {
	const op = "quiz.Results"
	res, err := s.repo.ListResultsByUser(ctx, userID, ResultsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
