// Package catalog manages subjects and their videos, quizzes and questions.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrParentMissing = errors.New("parent record does not exist")
)

// Repository is the catalog persistence.
type Repository interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	CreateSubject(ctx context.Context, name, description string) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
	ListVideos(ctx context.Context, subjectID uuid.UUID) ([]models.Video, error)
	CreateVideo(ctx context.Context, v models.Video) (*models.Video, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	ListQuizzes(ctx context.Context, subjectID uuid.UUID) ([]models.Quiz, error)
	CreateQuiz(ctx context.Context, q models.Quiz) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id uuid.UUID) error
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
	CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

// Service implements catalog reads and admin writes.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New creates the catalog service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// translate maps storage sentinels onto catalog ones.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrParentMissing
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Service) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	list, err := s.repo.ListSubjects(ctx)
	return list, translate("catalog.ListSubjects", err)
}

// Subject returns a subject with its videos and quizzes.
func (s *Service) Subject(ctx context.Context, id uuid.UUID) (*models.SubjectDetails, error) {
	const op = "catalog.Subject"
	sub, err := s.repo.GetSubject(ctx, id)
	if err != nil {
		return nil, translate(op, err)
	}
	videos, err := s.repo.ListVideos(ctx, id)
	if err != nil {
		return nil, translate(op, err)
	}
	quizzes, err := s.repo.ListQuizzes(ctx, id)
	if err != nil {
		return nil, translate(op, err)
	}
	return &models.SubjectDetails{Subject: *sub, Videos: videos, Quizzes: quizzes}, nil
}

func (s *Service) CreateSubject(ctx context.Context, name, description string) (*models.Subject, error) {
	sub, err := s.repo.CreateSubject(ctx, name, description)
	if err != nil {
		return nil, translate("catalog.CreateSubject", err)
	}
	s.log.Info("subject created", slog.String("id", sub.ID.String()))
	return sub, nil
}

// DeleteSubject removes a subject; its content goes with it.
func (s *Service) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	return translate("catalog.DeleteSubject", s.repo.DeleteSubject(ctx, id))
}

func (s *Service) CreateVideo(ctx context.Context, v models.Video) (*models.Video, error) {
	created, err := s.repo.CreateVideo(ctx, v)
	if err != nil {
		return nil, translate("catalog.CreateVideo", err)
	}
	return created, nil
}

func (s *Service) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	return translate("catalog.DeleteVideo", s.repo.DeleteVideo(ctx, id))
}

func (s *Service) CreateQuiz(ctx context.Context, q models.Quiz) (*models.Quiz, error) {
	created, err := s.repo.CreateQuiz(ctx, q)
	if err != nil {
		return nil, translate("catalog.CreateQuiz", err)
	}
	return created, nil
}

// DeleteQuiz removes a quiz after its questions.
func (s *Service) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	return translate("catalog.DeleteQuiz", s.repo.DeleteQuiz(ctx, id))
}

// Questions lists the questions of a quiz with their answers, for admins.
func (s *Service) Questions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	list, err := s.repo.ListQuestions(ctx, quizID)
	return list, translate("catalog.Questions", err)
}

func (s *Service) CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error) {
	if q.Points == 0 {
		q.Points = 1
	}
	created, err := s.repo.CreateQuestion(ctx, q)
	if err != nil {
		return nil, translate("catalog.CreateQuestion", err)
	}
	return created, nil
}

func (s *Service) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return translate("catalog.DeleteQuestion", s.repo.DeleteQuestion(ctx, id))
}
