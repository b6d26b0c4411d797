package quiz

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockRepository) GetAnswerKey(ctx context.Context, quizID uuid.UUID) ([]models.AnswerKey, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerKey), args.Error(1)
}

func (m *MockRepository) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockRepository) CreateResult(ctx context.Context, r models.Result) (uuid.UUID, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) ListResultsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Result, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Result), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var (
	q1 = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	q2 = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
)

func twoQuestionKey() []models.AnswerKey {
	return []models.AnswerKey{
		{QuestionID: q1, CorrectAnswer: "a", Points: 1},
		{QuestionID: q2, CorrectAnswer: "b", Points: 1},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		key        []models.AnswerKey
		answers    map[string]string
		correct    int
		earned     int
		total      int
		percentage float64
	}{
		{
			name:       "one of two correct",
			key:        twoQuestionKey(),
			answers:    map[string]string{q1.String(): "a", q2.String(): "c"},
			correct:    1,
			earned:     1,
			total:      2,
			percentage: 50,
		},
		{
			name:       "missing answer is incorrect",
			key:        twoQuestionKey(),
			answers:    map[string]string{q1.String(): "a"},
			correct:    1,
			earned:     1,
			total:      2,
			percentage: 50,
		},
		{
			name:       "unmapped answers are ignored",
			key:        twoQuestionKey(),
			answers:    map[string]string{uuid.NewString(): "a", q2.String(): "z"},
			correct:    0,
			earned:     0,
			total:      2,
			percentage: 0,
		},
		{
			name:       "letters are case and space insensitive",
			key:        twoQuestionKey(),
			answers:    map[string]string{q1.String(): "A", q2.String(): " B "},
			correct:    2,
			earned:     2,
			total:      2,
			percentage: 100,
		},
		{
			name:       "nil answers",
			key:        twoQuestionKey(),
			answers:    nil,
			total:      2,
			percentage: 0,
		},
		{
			name:       "empty quiz has zero percentage",
			key:        nil,
			answers:    map[string]string{q1.String(): "a"},
			percentage: 0,
		},
		{
			name: "weighted points rounded to two decimals",
			key: []models.AnswerKey{
				{QuestionID: q1, CorrectAnswer: "a", Points: 1},
				{QuestionID: q2, CorrectAnswer: "d", Points: 2},
			},
			answers:    map[string]string{q1.String(): "A", q2.String(): "c"},
			correct:    1,
			earned:     1,
			total:      3,
			percentage: 33.33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(tt.key, tt.answers)

			assert.Equal(t, tt.correct, res.CorrectCount)
			assert.Equal(t, tt.earned, res.EarnedPoints)
			assert.Equal(t, tt.total, res.TotalPoints)
			assert.Equal(t, len(tt.key), res.TotalQuestions)
			assert.InDelta(t, tt.percentage, res.Percentage, 0.0001)
			assert.GreaterOrEqual(t, res.Percentage, 0.0)
			assert.LessOrEqual(t, res.Percentage, 100.0)
			assert.Len(t, res.QuestionResults, len(tt.key))
		})
	}
}

func TestScore_Breakdown(t *testing.T) {
	res := Score(twoQuestionKey(), map[string]string{q1.String(): "a", q2.String(): "c"})

	require.Len(t, res.QuestionResults, 2)
	assert.Equal(t, models.QuestionResult{
		QuestionID: q1, UserAnswer: "a", CorrectAnswer: "a", IsCorrect: true, Points: 1, EarnedPoints: 1,
	}, res.QuestionResults[0])
	assert.Equal(t, models.QuestionResult{
		QuestionID: q2, UserAnswer: "c", CorrectAnswer: "b", IsCorrect: false, Points: 1, EarnedPoints: 0,
	}, res.QuestionResults[1])
}

func TestPercentage(t *testing.T) {
	assert.InDelta(t, 0, Percentage(0, 0), 0)
	assert.InDelta(t, 100, Percentage(3, 3), 0)
	assert.InDelta(t, 66.67, Percentage(2, 3), 0.0001)
	assert.InDelta(t, 100, Percentage(5, 3), 0)
}

type recorder struct{ calls []float64 }

func (r *recorder) QuizGraded(p float64) { r.calls = append(r.calls, p) }

func TestService_Grade(t *testing.T) {
	userID, quizID := uuid.New(), uuid.New()
	answers := map[string]string{q1.String(): "a", q2.String(): "c"}

	t.Run("each submission stores a new result", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetQuiz", mock.Anything, quizID).Return(&models.Quiz{ID: quizID}, nil).Twice()
		repo.On("GetAnswerKey", mock.Anything, quizID).Return(twoQuestionKey(), nil).Twice()
		expected := models.Result{
			UserID: userID, QuizID: quizID, Score: 1, TotalQuestions: 2,
			TotalPoints: 2, EarnedPoints: 1, Percentage: 50,
		}
		first, second := uuid.New(), uuid.New()
		repo.On("CreateResult", mock.Anything, expected).Return(first, nil).Once()
		repo.On("CreateResult", mock.Anything, expected).Return(second, nil).Once()

		rec := &recorder{}
		s := New(repo, rec, newNoopLogger())

		r1, err := s.Grade(context.Background(), userID, quizID, answers)
		require.NoError(t, err)
		r2, err := s.Grade(context.Background(), userID, quizID, answers)
		require.NoError(t, err)

		assert.Equal(t, first, r1.ID)
		assert.Equal(t, second, r2.ID)
		assert.Equal(t, r1.Percentage, r2.Percentage)
		assert.Equal(t, []float64{50, 50}, rec.calls)
		repo.AssertExpectations(t)
	})

	t.Run("unknown quiz", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetQuiz", mock.Anything, quizID).Return(nil, storage.ErrNotFound).Once()

		_, err := New(repo, nil, newNoopLogger()).Grade(context.Background(), userID, quizID, answers)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})

	t.Run("save failure reports generic error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetQuiz", mock.Anything, quizID).Return(&models.Quiz{ID: quizID}, nil).Once()
		repo.On("GetAnswerKey", mock.Anything, quizID).Return(twoQuestionKey(), nil).Once()
		repo.On("CreateResult", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("disk full")).Once()

		res, err := New(repo, nil, newNoopLogger()).Grade(context.Background(), userID, quizID, answers)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrSaveFailed)
		assert.NotContains(t, err.Error(), "disk full")
	})

	t.Run("answer key error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetQuiz", mock.Anything, quizID).Return(&models.Quiz{ID: quizID}, nil).Once()
		repo.On("GetAnswerKey", mock.Anything, quizID).Return(nil, errors.New("timeout")).Once()

		_, err := New(repo, nil, newNoopLogger()).Grade(context.Background(), userID, quizID, answers)
		require.Error(t, err)
		repo.AssertNotCalled(t, "CreateResult", mock.Anything, mock.Anything)
	})
}

func TestService_ForTakingHidesAnswers(t *testing.T) {
	quizID := uuid.New()
	repo := new(MockRepository)
	repo.On("GetQuiz", mock.Anything, quizID).Return(&models.Quiz{ID: quizID, Title: "Kinematics"}, nil).Once()
	repo.On("ListQuestions", mock.Anything, quizID).Return([]models.Question{
		{ID: q1, Question: "v = ?", CorrectAnswer: "a", Points: 1},
		{ID: q2, Question: "a = ?", CorrectAnswer: "b", Points: 2},
	}, nil).Once()

	q, err := New(repo, nil, newNoopLogger()).ForTaking(context.Background(), quizID)
	require.NoError(t, err)
	assert.Equal(t, "Kinematics", q.Title)
	require.Len(t, q.Questions, 2)
	for _, question := range q.Questions {
		assert.Empty(t, question.CorrectAnswer)
	}
}

func TestService_ForTakingUnknownQuiz(t *testing.T) {
	quizID := uuid.New()
	repo := new(MockRepository)
	repo.On("GetQuiz", mock.Anything, quizID).Return(nil, storage.ErrNotFound).Once()

	_, err := New(repo, nil, newNoopLogger()).ForTaking(context.Background(), quizID)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestService_Results(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("ListResultsByUser", mock.Anything, userID, ResultsLimit).
		Return([]models.Result{{UserID: userID, Percentage: 50}}, nil).Once()

	res, err := New(repo, nil, newNoopLogger()).Results(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}
