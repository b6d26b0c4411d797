package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Quiz belongs to a subject. DurationMinutes is nil for untimed quizzes.
type Quiz struct {
	ID              uuid.UUID `json:"id"`
	SubjectID       uuid.UUID `json:"subject_id"`
	Title           string    `json:"title"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Question is a four option question with one correct letter.
type Question struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	Question      string    `json:"question"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnswerKey is the grading view of a question.
type AnswerKey struct {
	QuestionID    uuid.UUID
	CorrectAnswer string
	Points        int
}

// QuizWithQuestions is a quiz ready to be taken.
type QuizWithQuestions struct {
	Quiz
	Questions []Question `json:"questions"`
}

// Result is one persisted quiz submission.
type Result struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	QuizID         uuid.UUID `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	TotalPoints    int       `json:"total_points"`
	EarnedPoints   int       `json:"earned_points"`
	Percentage     float64   `json:"percentage"`
	CreatedAt      time.Time `json:"created_at"`
	QuizTitle      string    `json:"quiz_title,omitempty"`
}

// QuestionResult is the per-question breakdown returned after grading.
type QuestionResult struct {
	QuestionID    uuid.UUID `json:"questionId"`
	UserAnswer    string    `json:"userAnswer"`
	CorrectAnswer string    `json:"correctAnswer"`
	IsCorrect     bool      `json:"isCorrect"`
	Points        int       `json:"points"`
	EarnedPoints  int       `json:"earnedPoints"`
}

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	ID              uuid.UUID        `json:"id"`
	CorrectCount    int              `json:"correctCount"`
	TotalQuestions  int              `json:"totalQuestions"`
	EarnedPoints    int              `json:"earnedPoints"`
	TotalPoints     int              `json:"totalPoints"`
	Percentage      float64          `json:"percentage" swaggertype:"string" example:"50.00"`
	QuestionResults []QuestionResult `json:"questionResults"`
}

// MarshalJSON writes percentage as a string with two decimals ("50.00").
func (g GradeResult) MarshalJSON() ([]byte, error) {
	type plain GradeResult
	return json.Marshal(struct {
		plain
		Percentage string `json:"percentage"`
	}{
		plain:      plain(g),
		Percentage: strconv.FormatFloat(g.Percentage, 'f', 2, 64),
	})
}
