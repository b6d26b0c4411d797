// Package grade scores quiz submissions.
package grade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/services/quiz"
)

// Request is a quiz submission: option letters keyed by question id.
type Request struct {
	QuizID  string            `json:"quizId" validate:"required,uuid"`
	Answers map[string]string `json:"answers" validate:"required"`
}

// Response is the grading answer.
type Response struct {
	Success bool                `json:"success"`
	Result  *models.GradeResult `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type Service interface {
	Grade(ctx context.Context, userID, quizID uuid.UUID, answers map[string]string) (*models.GradeResult, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Grade a quiz submission
// @Description Scores the answers, stores a result and returns the per-question breakdown
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param request body Request true "Submission"
// @Success 200 {object} Response
// @Failure 400 {object} Response "Malformed body"
// @Failure 401 {object} Response "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Active package required"
// @Failure 404 {object} Response "Quiz not found"
// @Failure 422 {object} Response "Validation failed"
// @Failure 500 {object} Response "Result could not be saved"
// @Router /quiz/grade [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.grade"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		write(w, r, http.StatusUnauthorized, Response{Error: "Unauthorized"})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request", sl.Err(err))
		write(w, r, http.StatusBadRequest, Response{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		write(w, r, http.StatusUnprocessableEntity, Response{Error: "Missing required fields"})
		return
	}
	quizID := uuid.MustParse(req.QuizID)

	res, err := h.service.Grade(r.Context(), userID, quizID, req.Answers)
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		write(w, r, http.StatusNotFound, Response{Error: "Quiz not found"})
		return
	case err != nil:
		log.Error("failed to grade quiz", sl.Err(err))
		write(w, r, http.StatusInternalServerError, Response{Error: "Failed to save quiz result"})
		return
	}

	write(w, r, http.StatusOK, Response{Success: true, Result: res})
}

func write(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}
