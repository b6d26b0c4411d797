// Package read serves a quiz for taking, without its answers.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/http/response"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/services/quiz"
)

type Service interface {
	ForTaking(ctx context.Context, quizID uuid.UUID) (*models.QuizWithQuestions, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Get a quiz
// @Description Returns the quiz with its questions; correct answers are never included
// @Tags Quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Active package required"
// @Failure 404 {object} response.ErrorResponse
// @Router /quizzes/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid quiz id"))
		return
	}

	q, err := h.service.ForTaking(r.Context(), id)
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("quiz not found"))
		return
	case err != nil:
		log.Error("failed to read quiz", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read quiz"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"quiz": q,
	}))
}
