// Package questioncreate adds a multiple choice question to a quiz.
package questioncreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/http/response"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/services/catalog"
)

type Request struct {
	Question      string `json:"question" validate:"required,max=2000"`
	OptionA       string `json:"option_a" validate:"required,max=500"`
	OptionB       string `json:"option_b" validate:"required,max=500"`
	OptionC       string `json:"option_c" validate:"required,max=500"`
	OptionD       string `json:"option_d" validate:"required,max=500"`
	CorrectAnswer string `json:"correct_answer" validate:"required,oneof=a b c d"`
	Points        int    `json:"points" validate:"omitempty,min=1,max=100"`
}

type Service interface {
	CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Add a question to a quiz
// @Description correct_answer is one of a, b, c, d; points default to 1
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body Request true "Question"
// @Success 201 {object} response.Response{data=models.Question}
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/quizzes/{id}/questions [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.questioncreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid quiz id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	req.CorrectAnswer = strings.ToLower(strings.TrimSpace(req.CorrectAnswer))
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	q, err := h.service.CreateQuestion(r.Context(), models.Question{
		QuizID:        quizID,
		Question:      req.Question,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
	})
	switch {
	case errors.Is(err, catalog.ErrParentMissing):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("quiz not found"))
		return
	case err != nil:
		log.Error("failed to create question", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create question"))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(q))
}
