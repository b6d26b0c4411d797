package quizcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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
	Title           string `json:"title" validate:"required,max=300"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
}

type Service interface {
	CreateQuiz(ctx context.Context, q models.Quiz) (*models.Quiz, error)
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
// @Summary Add a quiz to a subject
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param request body Request true "Quiz"
// @Success 201 {object} response.Response{data=models.Quiz}
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/subjects/{id}/quizzes [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.quizcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subjectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subject id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	q, err := h.service.CreateQuiz(r.Context(), models.Quiz{
		SubjectID:       subjectID,
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
	})
	switch {
	case errors.Is(err, catalog.ErrParentMissing):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subject not found"))
		return
	case err != nil:
		log.Error("failed to create quiz", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create quiz"))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(q))
}
