package videocreate

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

// Request needs a title and at least one source.
type Request struct {
	Title      string `json:"title" validate:"required,max=300"`
	YoutubeURL string `json:"youtube_url" validate:"required_without=VideoPath,omitempty,url"`
	VideoPath  string `json:"video_path" validate:"required_without=YoutubeURL,omitempty,max=500"`
}

type Service interface {
	CreateVideo(ctx context.Context, v models.Video) (*models.Video, error)
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
// @Summary Add a video to a subject
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param request body Request true "Video"
// @Success 201 {object} response.Response{data=models.Video}
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/subjects/{id}/videos [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.videocreate"
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

	v, err := h.service.CreateVideo(r.Context(), models.Video{
		SubjectID:  subjectID,
		Title:      req.Title,
		YoutubeURL: req.YoutubeURL,
		VideoPath:  req.VideoPath,
	})
	switch {
	case errors.Is(err, catalog.ErrParentMissing):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subject not found"))
		return
	case err != nil:
		log.Error("failed to create video", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create video"))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(v))
}
