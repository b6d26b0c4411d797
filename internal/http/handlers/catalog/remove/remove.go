// Package remove deletes one catalog record by id. The same handler serves
// subjects, videos, quizzes and questions.
package remove

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
	"github.com/magabrotheeeer/learning-platform/internal/services/catalog"
)

// DeleteFunc removes the record with id.
type DeleteFunc func(ctx context.Context, id uuid.UUID) error

type Handler struct {
	log    *slog.Logger
	entity string
	del    DeleteFunc
}

// New builds a handler for entity, e.g. "video".
func New(log *slog.Logger, entity string, del DeleteFunc) *Handler {
	return &Handler{log: log, entity: entity, del: del}
}

// ServeHTTP godoc
// @Summary Delete a catalog record
// @Description Deleting a subject removes its videos and quizzes; deleting a quiz removes its questions and results
// @Tags Admin
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/subjects/{id} [delete]
// @Router /admin/videos/{id} [delete]
// @Router /admin/quizzes/{id} [delete]
// @Router /admin/questions/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("entity", h.entity),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid "+h.entity+" id"))
		return
	}

	err = h.del(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error(h.entity+" not found"))
		return
	case err != nil:
		log.Error("failed to delete", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete "+h.entity))
		return
	}

	log.Info("deleted", slog.String("id", id.String()))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_id": id,
	}))
}
