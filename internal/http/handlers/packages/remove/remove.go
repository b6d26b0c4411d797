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
	"github.com/magabrotheeeer/learning-platform/internal/services/packages"
)

type Service interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Delete a package
// @Description Refused with 409 while entitlements reference the package; deactivate it instead
// @Tags Admin
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /admin/packages/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.packages.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid package id"))
		return
	}

	err = h.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, packages.ErrPackageNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("package not found"))
		return
	case errors.Is(err, packages.ErrPackageInUse):
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("package has entitlements, deactivate it instead"))
		return
	case err != nil:
		log.Error("failed to delete package", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete package"))
		return
	}

	log.Info("package deleted", slog.String("id", id.String()))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_id": id,
	}))
}
