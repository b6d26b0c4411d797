// Package status reports what the caller may access.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/learning-platform/internal/http/response"
	"github.com/magabrotheeeer/learning-platform/internal/services/access"
)

type Service interface {
	Status(ctx context.Context, userID uuid.UUID) *access.Status
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Access status
// @Description Tells whether the caller can open gated content, with the active package if any
// @Tags Access
// @Produce json
// @Success 200 {object} response.Response{data=access.Status}
// @Failure 401 {object} response.ErrorResponse
// @Router /access [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	st := h.service.Status(r.Context(), userID)
	log.Debug("access evaluated", slog.Bool("can_access", st.CanAccess), slog.Bool("is_admin", st.IsAdmin))
	render.JSON(w, r, response.StatusOKWithData(st))
}
