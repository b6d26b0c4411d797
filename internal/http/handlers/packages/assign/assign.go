// Package assign lets an admin grant a package to a student without a payment.
package assign

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
	"github.com/magabrotheeeer/learning-platform/internal/services/packages"
)

type Request struct {
	PackageID string `json:"package_id" validate:"required,uuid"`
}

type Service interface {
	Assign(ctx context.Context, userID, packageID uuid.UUID) (*models.Entitlement, error)
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
// @Summary Assign a package to a user
// @Description Supersedes the user's active entitlement, like a purchase, but records no payment
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body Request true "Package to assign"
// @Success 200 {object} response.Response{data=models.Entitlement}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/users/{id}/packages [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.packages.assign"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
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

	ent, err := h.service.Assign(r.Context(), userID, uuid.MustParse(req.PackageID))
	switch {
	case errors.Is(err, packages.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, packages.ErrPackageNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("package not found or inactive"))
		return
	case err != nil:
		log.Error("failed to assign package", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not assign package"))
		return
	}

	log.Info("package assigned",
		slog.String("user_id", userID.String()),
		slog.String("entitlement_id", ent.ID.String()),
	)
	render.JSON(w, r, response.StatusOKWithData(ent))
}
