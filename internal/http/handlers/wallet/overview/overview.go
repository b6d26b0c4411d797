// Package overview serves the operator wallet page.
package overview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/learning-platform/internal/http/response"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/services/wallet"
)

type Service interface {
	Overview(ctx context.Context) (*models.WalletOverview, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Wallet overview
// @Description Balance, total earnings, the latest 50 wallet transactions and payment totals
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response{data=models.WalletOverview}
// @Failure 404 {object} response.ErrorResponse "No admin account"
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/wallet [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallet.overview"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ov, err := h.service.Overview(r.Context())
	switch {
	case errors.Is(err, wallet.ErrNoAdmin):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no admin account"))
		return
	case err != nil:
		log.Error("failed to build wallet overview", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load wallet"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(ov))
}
