// Package checkout handles package purchases.
//
// The buyer is always the authenticated caller. A user_id sent in the body is
// decoded for compatibility with older clients and otherwise ignored.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/services/payment"
)

// Messages shown to the buyer.
const (
	MsgSuccess         = "Payment processed successfully!"
	MsgUnauthorized    = "User not authenticated. Please log in and try again."
	MsgPackageNotFound = "Package not found or is no longer available."
	MsgPaymentFailed   = "Failed to process payment. Please try again or contact support."
	MsgUnexpected      = "An unexpected error occurred. Please try again later."
	MsgInvalidPackage  = "Invalid package id."
	MsgInvalidBody     = "Invalid request body."
)

// Request is the optional checkout body.
type Request struct {
	UserID string `json:"user_id,omitempty"`
}

// Result is the checkout response.
type Result struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message,omitempty"`
	Error         string   `json:"error,omitempty"`
	TransactionID string   `json:"transactionId,omitempty"`
	Outcome       string   `json:"outcome,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Service runs the purchase.
type Service interface {
	ProcessPayment(ctx context.Context, callerID, packageID uuid.UUID) (*payment.Result, error)
}

// Handler serves POST /api/v1/packages/{id}/checkout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the checkout handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Buy a package
// @Description Grants the package to the caller with the mock card and records the payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} Result
// @Failure 400 {object} Result "Malformed body"
// @Failure 401 {object} Result "Not authenticated"
// @Failure 404 {object} Result "Package not found or inactive"
// @Failure 422 {object} Result "Invalid package id"
// @Failure 500 {object} Result "Payment failed"
// @Router /packages/{id}/checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	callerID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		writeResult(w, r, http.StatusUnauthorized, Result{Error: MsgUnauthorized})
		return
	}

	packageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid package id", sl.Err(err))
		writeResult(w, r, http.StatusUnprocessableEntity, Result{Error: MsgInvalidPackage})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Info("failed to decode request", sl.Err(err))
		writeResult(w, r, http.StatusBadRequest, Result{Error: MsgInvalidBody})
		return
	}
	if req.UserID != "" && req.UserID != callerID.String() {
		log.Warn("ignoring user_id from request body",
			slog.String("caller_id", callerID.String()),
			slog.String("body_user_id", req.UserID),
		)
	}

	res, err := h.service.ProcessPayment(r.Context(), callerID, packageID)
	if err != nil {
		status, msg := mapError(err)
		writeResult(w, r, status, Result{Error: msg})
		return
	}

	log.Info("payment processed",
		slog.String("transaction_id", res.TransactionID),
		slog.String("outcome", string(res.Outcome)),
	)
	writeResult(w, r, http.StatusOK, Result{
		Success:       true,
		Message:       MsgSuccess,
		TransactionID: res.TransactionID,
		Outcome:       string(res.Outcome),
		Warnings:      res.Warnings,
	})
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, payment.ErrUnauthorized):
		return http.StatusUnauthorized, MsgUnauthorized
	case errors.Is(err, payment.ErrPackageNotFound):
		return http.StatusNotFound, MsgPackageNotFound
	case errors.Is(err, payment.ErrEntitlementWriteFailed):
		return http.StatusInternalServerError, MsgPaymentFailed
	default:
		return http.StatusInternalServerError, MsgUnexpected
	}
}

func writeResult(w http.ResponseWriter, r *http.Request, status int, res Result) {
	render.Status(r, status)
	render.JSON(w, r, res)
}
