package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/http/response"
)

// AccessChecker answers the access questions. Both methods fail closed.
type AccessChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
	CanAccessContent(ctx context.Context, userID uuid.UUID) bool
}

// DenialRecorder counts rejected content requests.
type DenialRecorder interface {
	AccessDenied()
}

// AdminOnly lets through callers whose profile has the admin role.
func AdminOnly(checker AccessChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminOnly"
			userID, ok := UserIDFrom(r.Context())
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}
			if !checker.IsAdmin(r.Context(), userID) {
				log.Info("admin access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("user_id", userID.String()),
				)
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContentAccessMiddleware lets through admins and callers with a current
// entitlement. Everyone else gets 403.
func ContentAccessMiddleware(checker AccessChecker, metrics DenialRecorder, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.ContentAccessMiddleware"
			userID, ok := UserIDFrom(r.Context())
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}
			if !checker.CanAccessContent(r.Context(), userID) {
				log.Info("content access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("user_id", userID.String()),
				)
				if metrics != nil {
					metrics.AccessDenied()
				}
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("active package required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
