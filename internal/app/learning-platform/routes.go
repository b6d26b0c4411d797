// Package learningplatform assembles the HTTP API of the platform.
package learningplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/access/status"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/catalog/questioncreate"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/catalog/questionlist"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/catalog/quizcreate"
	catalogremove "github.com/magabrotheeeer/learning-platform/internal/http/handlers/catalog/remove"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/catalog/subjectcreate"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/catalog/videocreate"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/packages/assign"
	packagecreate "github.com/magabrotheeeer/learning-platform/internal/http/handlers/packages/create"
	packagelist "github.com/magabrotheeeer/learning-platform/internal/http/handlers/packages/list"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/packages/listall"
	packageread "github.com/magabrotheeeer/learning-platform/internal/http/handlers/packages/read"
	packageremove "github.com/magabrotheeeer/learning-platform/internal/http/handlers/packages/remove"
	packageupdate "github.com/magabrotheeeer/learning-platform/internal/http/handlers/packages/update"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/payment/checkout"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/payment/history"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/quiz/grade"
	quizread "github.com/magabrotheeeer/learning-platform/internal/http/handlers/quiz/read"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/quiz/results"
	subjectlist "github.com/magabrotheeeer/learning-platform/internal/http/handlers/subjects/list"
	subjectread "github.com/magabrotheeeer/learning-platform/internal/http/handlers/subjects/read"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/wallet/dashboard"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/wallet/overview"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/wallet/students"
	"github.com/magabrotheeeer/learning-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/learning-platform/internal/metrics"
	"github.com/magabrotheeeer/learning-platform/internal/services/access"
	"github.com/magabrotheeeer/learning-platform/internal/services/catalog"
	"github.com/magabrotheeeer/learning-platform/internal/services/packages"
	"github.com/magabrotheeeer/learning-platform/internal/services/payment"
	"github.com/magabrotheeeer/learning-platform/internal/services/quiz"
	"github.com/magabrotheeeer/learning-platform/internal/services/wallet"
)

// Services are the dependencies the routes dispatch to.
type Services struct {
	Tokens   middlewarectx.TokenParser
	Access   *access.Service
	Payment  *payment.Service
	Quiz     *quiz.Service
	Packages *packages.Service
	Catalog  *catalog.Service
	Wallet   *wallet.Service
	Metrics  *metrics.Metrics
	Limiter  *middlewarectx.Limiter
	Health   map[string]health.Pinger
}

// RegisterRoutes mounts every endpoint on r.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware(s.Metrics),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// public pricing page
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(s.Limiter, logger))
			r.Get("/packages", packagelist.New(logger, s.Packages).ServeHTTP)
			r.Get("/packages/{id}", packageread.New(logger, s.Packages).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))
			r.Use(middlewarectx.RateLimitMiddleware(s.Limiter, logger))

			r.Get("/access", status.New(logger, s.Access).ServeHTTP)
			r.Post("/packages/{id}/checkout", checkout.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments", history.New(logger, s.Payment).ServeHTTP)
			r.Get("/subjects", subjectlist.New(logger, s.Catalog).ServeHTTP)
			r.Get("/results", results.New(logger, s.Quiz).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.ContentAccessMiddleware(s.Access, s.Metrics, logger))
				r.Get("/subjects/{id}", subjectread.New(logger, s.Catalog).ServeHTTP)
				r.Get("/quizzes/{id}", quizread.New(logger, s.Quiz).ServeHTTP)
				r.Post("/quiz/grade", grade.New(logger, s.Quiz).ServeHTTP)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(s.Access, logger))

				r.Get("/packages", listall.New(logger, s.Packages).ServeHTTP)
				r.Post("/packages", packagecreate.New(logger, s.Packages).ServeHTTP)
				r.Put("/packages/{id}", packageupdate.New(logger, s.Packages).ServeHTTP)
				r.Delete("/packages/{id}", packageremove.New(logger, s.Packages).ServeHTTP)
				r.Post("/users/{id}/packages", assign.New(logger, s.Packages).ServeHTTP)

				r.Post("/subjects", subjectcreate.New(logger, s.Catalog).ServeHTTP)
				r.Delete("/subjects/{id}", catalogremove.New(logger, "subject", s.Catalog.DeleteSubject).ServeHTTP)
				r.Post("/subjects/{id}/videos", videocreate.New(logger, s.Catalog).ServeHTTP)
				r.Delete("/videos/{id}", catalogremove.New(logger, "video", s.Catalog.DeleteVideo).ServeHTTP)
				r.Post("/subjects/{id}/quizzes", quizcreate.New(logger, s.Catalog).ServeHTTP)
				r.Delete("/quizzes/{id}", catalogremove.New(logger, "quiz", s.Catalog.DeleteQuiz).ServeHTTP)
				r.Get("/quizzes/{id}/questions", questionlist.New(logger, s.Catalog).ServeHTTP)
				r.Post("/quizzes/{id}/questions", questioncreate.New(logger, s.Catalog).ServeHTTP)
				r.Delete("/questions/{id}", catalogremove.New(logger, "question", s.Catalog.DeleteQuestion).ServeHTTP)

				r.Get("/wallet", overview.New(logger, s.Wallet).ServeHTTP)
				r.Get("/dashboard", dashboard.New(logger, s.Wallet).ServeHTTP)
				r.Get("/students", students.New(logger, s.Wallet).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", s.Metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
