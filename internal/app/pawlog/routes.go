// Package pawlog собирает HTTP-сервис дневника: хранилища, сервисы, маршруты
// и потребителя событий подписки.
package pawlog

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/pawlog/internal/http/handlers/diary/mealcreate"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/diary/mealsummary"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/diary/weightcreate"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/diary/weightexport"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/diary/weightlist"
	entitlementget "github.com/magabrotheeeer/pawlog/internal/http/handlers/entitlement/get"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/entitlement/refresh"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/features/decide"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/health"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/onboarding/complete"
	onboardingget "github.com/magabrotheeeer/pawlog/internal/http/handlers/onboarding/get"
	petcreate "github.com/magabrotheeeer/pawlog/internal/http/handlers/pets/create"
	petlist "github.com/magabrotheeeer/pawlog/internal/http/handlers/pets/list"
	profileupdate "github.com/magabrotheeeer/pawlog/internal/http/handlers/profile/update"
	roleget "github.com/magabrotheeeer/pawlog/internal/http/handlers/role/get"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/session/bootstrap"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/session/signout"
	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/services/diary"
	"github.com/magabrotheeeer/pawlog/internal/services/entitlement"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
	"github.com/magabrotheeeer/pawlog/internal/services/onboarding"
	"github.com/magabrotheeeer/pawlog/internal/services/pets"
	"github.com/magabrotheeeer/pawlog/internal/services/role"
	"github.com/magabrotheeeer/pawlog/internal/services/session"
)

// Services зависимости маршрутов.
type Services struct {
	Tokens       middlewarectx.TokenParser
	Limiter      *middlewarectx.RateLimiter
	Session      *session.Service
	Entitlements *entitlement.Service
	Gate         *featuregate.Gate
	Onboarding   *onboarding.Service
	Roles        *role.Resolver
	Pets         *pets.Service
	Diary        *diary.Service
	Health       map[string]health.Checker
	Gatherer     prometheus.Gatherer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))
		r.Use(s.Limiter.Middleware)

		r.Get("/session", bootstrap.New(logger, s.Session).ServeHTTP)
		r.Post("/session/signout", signout.New(logger, s.Session).ServeHTTP)

		r.Get("/entitlement", entitlementget.New(logger, s.Entitlements).ServeHTTP)
		r.Post("/entitlement/refresh", refresh.New(logger, s.Entitlements).ServeHTTP)

		r.Get("/features/{id}", decide.New(logger, s.Gate).ServeHTTP)

		r.Get("/onboarding", onboardingget.New(logger, s.Onboarding).ServeHTTP)
		r.Post("/onboarding/complete", complete.New(logger, s.Onboarding).ServeHTTP)
		r.Put("/profile", profileupdate.New(logger, s.Onboarding).ServeHTTP)

		r.Get("/role", roleget.New(logger, s.Roles).ServeHTTP)

		r.Post("/pets", petcreate.New(logger, s.Pets).ServeHTTP)
		r.Get("/pets", petlist.New(logger, s.Pets).ServeHTTP)
		r.Post("/pets/{id}/meals", mealcreate.New(logger, s.Diary).ServeHTTP)
		r.Get("/pets/{id}/meals/summary", mealsummary.New(logger, s.Diary).ServeHTTP)
		r.Post("/pets/{id}/weights", weightcreate.New(logger, s.Diary).ServeHTTP)
		r.Get("/pets/{id}/weights", weightlist.New(logger, s.Diary).ServeHTTP)
		r.With(middlewarectx.RequireFeature(logger, s.Gate, featuregate.PDFExport)).
			Get("/pets/{id}/weights/export", weightexport.New(logger, s.Diary).ServeHTTP)
	})
}
