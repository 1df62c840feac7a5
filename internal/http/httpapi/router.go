package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kira/internal/http/handlers"
	"kira/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	cfg := app.Config
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP(cfg.TrustedProxies),
		middleware.RequestID,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSOrigins),
		middleware.I18N(cfg.DefaultLocale, app.CountryLookup),
	)

	// Rate limiting only applies to routes that reach the store or the
	// text generator.
	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitPerMin > 0 {
		limiter := app.Limiter
		if limiter == nil {
			limiter = middleware.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
		}
		limit = middleware.RateLimit(limiter, app.Logger)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/auth", func(r chi.Router) {
			r.Use(limit)
			r.Post("/signup", app.Signup)
			r.Post("/signin", app.Signin)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.AuthJWT(app.JWTSecret))
			r.Get("/", app.Me)
			r.Patch("/settings", app.UpdateSettings)
			r.Get("/trial-status", app.TrialStatus)
			r.Get("/reports", app.ListReports)
			r.Get("/insights", app.ListInsights)
			r.With(limit).Post("/reports/today", app.GenerateTodayReport)
			r.With(limit).Post("/insights", app.GenerateInsight)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuthJWT(app.JWTSecret), limit)
			r.Post("/reports", app.GenerateReport)
			r.Post("/reports/general", app.GenerateGeneralReport)
		})

		r.With(limit).Post("/compatibility", app.Compatibility)
		r.With(middleware.CronSecret(cfg.CronSecret)).Post("/cron/daily-reports", app.CronDailyReports)
	})

	return r
}
