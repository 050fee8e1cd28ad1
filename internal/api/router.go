package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/qr-code-website/internal/api/handlers"
	"github.com/dom/qr-code-website/internal/api/middleware"
	"github.com/dom/qr-code-website/internal/config"
	"github.com/dom/qr-code-website/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(services *service.Services, cfg *config.Config, log *slog.Logger, checks map[string]handlers.Check) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	errs := handlers.NewErrorMapper(log)
	cookies := &middleware.SessionCookie{
		Name:     cfg.SessionCookieName,
		Domain:   cfg.SessionCookieDomain,
		Secure:   cfg.SessionCookieSecure,
		SameSite: cfg.SameSite(),
	}
	session := middleware.Session(services.Session, cookies, errs)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Session, cookies)
	profileHandler := handlers.NewProfileHandler(services.Auth)
	qrHandler := handlers.NewQRCodeHandler(services.QRCode, cfg.AutoSaveRendered)
	healthHandler := handlers.NewHealthHandler(checks, log)

	// Probes and metrics stay outside the request timeout
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))

		// Public auth routes
		r.Post("/register", errs.Handle(authHandler.Register))
		r.Post("/login", errs.Handle(authHandler.Login))

		// Rendering works anonymously; a session only enables auto-save
		r.With(session).Post("/generate-qr", errs.Handle(qrHandler.Generate))

		r.Route("/user", func(r chi.Router) {
			r.Use(session)

			r.Post("/logout", errs.Handle(authHandler.Logout))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(errs))

				r.Get("/profile", errs.Handle(profileHandler.GetProfile))
				r.Get("/qr-codes", errs.Handle(qrHandler.List))
				r.Post("/save-qr", errs.Handle(qrHandler.Save))
				r.Delete("/delete-qr/{id}", errs.Handle(qrHandler.Delete))
			})
		})
	})

	return r
}
