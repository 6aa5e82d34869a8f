package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tillworks/pos/internal/application"
	"github.com/tillworks/pos/internal/domain"
)

// Handler is the HTTP adapter entrypoint for the auth and session
// use-cases. Keeping only the application dependency here preserves clean
// adapter boundaries.
type Handler struct {
	service       *application.Service
	secureCookies bool
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

// NewRouter registers routes and the middleware stack. Server-rendered
// paths use redirect-mode guards; /api and /auth surfaces use JSON-mode
// guards, so both denial styles stay available per route group.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(sessionMiddleware)

	auth := handler.service

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Get(loginPath, handler.loginPage)
	r.Group(func(r chi.Router) {
		r.Use(guardMiddleware(auth, denyRedirect))
		r.Get(landingPath, handler.dashboard)
	})

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/totp/verify", handler.totpVerify)
		r.Post("/logout", handler.logout)

		r.Group(func(r chi.Router) {
			r.Use(guardMiddleware(auth, denyJSON))
			r.Get("/me", handler.me)
			r.Post("/password", handler.changePassword)
			r.Post("/totp/setup", handler.totpSetup)
			r.Post("/totp/confirm", handler.totpConfirm)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(guardMiddleware(auth, denyJSON, domain.RoleManager, domain.RoleOwner))
			r.Get("/audit", handler.listAudit)
		})
		r.Group(func(r chi.Router) {
			r.Use(guardMiddleware(auth, denyJSON, domain.RoleOwner))
			r.Post("/users/{user_id}/deactivate", handler.deactivateUser)
		})
	})

	return r
}
