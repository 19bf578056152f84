package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-cgpa/internal/auth/middleware"
	"github.com/mind-engage/mindengage-cgpa/internal/converter"
	"github.com/mind-engage/mindengage-cgpa/internal/rbac"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

type Deps struct {
	Converter        *converter.Service
	DefaultDirection scale.Direction
	Limiter          *RateLimiter // nil: unlimited

	// History, Auth and Admin are only used when History is set.
	History HistoryStore
	Auth    *authmw.AuthService
	Admin   authmw.Admin
}

// Mount registers the API on r. Global middleware (logging, CORS, timeouts)
// is the caller's business.
func Mount(r chi.Router, d Deps) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Get("/policies", ListPoliciesHandler())
	r.Get("/policies/{institution}", GetPolicyHandler())
	r.Get("/bands/{direction}", BandsHandler())

	r.With(d.Limiter.Middleware).
		Post("/convert", ConvertHandler(d.Converter, d.DefaultDirection))

	if d.History == nil || d.Auth == nil {
		return
	}

	r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Admin))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("tokens:issue")).
			Post("/auth/tokens", authmw.IssueTokenHandler(d.Auth))
		pr.With(rbac.Require("history:view")).
			Get("/history", ListHistoryHandler(d.History))
		pr.With(rbac.Require("history:purge")).
			Delete("/history", PurgeHistoryHandler(d.History))
	})
}
