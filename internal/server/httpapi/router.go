// Package httpapi is the JSON HTTP surface: auth flows, user
// administration and journal entries.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/dmitrijs2005/dailyjournal/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	FederatedResultJSON     = "json"
	FederatedResultRedirect = "redirect"
)

// Options carries the collaborators of the router. Auth, Users, Entries
// and Guard are required.
type Options struct {
	Auth    *services.AuthService
	Users   *services.UserService
	Entries *services.EntryService
	Guard   *auth.Guard
	Log     logging.Logger

	// FederatedResult selects how a successful federated callback answers:
	// a JSON body (default) or a redirect to ClientRedirectURL.
	FederatedResult   string
	ClientRedirectURL string

	CORSAllowedOrigins []string
}

type Handler struct {
	auth    *services.AuthService
	users   *services.UserService
	entries *services.EntryService
	guard   *auth.Guard
	log     logging.Logger

	federatedResult   string
	clientRedirectURL string
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", common.AuthorizationHeaderName},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}
}

// NewRouter assembles the chi router with shared middleware and all routes.
func NewRouter(opts Options) chi.Router {
	log := opts.Log
	if log == nil {
		log = logging.Nop{}
	}
	h := &Handler{
		auth:              opts.Auth,
		users:             opts.Users,
		entries:           opts.Entries,
		guard:             opts.Guard,
		log:               log.With("module", "http"),
		federatedResult:   opts.FederatedResult,
		clientRedirectURL: opts.ClientRedirectURL,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(opts.CORSAllowedOrigins)))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)
		r.Get("/federated", h.federatedLogin)
		r.Get("/federated/callback", h.federatedCallback)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Post("/logout", h.logout)
			r.Get("/me", h.whoami)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.authenticate)
		r.With(h.requireRole(common.RoleAdmin)).Get("/", h.listUsers)
		r.With(h.requireRole(common.RoleAdmin)).Post("/", h.createUser)
		r.Get("/{id}", h.getUser)
		r.Put("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})

	r.Route("/journal", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Get("/", h.listEntries)
		r.Post("/", h.createEntry)
		r.Get("/{id}", h.getEntry)
		r.Put("/{id}", h.updateEntry)
		r.Delete("/{id}", h.deleteEntry)
	})

	return r
}

// principal returns the caller set by authenticate.
func principal(r *http.Request) *models.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}
