package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/talx-hub/gopher-users/internal/api/middlewares"
	"github.com/talx-hub/gopher-users/internal/api/response"
	"github.com/talx-hub/gopher-users/internal/service/config"
)

const contentTypeForm = "application/x-www-form-urlencoded"

type CustomRouter struct {
	router *chi.Mux
	logger *slog.Logger
	cfg    *config.Config
}

func New(cfg *config.Config, log *slog.Logger) *CustomRouter {
	router := &CustomRouter{
		router: chi.NewRouter(),
		logger: log,
		cfg:    cfg,
	}

	return router
}

type AuthHandler interface {
	AccessToken(w http.ResponseWriter, r *http.Request)
	RecoverPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	CreateUser(w http.ResponseWriter, r *http.Request)
	CreateUserOpen(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	ReadMe(w http.ResponseWriter, r *http.Request)
	ReadUser(w http.ResponseWriter, r *http.Request)
	UpdateMe(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	AuthHandler
	UserHandler
	HealthHandler
}

// SetRouter mounts the API under cfg.APIV1Str. users resolves the owner of
// a bearer token.
func (cr *CustomRouter) SetRouter(h Handler, users middlewares.UserFinder) {
	cr.router.Use(
		middleware.RequestID,
		middlewares.RequestLogger(cr.logger),
		middleware.Recoverer,
	)
	if len(cr.cfg.CORSOrigins) != 0 {
		cr.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: cr.cfg.CORSOrigins,
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}))
	}

	jsonBody := middleware.AllowContentType(response.ContentTypeJSON)
	authenticated := chi.Chain(
		middlewares.Authentication([]byte(cr.cfg.SecretKey), cr.logger),
		middlewares.ActiveUser(users),
	)

	cr.router.Route(cr.cfg.APIV1Str, func(r chi.Router) {
		r.With(middleware.AllowContentType(contentTypeForm)).
			Post("/login/access-token", h.AccessToken)
		r.Post("/password-recovery/{email}", h.RecoverPassword)
		r.With(jsonBody).Post("/reset-password", h.ResetPassword)

		r.Route("/users", func(r chi.Router) {
			r.With(jsonBody).Post("/open", h.CreateUserOpen)

			r.Group(func(r chi.Router) {
				r.Use(authenticated...)
				r.Get("/me", h.ReadMe)
				r.With(jsonBody).Put("/me", h.UpdateMe)
				r.Get("/{id}", h.ReadUser)

				r.Group(func(r chi.Router) {
					r.Use(middlewares.Superuser)
					r.Get("/", h.ListUsers)
					r.With(jsonBody).Post("/", h.CreateUser)
					r.With(jsonBody).Put("/{id}", h.UpdateUser)
					r.Delete("/{id}", h.DeleteUser)
				})
			})
		})
	})
	cr.router.Get("/ping", h.Ping)

	cr.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(r.Context(), w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(r.Context(), w, http.StatusMethodNotAllowed,
			http.StatusText(http.StatusMethodNotAllowed))
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}
