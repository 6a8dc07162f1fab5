package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/postgate/internal/api/handlers"
	"github.com/isdelr/postgate/internal/auth"
	"github.com/isdelr/postgate/internal/logger"
	"github.com/isdelr/postgate/internal/services"
)

// Deps groups what the router needs to build its handlers.
type Deps struct {
	Gateway        *auth.Gateway
	Users          services.UserServiceProvider
	Posts          services.PostServiceProvider
	DB             handlers.Pinger
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(d.Users)
	postHandler := handlers.NewPostHandler(d.Posts)
	healthHandler := handlers.NewHealthHandler(d.DB)

	gw := d.Gateway

	r.Get("/healthz", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(gw.Require(auth.ActionRegister, nil)).Post("/register", userHandler.Register)
			r.With(gw.Require(auth.ActionLogin, nil)).Post("/login", userHandler.Login)
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(gw.Require(auth.ActionListPosts, nil)).Get("/", postHandler.List)
			r.With(gw.Require(auth.ActionCreatePost, nil)).Post("/", postHandler.Create)
			r.With(gw.Require(auth.ActionReadPost, nil)).Get("/by-slug/{slug}", postHandler.GetBySlug)
			r.Route("/{id}", func(r chi.Router) {
				r.With(gw.Require(auth.ActionReadPost, nil)).Get("/", postHandler.Get)
				r.With(gw.Require(auth.ActionUpdatePost, nil)).Patch("/", postHandler.Update)
				r.With(gw.Require(auth.ActionDeletePost, postHandler.Owner)).Delete("/", postHandler.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(gw.Require(auth.ActionListUsers, nil)).Get("/", userHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.With(gw.Require(auth.ActionReadUser, nil)).Get("/", userHandler.Get)
				r.With(gw.Require(auth.ActionUpdateUser, nil)).Patch("/", userHandler.Update)
				r.With(gw.Require(auth.ActionDeleteUser, nil)).Delete("/", userHandler.Delete)
			})
		})
	})

	return r
}
