package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/postdrop/postdrop-be/internal/api/handlers"
	"github.com/postdrop/postdrop-be/internal/auth"
	"github.com/postdrop/postdrop-be/internal/services"
	"github.com/postdrop/postdrop-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(hub *websocket.Hub, userService services.UserServiceProvider, postService services.PostServiceProvider, eventService services.EventServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", userHandler.Signup)
		r.Post("/auth/login", userHandler.Login)

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())

			r.Get("/auth/me", userHandler.GetMe)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", postHandler.List)
				r.Post("/", postHandler.Create)
				r.Delete("/{id}", postHandler.Delete)
			})

			r.Get("/events", eventHandler.GetRecent)

			// Live activity stream
			r.Get("/ws", wsHandler.Serve)
		})
	})

	return r
}
