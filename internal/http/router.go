package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/anisurarzu/goBeyondServer/internal/auth"
	"github.com/anisurarzu/goBeyondServer/internal/config"
	"github.com/anisurarzu/goBeyondServer/internal/httputil"
	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/mentor"
	"github.com/anisurarzu/goBeyondServer/internal/profile"
)

// Handlers bundles the per-domain HTTP handlers the router wires up.
type Handlers struct {
	Auth    *auth.Handler
	Profile *profile.Handler
	Mentor  *mentor.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	// Auth routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/google", h.Auth.GoogleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Post("/change-password", h.Auth.ChangePassword)
		})
	})

	// Profile routes (all protected)
	r.Route("/profile", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", h.Profile.Get)
		r.Patch("/", h.Profile.Update)
		r.Delete("/image", h.Profile.DeleteImage)
	})

	// Mentor routes: reads and signup are public, mutation is protected
	r.Route("/mentors", func(r chi.Router) {
		r.Get("/", h.Mentor.List)
		r.Post("/signup", h.Mentor.Signup)
		r.Get("/user/{userID}", h.Mentor.GetByUserID)
		r.Get("/{id}", h.Mentor.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Post("/", h.Mentor.Create)
			r.Delete("/image", h.Mentor.DeleteImage)
			r.Patch("/{id}", h.Mentor.Update)
			r.Delete("/{id}", h.Mentor.Delete)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
