package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"carechat-backend/internal/config"
	"carechat-backend/internal/handlers"
)

// RouterDependencies holds everything the router setup needs.
type RouterDependencies struct {
	ChatHandler *handlers.ChatHandlers
	Config      *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// The gateway call can take a while; keep the request timeout above the
	// configured completion timeout so the gateway error wins.
	r.Use(middleware.Timeout(deps.Config.GatewayTimeout + 30*time.Second))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/", handlers.HandleIndex)
	r.Get("/get_history", deps.ChatHandler.HandleGetHistory)
	r.Post("/chat", deps.ChatHandler.HandleChat)

	return r
}
