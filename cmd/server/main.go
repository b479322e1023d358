package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"carechat-backend/internal/api"
	"carechat-backend/internal/config"
	"carechat-backend/internal/handlers"
	"carechat-backend/internal/llm"
	"carechat-backend/internal/llm/gemini"
	"carechat-backend/internal/llm/openai"
	"carechat-backend/internal/prompt"
	"carechat-backend/internal/services"
	"carechat-backend/internal/store"
	"carechat-backend/internal/store/postgres"
	"carechat-backend/internal/store/sqlite"
)

func main() {
	log.Println("Starting CareChat Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize History Store
	historyStore := openStore(cfg)
	defer historyStore.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer migrateCancel()
	if err := historyStore.Migrate(migrateCtx); err != nil {
		log.Fatalf("FATAL: Failed to migrate history store: %v", err)
	}
	log.Printf("History store initialized (driver=%s).", cfg.DBDriver)

	// 3. Initialize Completion Gateway
	gateway := openGateway(cfg)
	log.Printf("Completion gateway initialized (provider=%s).", cfg.Provider)

	// 4. Initialize Service and Handlers
	chatService := services.NewChatService(historyStore, gateway, prompt.WindowFor(cfg.HistoryWindow))
	chatHandler := handlers.NewChatHandlers(chatService)
	log.Println("ChatService and handlers initialized.")

	// 5. Setup Router
	router := api.NewRouter(api.RouterDependencies{
		ChatHandler: chatHandler,
		Config:      cfg,
	})
	log.Println("HTTP router configured.")

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks.
		// WriteTimeout must outlast the gateway call.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.GatewayTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}

// openStore connects the configured history store backend.
func openStore(cfg *config.Config) store.Store {
	switch cfg.DBDriver {
	case "postgres":
		dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dbCancel()

		dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
		}
		if err := dbpool.Ping(dbCtx); err != nil {
			log.Fatalf("FATAL: Unable to ping database: %v\n", err)
		}
		log.Println("Database connection pool established and pinged successfully.")
		return postgres.NewPostgresStore(dbpool)
	default:
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("FATAL: Unable to open sqlite database: %v\n", err)
		}
		return st
	}
}

// openGateway builds the configured completion gateway client.
func openGateway(cfg *config.Config) llm.Client {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
			Timeout: cfg.GatewayTimeout,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to create OpenAI client: %v", err)
		}
		return client
	default:
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.Model,
			Timeout: cfg.GatewayTimeout,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
		}
		return client
	}
}
