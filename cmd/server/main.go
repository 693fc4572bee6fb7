// ReadAI Assistant relay server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bensooter/readai/internal/api"
	"github.com/bensooter/readai/internal/assistant"
	"github.com/bensooter/readai/internal/config"
	"github.com/bensooter/readai/internal/middleware"
	"github.com/bensooter/readai/internal/relay"
	"github.com/bensooter/readai/internal/store"
	"github.com/bensooter/readai/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "session_store", cfg.SessionStore)

	// Initialize dependencies.
	sessions, err := newSessionStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	client := assistant.New(cfg.APIKey, assistant.WithBaseURL(cfg.BaseURL))

	coordinator := relay.New(sessions, client, cfg.AssistantID, relay.Options{
		PollInterval: cfg.RunPollInterval,
		RunTimeout:   cfg.RunTimeout,
	})

	// Initialize handlers.
	chatHandler := api.NewChatHandler(api.NewHandler(coordinator))

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	chatHandler.RegisterRoutes(r)

	// Serve the embedded browser chat client.
	r.Handle("/*", web.StaticHandler())

	// Message requests block while a run is polled, so writes carry no
	// timeout; the poll loop enforces its own deadline.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// newSessionStore builds the configured persistence backend.
func newSessionStore(cfg *config.Config) (store.SessionStore, error) {
	switch cfg.SessionStore {
	case config.StoreSQLite:
		s, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(context.Background()); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.NewFileStore(cfg.ThreadsFile)
	}
}
