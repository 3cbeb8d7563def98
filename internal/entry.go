// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/wunjo/internal/api"
	"github.com/starford/wunjo/internal/auth"
	"github.com/starford/wunjo/internal/dataview"
	"github.com/starford/wunjo/internal/fileservice"
	"github.com/starford/wunjo/internal/kanban"
	"github.com/starford/wunjo/internal/mcpserver"
	"github.com/starford/wunjo/internal/pdf"
	"github.com/starford/wunjo/internal/render"
	"github.com/starford/wunjo/internal/search"
	"github.com/starford/wunjo/internal/sse"
	"github.com/starford/wunjo/internal/storage"
	"github.com/starford/wunjo/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// User store and token issuer, only in jwt mode.
	deps := api.Deps{}
	if cfg.Auth.AuthEnabled() {
		users, err := auth.Open(cfg.Auth.UsersDB)
		if err != nil {
			return fmt.Errorf("init user store: %w", err)
		}
		defer users.Close()

		issuer := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL())
		deps.Auth = users
		deps.Issuer = issuer
		deps.Verifier = issuer
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	renderer := render.New(cfg.Markdown.Extensions)

	deps.Files = fileservice.NewService(store)
	deps.Kanban = kanban.NewStore(store)
	deps.Dataview = dataview.NewEngine(store)
	deps.Search = search.NewSearcher(store)
	deps.Renderer = renderer
	deps.Exporter = pdf.NewExporter(store, renderer, pdf.NewWKHTMLToPDF(cfg.PDF.Binary))
	deps.SSE = broker

	apiRouter := api.NewRouter(deps)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		if err := watch.Watch(gCtx, cfg.Vault.Path, logger, broker.PublishFileEvent); err != nil {
			logger.Warn("file watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server over the configured vault.
func RunMCP(opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	store, err := storage.NewFS(app.config.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	return mcpserver.New(store).ServeStdio()
}
