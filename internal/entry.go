// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/shujia/internal/api"
	"github.com/starford/shujia/internal/inbox"
	"github.com/starford/shujia/internal/library"
	"github.com/starford/shujia/internal/libraryservice"
	"github.com/starford/shujia/internal/mcpserver"
	"github.com/starford/shujia/internal/media"
	"github.com/starford/shujia/internal/sse"
	"github.com/starford/shujia/internal/storage"
)

// services is the wired domain layer shared by the HTTP and MCP front ends.
type services struct {
	db      *library.DB
	uploads *storage.FS
	library *libraryservice.Service
	media   *media.Service
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// openServices creates the upload directory, opens the SQLite library and
// builds the services on top of them. The caller closes db.
func openServices(cfg *Config) (*services, error) {
	if err := os.MkdirAll(cfg.Library.UploadPath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	uploads, err := storage.NewFS(cfg.Library.UploadPath)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	db, err := library.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init library: %w", err)
	}

	return &services{
		db:      db,
		uploads: uploads,
		library: libraryservice.NewService(db, cfg.Library.MaxImportBytes),
		media:   media.NewService(uploads, db, cfg.Library.MaxImageBytes),
	}, nil
}

// openInbox creates the inbox directory and its storage, or returns nil
// when no inbox is configured.
func openInbox(cfg *Config) (*storage.FS, error) {
	if cfg.Library.InboxPath == "" {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Library.InboxPath, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Library.InboxPath)
	if err != nil {
		return nil, fmt.Errorf("init inbox storage: %w", err)
	}
	return store, nil
}

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
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("upload_path", cfg.Library.UploadPath),
		slog.String("inbox_path", cfg.Library.InboxPath),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.db.Close()

	inboxStore, err := openInbox(cfg)
	if err != nil {
		return err
	}

	// SSE broker receives every library mutation, including inbox imports.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	svc.library.OnEvent(broker.PublishNovelEvent)

	if inboxStore != nil {
		n, syncErr := inbox.Sync(ctx, svc.library, inboxStore, logger)
		if syncErr != nil {
			logger.Warn("initial inbox sync failed", slog.String("error", syncErr.Error()))
		} else {
			logger.Info("Inbox synced", slog.Int("imported", n))
		}
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.CORS(cfg.CORS.AllowedOrigins))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := svc.db.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Library API under /api, SSE included.
	r.Mount("/api", api.NewRouter(svc.library, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	// Upload and article routes at the root.
	api.RegisterUploadRoutes(r, svc.media, cfg.Library.UploadPath)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the inbox; imports publish through the service callback.
	if inboxStore != nil {
		g.Go(func() error {
			return inbox.Watch(gCtx, svc.library, inboxStore, inboxStore.Root(), inbox.DefaultDebounce, logger)
		})
	}

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
		defer signal.Stop(quit)

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

		// Stop the inbox watcher with the server.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the library over MCP on stdin/stdout until the client
// disconnects. Logs go to stderr since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.db.Close()

	logger.Info("MCP server starting", slog.String("sqlite_path", cfg.SQLite.Path))
	return mcpserver.New(svc.library, svc.media).ServeStdio()
}
