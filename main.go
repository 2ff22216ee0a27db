package main

import (
	"context"
	"encoding/json"
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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/s1natex/taskboard/internal/apiclient"
	"github.com/s1natex/taskboard/internal/board"
	"github.com/s1natex/taskboard/internal/config"
	"github.com/s1natex/taskboard/internal/middleware"
	"github.com/s1natex/taskboard/internal/tasks"
	"github.com/s1natex/taskboard/internal/telemetry"
	"github.com/s1natex/taskboard/internal/web"
)

func main() {
	cfg, err := config.Load("taskboard", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: open log file: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()
		out = f
	}
	logger := newLogger(out, cfg.LogLevel)
	slog.SetDefault(logger) // for third-party packages that use slog

	if err := run(cfg, logger); err != nil {
		logger.Error("server_error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Exporter: cfg.Tracing.Exporter,
		Endpoint: cfg.Tracing.Endpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	repo, closeRepo, err := openRepo(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeRepo()

	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}
	b := board.New(client, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, repo, b, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server_listen",
			slog.String("addr", cfg.Addr),
			slog.String("api", cfg.APIBaseURL()),
			slog.Bool("sqlite", cfg.DBPath != ""),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// openRepo opens SQLite when path is set, otherwise an in-memory store.
func openRepo(ctx context.Context, path string) (tasks.Repository, func(), error) {
	if path == "" {
		return tasks.NewInMemoryRepo(), func() {}, nil
	}
	dsn, err := tasks.SQLiteFileDSN(path)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite dsn: %w", err)
	}
	repo, err := tasks.NewSQLiteRepo(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := repo.ApplyMigrations(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return repo, func() { _ = repo.Close() }, nil
}

func newAPIClient(cfg config.Config, logger *slog.Logger) (*apiclient.Client, error) {
	opts := []apiclient.Option{
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		apiclient.WithLogger(logger),
	}
	switch cfg.AuthMode() {
	case middleware.AuthAPIKey:
		opts = append(opts, apiclient.WithAPIKey(cfg.Auth.APIKey))
	case middleware.AuthBearer:
		opts = append(opts, apiclient.WithBearerToken(cfg.Auth.BearerToken))
	}
	return apiclient.New(cfg.APIBaseURL(), opts...)
}

// newRouter wires health, metrics, the task API under /api and the board
// pages at the root.
func newRouter(cfg config.Config, repo tasks.Repository, b *board.Board, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// RequestID first so downstream can include it.
	r.Use(chimw.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "Traceparent"},
			ExposedHeaders:   []string{"X-Request-ID", "Trace-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Use(middleware.RateLimit(middleware.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
		r.Use(middleware.Auth(middleware.AuthConfig{
			Mode:        cfg.AuthMode(),
			APIKey:      cfg.Auth.APIKey,
			BearerToken: cfg.Auth.BearerToken,
		}))
		tasks.RegisterRoutes(r, repo)
	})

	web.NewServer(b, logger).RegisterRoutes(r)
	return r
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: config.ParseLogLevel(level)}))
}
