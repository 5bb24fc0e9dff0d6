package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fennlabs/fennlingo/internal/chat"
	"github.com/fennlabs/fennlingo/internal/classify"
	"github.com/fennlabs/fennlingo/internal/content"
	"github.com/fennlabs/fennlingo/internal/dialogue"
	"github.com/fennlabs/fennlingo/internal/platform/cache"
	"github.com/fennlabs/fennlingo/internal/platform/config"
	"github.com/fennlabs/fennlingo/internal/platform/database"
	"github.com/fennlabs/fennlingo/internal/progress"
	"github.com/fennlabs/fennlingo/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	catalog, err := content.NewCatalog(cfg.ContentPath)
	if err != nil {
		slog.Error("failed to load content catalog", "path", cfg.ContentPath, "error", err)
		os.Exit(1)
	}

	var checks []func(context.Context) error

	var progressStore dialogue.ProgressStore
	var correctionLog dialogue.CorrectionLog
	if cfg.Database.URL != "" {
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		checks = append(checks, db.HealthCheck)

		pg, err := progress.NewPostgres(ctx, db.Pool)
		if err != nil {
			slog.Error("failed to initialize progress store", "error", err)
			os.Exit(1)
		}
		progressStore, correctionLog = pg, pg
		slog.Info("progress store ready", "backend", "postgres")
	} else {
		mem := progress.NewMemory()
		progressStore, correctionLog = mem, mem
		slog.Info("progress store ready", "backend", "memory")
	}

	var sessions session.Store
	if cfg.Cache.URL != "" {
		c, err := cache.Connect(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		checks = append(checks, c.HealthCheck)
		sessions = session.NewRedisStore(c.Client, cfg.Session.TTL)
		slog.Info("session store ready", "backend", "redis", "ttl", cfg.Session.TTL)
	} else {
		sessions = session.NewMemoryStore(cfg.Session.TTL)
		slog.Info("session store ready", "backend", "memory", "ttl", cfg.Session.TTL)
	}

	engine := dialogue.NewEngine(dialogue.EngineConfig{
		Catalog:     catalog,
		Classifier:  classify.Keyword{},
		Progress:    progressStore,
		Corrections: correctionLog,
	})
	handler := chat.NewHandler(engine, sessions, progressStore, correctionLog)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newMux(handler, checks),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newMux creates the HTTP router.
func newMux(handler *chat.Handler, checks []func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", handler.ServeChat)
	mux.HandleFunc("GET /chat/ws", handler.ServeWS)
	mux.HandleFunc("GET /progress/export", handler.ServeExport)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz(checks))
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz reports ready once every backing store answers a ping.
func handleReadyz(checks []func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		for _, check := range checks {
			if err := check(ctx); err != nil {
				slog.Warn("readiness check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
