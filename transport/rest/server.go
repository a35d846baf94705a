package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// Routes are the handlers mounted on the HTTP server. Nil handlers are not mounted.
type Routes struct {
	Cron       http.Handler
	CronSecret string
	Metrics    http.Handler
	WebSocket  http.Handler
}

func NewRouter(logger *slog.Logger, routes Routes) *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)

	router.Get("/ping", NewPingHandler().PingHandler)

	if routes.Cron != nil {
		router.Group(func(r chi.Router) {
			r.Use(RequireSecret(logger, routes.CronSecret))
			r.Method(http.MethodGet, "/cron", routes.Cron)
			r.Method(http.MethodPost, "/cron", routes.Cron)
		})
	}

	if routes.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	if routes.WebSocket != nil {
		router.Method(http.MethodGet, "/ws", routes.WebSocket)
	}

	logRoutes(logger, router)

	return router
}

// Start serves handler on port until ctx is cancelled.
func Start(ctx context.Context, logger *slog.Logger, port string, handler http.Handler) error {
	log := logger.With("component", "http")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func logRoutes(logger *slog.Logger, router chi.Router) {
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logger.Debug("route registered", "method", method, "route", route)
		return nil
	})
	if err != nil {
		logger.Warn("failed to walk routes", "error", err)
	}
}
