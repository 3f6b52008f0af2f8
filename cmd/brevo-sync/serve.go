package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the webhook endpoint, metrics and health checks",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadFileConfig(configFile)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.connector.SelfTest(); err != nil {
		rt.logger.Warn("connector self test failed", "error", err.Error())
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(rt),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("starting HTTP server", "addr", cfg.Server.Addr, "webhook_path", cfg.Server.WebhookPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRouter(rt *runtime) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)
	router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	// GET answers the delivery probe, POST carries notifications.
	webhook := rt.connector.WebhookHandler()
	router.Method(http.MethodPost, rt.config.Server.WebhookPath, webhook)
	router.Method(http.MethodGet, rt.config.Server.WebhookPath, webhook)
	return router
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
