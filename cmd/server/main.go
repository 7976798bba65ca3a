package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagemark/pagemark/internal/api"
	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/pdfdoc"
	"github.com/pagemark/pagemark/internal/pipeline"
	"github.com/pagemark/pagemark/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	claude := extract.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	reader := &pdfdoc.Reader{FallbackPdftotext: cfg.PDFFallbackPdftotext}
	st := store.New()
	recent := store.NewLastOpened(cfg.LibraryDir)

	// Initialize the recognition pipeline.
	orch := pipeline.NewOrchestrator(cfg, claude, reader, log)
	orch.Start(ctx)

	// Session registry with idle eviction.
	sessions := api.NewSessions(cfg.SessionTTL)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Cleanup()
			}
		}
	}()

	// Initialize HTTP server.
	srv := api.NewServer(sessions, orch, claude, reader, st, recent, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		claude.Close()
	}()

	log.Info("starting pagemark", "port", cfg.Port, "library", cfg.LibraryDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
