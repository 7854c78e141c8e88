package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/bookmarkd/internal/api"
	"github.com/dgallion1/bookmarkd/internal/config"
	"github.com/dgallion1/bookmarkd/internal/index"
	"github.com/dgallion1/bookmarkd/internal/store"
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

	idx, err := index.Open(cfg.IndexPath)
	if err != nil {
		log.Error("failed to open index", "path", cfg.IndexPath, "error", err)
		os.Exit(1)
	}

	st := store.New(cfg.CollectionTTL, cfg.MaxCollections, log)
	srv := api.NewServer(st, idx, log, cfg)
	st.Start(ctx, 5*time.Minute)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		st.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		idx.Close()
	}()

	log.Info("starting bookmarkd", "port", cfg.Port, "index", cfg.IndexPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
