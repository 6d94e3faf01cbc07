package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a11ylab/scorecard/internal/api"
	"github.com/a11ylab/scorecard/internal/config"
	"github.com/a11ylab/scorecard/internal/mapping"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "optional scorecard.yml")
	fs.Parse(args)

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	m, err := mapping.Load(cfg.MappingPath)
	if err != nil {
		if errors.Is(err, mapping.ErrMappingNotFound) {
			log.Error("mapping file missing; generate it or fix mapping_path", "path", cfg.MappingPath)
		} else {
			log.Error("load mapping", "error", err)
		}
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := api.NewServer(m, log, cfg)

	if cfg.WatchMapping {
		go func() {
			if err := mapping.Watch(ctx, log, cfg.MappingPath, srv.SwapMapping); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("mapping watch stopped", "error", err)
			}
		}()
	}

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
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting scorecard service", "port", cfg.Port, "watch_mapping", cfg.WatchMapping)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
