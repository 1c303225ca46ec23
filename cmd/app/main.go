// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sixseven-backend/internal/config"
	"sixseven-backend/internal/domain/model"
	providers "sixseven-backend/internal/infra/adapters/provider"
	"sixseven-backend/internal/infra/api"
	"sixseven-backend/internal/infra/logging"
	"sixseven-backend/internal/infra/metrics"
	memstore "sixseven-backend/internal/infra/store"
	"sixseven-backend/internal/infra/worker"
	"sixseven-backend/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed validation)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Store ----
	store := memstore.NewMemoryStore()

	// ---- Provider adapters ----
	research := providers.NewLimitedResearch(
		providers.NewYutoriAdapter(cfg.Research, logger), cfg.Worker.ConcurrentLimit)
	creative := providers.NewLimitedCreative(
		providers.NewFreepikAdapter(cfg.Creative, logger), cfg.Worker.ConcurrentLimit)

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Worker.Workers, logger)
	pool.Start(ctx)

	// ---- Use cases ----
	statusUC := usecase.NewStatusUseCase(store, logger)
	cancelUC := usecase.NewCancelUseCase(store, logger)
	commandUC := usecase.NewCommandUseCase(
		store, pool, statusUC, cancelUC,
		model.Defaults{
			Timezone:    cfg.Research.Timezone,
			Imagination: cfg.Creative.Imagination,
			AspectRatio: cfg.Creative.AspectRatio,
		},
		logger,
		usecase.NewResearchRunner(store, research, cfg.Worker.MaxPollDuration, logger),
		usecase.NewCreativeRunner(store, creative, cfg.Worker.MaxPollDuration, logger),
	)

	// ---- HTTP server ----
	srv := api.NewServer(commandUC, cancelUC, store, logger)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
	logger.Info().Msg("stopped")
}
