// Package service wires configuration, stores, the planner, and the HTTP
// server into a running process.
package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutrigenie/nutrigenie/internal/api"
	"github.com/nutrigenie/nutrigenie/internal/api/recovery"
	"github.com/nutrigenie/nutrigenie/internal/config"
	emb "github.com/nutrigenie/nutrigenie/internal/embeddings"
	"github.com/nutrigenie/nutrigenie/internal/factory"
	"github.com/nutrigenie/nutrigenie/internal/health"
	"github.com/nutrigenie/nutrigenie/internal/logger"
	"github.com/nutrigenie/nutrigenie/internal/memory"
	"github.com/nutrigenie/nutrigenie/internal/planner"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
	"github.com/nutrigenie/nutrigenie/internal/store"
)

const (
	healthProbeTimeout = 5 * time.Second
	healthInterval     = 15 * time.Second
)

// Run starts the nutrition service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("nutrigenie")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	// Root context cancelled on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, idx, embProvider, plan, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	svcHealth := startHealthCheckers(ctx, log, st, idx, embProvider)

	svc := memory.NewService(st, idx, embProvider, log)
	handler := api.NewHandler(svc, plan, svcHealth, cfg.PlannerMaxRetry, log)
	router := api.NewRouter(handler)
	router.Use(recovery.Middleware(log))

	// Block startup until dependencies report healthy; fail fast otherwise.
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, semantic.Index, emb.Provider, planner.Planner, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, nil, nil, err
	}

	idx, err := factory.NewSemanticIndex(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Semantic index unavailable")
		return nil, nil, nil, nil, err
	}

	embProvider := factory.NewEmbeddingProvider(ctx, cfg, log)
	if embProvider == nil {
		return nil, nil, nil, nil, fmt.Errorf("embedding provider not configured")
	}

	plan, err := factory.NewPlanner(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Planner unavailable")
		return nil, nil, nil, nil, err
	}
	return st, idx, embProvider, plan, nil
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, log zerolog.Logger, st store.Store, idx semantic.Index, embProvider emb.Provider) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker

	storeChecker := store.NewStoreHealthChecker(st, log, healthProbeTimeout)
	go storeChecker.Start(ctx, healthInterval)
	checkers = append(checkers, storeChecker)

	idxChecker := semantic.NewIndexHealthChecker(idx, log, healthProbeTimeout)
	go idxChecker.Start(ctx, healthInterval)
	checkers = append(checkers, idxChecker)

	embChecker := emb.NewProviderHealthChecker(embProvider, log, healthProbeTimeout)
	go embChecker.Start(ctx, healthInterval)
	checkers = append(checkers, embChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, healthInterval)
	return svcHealth
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	deadline := time.Now().Add(time.Duration(cfg.StartupTimeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", cfg.StartupTimeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
