// Package main runs the solspy core service:
// - Ingestion (scheduled): sandwich feed -> deduplicated event store
// - API (on demand): address classification, wallet portfolios, stats
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

	"github.com/eugenegl/solspy-sub000/internal/api"
	"github.com/eugenegl/solspy-sub000/internal/classify"
	"github.com/eugenegl/solspy-sub000/internal/config"
	"github.com/eugenegl/solspy-sub000/internal/indexer"
	"github.com/eugenegl/solspy-sub000/internal/ingestion"
	"github.com/eugenegl/solspy-sub000/internal/observability"
	"github.com/eugenegl/solspy-sub000/internal/portfolio"
	"github.com/eugenegl/solspy-sub000/internal/solana"
	"github.com/eugenegl/solspy-sub000/internal/stats"
	"github.com/eugenegl/solspy-sub000/internal/storage"
	"github.com/eugenegl/solspy-sub000/internal/storage/memory"
	"github.com/eugenegl/solspy-sub000/internal/storage/migrations"
	pgstore "github.com/eugenegl/solspy-sub000/internal/storage/postgres"
)

func main() {
	configDir := flag.String("config-dir", ".", "Directory containing config.yaml")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := createStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	// Provider gateways. Single attempt per call; retry policy lives in
	// the consuming components.
	rpc := solana.NewHTTPClient(cfg.RPC.Endpoint)
	blockhashCache := solana.NewBlockhashCache(rpc, solana.DefaultStaleAfter)
	assetClient := indexer.NewClient(cfg.Indexer.BaseURL, cfg.Indexer.APIKey)
	feedClient := indexer.NewFeedClient(cfg.Feed.URL, cfg.Feed.APIKey)

	// Core components.
	classifier := classify.New(rpc, log.New(os.Stdout, "[classify] ", log.LstdFlags))
	portfolioAgg := portfolio.NewAggregator(assetClient, log.New(os.Stdout, "[portfolio] ", log.LstdFlags))
	statsAgg := stats.NewAggregator(store)

	pipeline := ingestion.NewPipeline(ingestion.PipelineOptions{
		Feed:   feedClient,
		Store:  store,
		Logger: log.New(os.Stdout, "[ingestion] ", log.LstdFlags),
	})
	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Pipeline: pipeline,
		Interval: cfg.Ingest.Interval,
		Logger:   log.New(os.Stdout, "[ingestion] ", log.LstdFlags),
	})

	// Handle shutdown signals.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	errCh := make(chan error, 2)

	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	go startMetricsServer(cfg.Metrics.Addr, logger)

	var apiSrv *http.Server
	if cfg.API.Enabled {
		srv := api.NewServer(classifier, portfolioAgg, statsAgg, blockhashCache, log.New(os.Stdout, "[api] ", log.LstdFlags))
		apiSrv = &http.Server{Addr: cfg.API.Addr, Handler: srv.Router()}
		go func() {
			logger.Printf("API listening on %s", cfg.API.Addr)
			if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("api: %w", err)
			}
		}()
	} else {
		logger.Println("Public API disabled by config")
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Printf("Component failed: %v", err)
		cancel()
	}

	if apiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("API shutdown: %v", err)
		}
	}

	logger.Println("Shutdown complete")
}

// createStore creates the sandwich event store per config.
func createStore(ctx context.Context, cfg *config.Config) (storage.SandwichEventStore, func(), error) {
	if cfg.UseMemory {
		return memory.NewSandwichEventStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewSandwichEventStore(pool), pool.Close, nil
}

// startMetricsServer serves health and Prometheus metrics.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("Metrics server error: %v", err)
	}
}
