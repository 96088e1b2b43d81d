package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tanviarora/kgexplore/internal/config"
	"github.com/tanviarora/kgexplore/internal/graph"
	"github.com/tanviarora/kgexplore/internal/logging"
	"github.com/tanviarora/kgexplore/internal/server"
	"github.com/tanviarora/kgexplore/internal/sparql"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	fetchers := newFetcherPool(cfg)
	defaultFetcher, err := fetchers.get(ctx, "")
	if err != nil {
		logger.Error("failed to create edge fetcher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := fetchers.close(context.Background()); err != nil {
			logger.Warn("closing edge fetchers failed", "error", err)
		}
	}()

	exploreHandler := server.NewExploreHandler(logger, nil, cfg.Search,
		func(r *http.Request, endpoint string) (graph.EdgeFetcher, error) {
			return fetchers.get(r.Context(), endpoint)
		})

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.FetcherHealthService{Fetcher: defaultFetcher},
		Explore:          exploreHandler,
		MetricsEnabled:   cfg.HTTP.MetricsEnabled,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// fetcherPool shares one edge fetcher per endpoint across requests. The
// bolt backend ignores per-request endpoint overrides.
type fetcherPool struct {
	cfg config.Config

	mu       sync.Mutex
	fetchers map[string]graph.EdgeFetcher
}

func newFetcherPool(cfg config.Config) *fetcherPool {
	return &fetcherPool{
		cfg:      cfg,
		fetchers: make(map[string]graph.EdgeFetcher),
	}
}

func (p *fetcherPool) get(ctx context.Context, endpoint string) (graph.EdgeFetcher, error) {
	key := endpoint
	if p.cfg.Backend == "bolt" {
		key = ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.fetchers[key]; ok {
		return f, nil
	}

	f, err := p.build(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	p.fetchers[key] = f
	return f, nil
}

func (p *fetcherPool) build(ctx context.Context, endpoint string) (graph.EdgeFetcher, error) {
	if p.cfg.Backend == "bolt" {
		return graph.NewNeo4jFetcher(ctx, graph.Neo4jOptions{
			URI:            p.cfg.Bolt.URI,
			Database:       p.cfg.Bolt.Database,
			Username:       p.cfg.Bolt.Username,
			Password:       p.cfg.Bolt.Password,
			MaxConnections: p.cfg.Bolt.MaxConnections,
		})
	}

	if endpoint == "" {
		endpoint = p.cfg.Endpoint.URL
	}
	client, err := sparql.NewHTTPClient(sparql.Options{
		Endpoint:  endpoint,
		Timeout:   p.cfg.Endpoint.Timeout,
		UserAgent: p.cfg.Endpoint.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	return graph.NewSparqlFetcher(client), nil
}

func (p *fetcherPool) close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, f := range p.fetchers {
		if err := f.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
