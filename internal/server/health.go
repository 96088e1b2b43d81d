package server

import (
	"context"

	"github.com/tanviarora/kgexplore/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// FetcherHealthService verifies edge-source connectivity as part of
// health checks.
type FetcherHealthService struct {
	Fetcher graph.EdgeFetcher
}

// Probe implements the HealthService interface.
func (s FetcherHealthService) Probe(ctx context.Context) error {
	if s.Fetcher == nil {
		return nil
	}
	return s.Fetcher.VerifyConnectivity(ctx)
}
