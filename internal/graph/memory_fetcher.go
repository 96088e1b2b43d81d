package graph

import (
	"context"
	"sort"
	"sync"

	"github.com/tanviarora/kgexplore/internal/domain"
)

// Triple is one (subject, predicate, object) statement of an in-memory
// graph fixture.
type Triple struct {
	S string
	P string
	O string
}

// MemoryFetcher implements EdgeFetcher over an in-memory triple set. Used
// for unit testing search logic and for exercising the engine against
// generated fixtures without a running endpoint. Results are returned in a
// deterministic order.
type MemoryFetcher struct {
	mu         sync.Mutex
	triples    []Triple
	labels     map[string]string
	anchorErrs map[string][]error
	calls      int
}

// NewMemoryFetcher builds a fetcher over the provided triples and labels.
func NewMemoryFetcher(triples []Triple, labels map[string]string) *MemoryFetcher {
	if labels == nil {
		labels = make(map[string]string)
	}
	return &MemoryFetcher{
		triples:    triples,
		labels:     labels,
		anchorErrs: make(map[string][]error),
	}
}

// FailAnchor queues errors returned by successive FetchEdges calls for the
// given anchor; once drained, fetches succeed again.
func (m *MemoryFetcher) FailAnchor(anchor string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anchorErrs[anchor] = append(m.anchorErrs[anchor], errs...)
}

// Calls returns the number of FetchEdges invocations.
func (m *MemoryFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MemoryFetcher) FetchEdges(_ context.Context, anchor string, dir domain.Direction, opts FetchOptions) ([]domain.Edge, error) {
	if anchor == "" {
		return nil, ErrMissingAnchor
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if queued := m.anchorErrs[anchor]; len(queued) > 0 {
		err := queued[0]
		m.anchorErrs[anchor] = queued[1:]
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	allowed := make(map[string]struct{}, len(opts.Predicates))
	for _, p := range opts.Predicates {
		allowed[p] = struct{}{}
	}

	var edges []domain.Edge
	for _, t := range m.triples {
		if t.S == t.O {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[t.P]; !ok {
				continue
			}
		}
		switch dir {
		case domain.DirectionForward:
			if t.S == anchor {
				edges = append(edges, domain.Edge{
					From:      anchor,
					To:        t.O,
					Predicate: t.P,
					Label:     m.labels[t.O],
					Direction: dir,
				})
			}
		case domain.DirectionBackward:
			if t.O == anchor {
				edges = append(edges, domain.Edge{
					From:      anchor,
					To:        t.S,
					Predicate: t.P,
					Label:     m.labels[t.S],
					Direction: dir,
				})
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Predicate != edges[j].Predicate {
			return edges[i].Predicate < edges[j].Predicate
		}
		return edges[i].To < edges[j].To
	})
	if len(edges) > limit {
		edges = edges[:limit]
	}
	return edges, nil
}

func (m *MemoryFetcher) FetchLabel(_ context.Context, entity string) (string, error) {
	if entity == "" {
		return "", ErrMissingAnchor
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.labels[entity], nil
}

func (m *MemoryFetcher) VerifyConnectivity(context.Context) error {
	return nil
}

func (m *MemoryFetcher) Close(context.Context) error {
	return nil
}
