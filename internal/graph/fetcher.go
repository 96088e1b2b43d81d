package graph

import (
	"context"
	"errors"

	"github.com/tanviarora/kgexplore/internal/domain"
)

// EdgeFetcher defines the minimal contract the search engine requires to
// discover edges around an anchor entity in a remote knowledge graph.
// Implementations must be safe for concurrent use; requests are read-only.
type EdgeFetcher interface {
	// FetchEdges returns edges adjacent to anchor in the given direction,
	// capped server-side at opts.Limit. A malformed or empty result set is
	// zero edges, not an error.
	FetchEdges(ctx context.Context, anchor string, dir domain.Direction, opts FetchOptions) ([]domain.Edge, error)

	// FetchLabel returns a human-readable label for the entity, or the
	// empty string when none is known.
	FetchLabel(ctx context.Context, entity string) (string, error)

	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// FetchOptions narrows and bounds a single edge-fetch call.
type FetchOptions struct {
	// Limit caps the number of returned rows per call so per-hop cost stays
	// bounded independent of graph fan-out.
	Limit int

	// Predicates, when non-empty, restricts the query to an alternation of
	// specific predicate IRIs.
	Predicates []string

	// LabelPath is the property-path expression used to fetch labels for
	// the far end of each edge, resolved once per distinct expression.
	// Empty means the default rdfs:label lookup.
	LabelPath string
}

// DefaultLimit is the per-hop row cap applied when FetchOptions.Limit is
// not positive.
const DefaultLimit = 50

// ErrMissingAnchor indicates an edge fetch without an anchor entity.
var ErrMissingAnchor = errors.New("anchor entity is required")
