package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tanviarora/kgexplore/internal/domain"
	"github.com/tanviarora/kgexplore/internal/pathexpr"
	"github.com/tanviarora/kgexplore/internal/sparql"
)

// DefaultLabelPath is the label lookup applied when a fetch does not name
// its own property path.
const DefaultLabelPath = "rdfs:label"

// SparqlFetcher implements EdgeFetcher on top of a SPARQL protocol client.
// One graph-pattern query is built per hop; the far-end label is requested
// in the same query so each expansion costs a single round trip.
type SparqlFetcher struct {
	client   sparql.Client
	prefixes map[string]string

	mu       sync.Mutex
	resolved map[string]pathexpr.Resolved
}

// NewSparqlFetcher constructs a fetcher over the provided client.
func NewSparqlFetcher(client sparql.Client) *SparqlFetcher {
	return &SparqlFetcher{
		client:   client,
		prefixes: DefaultPrefixes,
		resolved: make(map[string]pathexpr.Resolved),
	}
}

const edgeQueryTemplate = `%sSELECT DISTINCT ?p ?other %s WHERE {
  %s
  FILTER(isIRI(?other) && ?other != <%s>)%s
  OPTIONAL {
    %s
  }
}
LIMIT %d`

const labelQueryTemplate = `%sSELECT ?label WHERE {
  <%s> rdfs:label ?label .
}
LIMIT 1`

// FetchEdges builds and executes one query for the anchor's neighborhood in
// the given direction.
func (f *SparqlFetcher) FetchEdges(ctx context.Context, anchor string, dir domain.Direction, opts FetchOptions) ([]domain.Edge, error) {
	if anchor == "" {
		return nil, ErrMissingAnchor
	}

	resolved, err := f.resolveLabelPath(opts.LabelPath)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	pattern := fmt.Sprintf("<%s> ?p ?other .", anchor)
	if dir == domain.DirectionBackward {
		pattern = fmt.Sprintf("?other ?p <%s> .", anchor)
	}

	valuesClause := ""
	if len(opts.Predicates) > 0 {
		terms := make([]string, 0, len(opts.Predicates))
		for _, p := range opts.Predicates {
			terms = append(terms, "<"+p+">")
		}
		valuesClause = fmt.Sprintf("\n  VALUES ?p { %s }", strings.Join(terms, " "))
	}

	query := fmt.Sprintf(edgeQueryTemplate,
		f.prologue(),
		resolved.FinalVar,
		pattern,
		anchor,
		valuesClause,
		strings.Join(resolved.Patterns("?other"), "\n    "),
		limit,
	)

	res, err := f.client.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch edges for %s: %w", anchor, err)
	}

	labelVar := strings.TrimPrefix(resolved.FinalVar, "?")
	var edges []domain.Edge
	for _, row := range res.Rows {
		predicate, ok := row["p"]
		if !ok || predicate.Value == "" {
			continue
		}
		other, ok := row["other"]
		if !ok || !other.IRI() || other.Value == anchor {
			continue
		}
		edges = append(edges, domain.Edge{
			From:      anchor,
			To:        other.Value,
			Predicate: predicate.Value,
			Label:     row[labelVar].Value,
			Direction: dir,
		})
	}
	return edges, nil
}

// FetchLabel returns the entity's rdfs:label, or "" when absent.
func (f *SparqlFetcher) FetchLabel(ctx context.Context, entity string) (string, error) {
	if entity == "" {
		return "", ErrMissingAnchor
	}

	query := fmt.Sprintf(labelQueryTemplate, f.prologue(), entity)
	res, err := f.client.Select(ctx, query)
	if err != nil {
		return "", fmt.Errorf("fetch label for %s: %w", entity, err)
	}
	if len(res.Rows) == 0 {
		return "", nil
	}
	return res.Rows[0]["label"].Value, nil
}

// VerifyConnectivity probes the endpoint with a trivial ASK query.
func (f *SparqlFetcher) VerifyConnectivity(ctx context.Context) error {
	if _, err := f.client.Ask(ctx, "ASK {}"); err != nil {
		return fmt.Errorf("verify endpoint connectivity: %w", err)
	}
	return nil
}

func (f *SparqlFetcher) Close(ctx context.Context) error {
	return f.client.Close(ctx)
}

// resolveLabelPath resolves a label-path expression once per distinct
// textual form and reuses the result for the rest of the fetcher's life.
func (f *SparqlFetcher) resolveLabelPath(expr string) (pathexpr.Resolved, error) {
	if expr == "" {
		expr = DefaultLabelPath
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if cached, ok := f.resolved[expr]; ok {
		return cached, nil
	}
	resolved, err := pathexpr.Resolve(expr)
	if err != nil {
		return pathexpr.Resolved{}, err
	}
	f.resolved[expr] = resolved
	return resolved, nil
}

func (f *SparqlFetcher) prologue() string {
	names := make([]string, 0, len(f.prefixes))
	for name := range f.prefixes {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "PREFIX %s: <%s>\n", name, f.prefixes[name])
	}
	return b.String()
}
