package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/tanviarora/kgexplore/internal/domain"
)

// Neo4jOptions configures the Bolt-backed fetcher.
type Neo4jOptions struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// NewNeo4jFetcher establishes a Bolt connection using the official Neo4j
// driver and exposes the property graph as an EdgeFetcher. It expects a
// neosemantics-style RDF import: entity IRIs live in the `uri` node
// property and display names in `name`. Relationship types stand in for
// predicate IRIs.
func NewNeo4jFetcher(ctx context.Context, opts Neo4jOptions) (EdgeFetcher, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("bolt URI is required")
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	return &neo4jFetcher{
		driver:   driver,
		database: opts.Database,
	}, nil
}

type neo4jFetcher struct {
	driver   neo4j.DriverWithContext
	database string
}

const forwardEdgesCypher = `
MATCH (a {uri: $anchor})-[r]->(b)
WHERE b.uri IS NOT NULL AND b.uri <> $anchor
  AND (size($preds) = 0 OR type(r) IN $preds)
RETURN type(r) AS p, b.uri AS other, coalesce(b.name, "") AS label
LIMIT %d`

const backwardEdgesCypher = `
MATCH (b)-[r]->(a {uri: $anchor})
WHERE b.uri IS NOT NULL AND b.uri <> $anchor
  AND (size($preds) = 0 OR type(r) IN $preds)
RETURN type(r) AS p, b.uri AS other, coalesce(b.name, "") AS label
LIMIT %d`

const nodeLabelCypher = `
MATCH (a {uri: $entity})
RETURN coalesce(a.name, "") AS label
LIMIT 1`

func (f *neo4jFetcher) FetchEdges(ctx context.Context, anchor string, dir domain.Direction, opts FetchOptions) ([]domain.Edge, error) {
	if anchor == "" {
		return nil, ErrMissingAnchor
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	template := forwardEdgesCypher
	if dir == domain.DirectionBackward {
		template = backwardEdgesCypher
	}

	preds := opts.Predicates
	if preds == nil {
		preds = []string{}
	}

	records, err := f.read(ctx, fmt.Sprintf(template, limit), map[string]any{
		"anchor": anchor,
		"preds":  preds,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch edges for %s: %w", anchor, err)
	}

	var edges []domain.Edge
	for _, record := range records {
		other := recordString(record, "other")
		predicate := recordString(record, "p")
		if other == "" || predicate == "" || other == anchor {
			continue
		}
		edges = append(edges, domain.Edge{
			From:      anchor,
			To:        other,
			Predicate: predicate,
			Label:     recordString(record, "label"),
			Direction: dir,
		})
	}
	return edges, nil
}

func (f *neo4jFetcher) FetchLabel(ctx context.Context, entity string) (string, error) {
	if entity == "" {
		return "", ErrMissingAnchor
	}

	records, err := f.read(ctx, nodeLabelCypher, map[string]any{"entity": entity})
	if err != nil {
		return "", fmt.Errorf("fetch label for %s: %w", entity, err)
	}
	if len(records) == 0 {
		return "", nil
	}
	return recordString(records[0], "label"), nil
}

func (f *neo4jFetcher) VerifyConnectivity(ctx context.Context) error {
	return f.driver.VerifyConnectivity(ctx)
}

func (f *neo4jFetcher) Close(ctx context.Context) error {
	return f.driver.Close(ctx)
}

func (f *neo4jFetcher) read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := f.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: f.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for res.Next(ctx) {
		rec := res.Record()
		record := make(map[string]any, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			record[key] = value
		}
		records = append(records, record)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func recordString(record map[string]any, key string) string {
	switch v := record[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}
