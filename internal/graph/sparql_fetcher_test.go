package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tanviarora/kgexplore/internal/domain"
	"github.com/tanviarora/kgexplore/internal/pathexpr"
	"github.com/tanviarora/kgexplore/internal/sparql"
)

func edgeRow(pred, other, label string) sparql.Row {
	row := sparql.Row{
		"p":     {Kind: sparql.TermIRI, Value: pred},
		"other": {Kind: sparql.TermIRI, Value: other},
	}
	if label != "" {
		row["label"] = sparql.Term{Kind: sparql.TermLiteral, Value: label, Lang: "en"}
	}
	return row
}

func TestSparqlFetcherForward(t *testing.T) {
	client := sparql.NewMemoryClient()
	client.PushSelectResult(sparql.Result{
		Vars: []string{"p", "other", "label"},
		Rows: []sparql.Row{
			edgeRow("http://example.org/vocab#knows", "http://example.org/entity/B", "Entity B"),
			edgeRow("http://example.org/vocab#cites", "http://example.org/entity/C", ""),
		},
	})

	fetcher := NewSparqlFetcher(client)
	edges, err := fetcher.FetchEdges(context.Background(), "http://example.org/entity/A", domain.DirectionForward, FetchOptions{Limit: 25})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[0].From != "http://example.org/entity/A" || edges[0].To != "http://example.org/entity/B" {
		t.Errorf("unexpected edge endpoints: %+v", edges[0])
	}
	if edges[0].Direction != domain.DirectionForward {
		t.Errorf("expected forward direction")
	}
	if edges[0].Label != "Entity B" {
		t.Errorf("expected label carried over, got %q", edges[0].Label)
	}
	if edges[1].Label != "" {
		t.Errorf("missing optional label must stay empty, got %q", edges[1].Label)
	}

	calls := client.SelectCalls()
	if len(calls) != 1 {
		t.Fatalf("expected a single round trip, got %d", len(calls))
	}
	query := calls[0]
	if !strings.Contains(query, "<http://example.org/entity/A> ?p ?other .") {
		t.Errorf("forward pattern missing from query:\n%s", query)
	}
	if !strings.Contains(query, "LIMIT 25") {
		t.Errorf("expected server-side LIMIT in query:\n%s", query)
	}
	if !strings.Contains(query, "OPTIONAL") || !strings.Contains(query, "rdfs:label") {
		t.Errorf("expected label requested in the same query:\n%s", query)
	}
}

func TestSparqlFetcherBackwardPattern(t *testing.T) {
	client := sparql.NewMemoryClient()
	fetcher := NewSparqlFetcher(client)

	_, err := fetcher.FetchEdges(context.Background(), "http://example.org/entity/A", domain.DirectionBackward, FetchOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := client.SelectCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 query, got %d", len(calls))
	}
	if !strings.Contains(calls[0], "?other ?p <http://example.org/entity/A> .") {
		t.Errorf("backward pattern missing from query:\n%s", calls[0])
	}
}

func TestSparqlFetcherPredicateAllowlist(t *testing.T) {
	client := sparql.NewMemoryClient()
	fetcher := NewSparqlFetcher(client)

	_, err := fetcher.FetchEdges(context.Background(), "http://example.org/entity/A", domain.DirectionForward, FetchOptions{
		Predicates: []string{PredType, PredSeeAlso},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	query := client.SelectCalls()[0]
	if !strings.Contains(query, "VALUES ?p { <"+PredType+"> <"+PredSeeAlso+"> }") {
		t.Errorf("expected VALUES allowlist clause in query:\n%s", query)
	}
}

func TestSparqlFetcherMultiSegmentLabelPath(t *testing.T) {
	client := sparql.NewMemoryClient()
	fetcher := NewSparqlFetcher(client)

	opts := FetchOptions{LabelPath: "<http://example.org/vocab#authoredBy>.rdfs:label"}
	if _, err := fetcher.FetchEdges(context.Background(), "http://example.org/entity/A", domain.DirectionForward, opts); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	query := client.SelectCalls()[0]
	if !strings.Contains(query, "?other <http://example.org/vocab#authoredBy> ?pp1 .") {
		t.Errorf("expected chained label path fragment in query:\n%s", query)
	}
	if !strings.Contains(query, "?pp1 rdfs:label ?label .") {
		t.Errorf("expected final label fragment in query:\n%s", query)
	}
}

func TestSparqlFetcherMalformedLabelPath(t *testing.T) {
	fetcher := NewSparqlFetcher(sparql.NewMemoryClient())

	_, err := fetcher.FetchEdges(context.Background(), "http://example.org/entity/A", domain.DirectionForward, FetchOptions{
		LabelPath: "kg:authoredBy.",
	})
	var malformed *pathexpr.MalformedPathError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedPathError, got %v", err)
	}
}

func TestSparqlFetcherDiscardsSelfLoopsAndLiterals(t *testing.T) {
	client := sparql.NewMemoryClient()
	client.PushSelectResult(sparql.Result{
		Rows: []sparql.Row{
			edgeRow("http://example.org/vocab#knows", "http://example.org/entity/A", ""),
			{
				"p":     {Kind: sparql.TermIRI, Value: "http://example.org/vocab#note"},
				"other": {Kind: sparql.TermLiteral, Value: "just text"},
			},
			edgeRow("http://example.org/vocab#knows", "http://example.org/entity/B", ""),
		},
	})

	fetcher := NewSparqlFetcher(client)
	edges, err := fetcher.FetchEdges(context.Background(), "http://example.org/entity/A", domain.DirectionForward, FetchOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge after discarding self-loop and literal, got %d", len(edges))
	}
	if edges[0].To != "http://example.org/entity/B" {
		t.Errorf("unexpected surviving edge: %+v", edges[0])
	}
}

func TestSparqlFetcherFetchLabel(t *testing.T) {
	client := sparql.NewMemoryClient()
	client.PushSelectResult(sparql.Result{
		Rows: []sparql.Row{{"label": {Kind: sparql.TermLiteral, Value: "Ada Lovelace", Lang: "en"}}},
	})

	fetcher := NewSparqlFetcher(client)
	label, err := fetcher.FetchLabel(context.Background(), "http://example.org/entity/Ada")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if label != "Ada Lovelace" {
		t.Errorf("expected label, got %q", label)
	}

	// Absent label is not an error.
	label, err = fetcher.FetchLabel(context.Background(), "http://example.org/entity/Unknown")
	if err != nil {
		t.Fatalf("expected no error for missing label, got %v", err)
	}
	if label != "" {
		t.Errorf("expected empty label, got %q", label)
	}
}

func TestMemoryFetcherDirectionsAndLimit(t *testing.T) {
	fetcher := NewMemoryFetcher([]Triple{
		{S: "A", P: "p1", O: "B"},
		{S: "C", P: "p2", O: "A"},
		{S: "A", P: "p3", O: "A"},
		{S: "A", P: "p4", O: "D"},
	}, map[string]string{"B": "b"})

	forward, err := fetcher.FetchEdges(context.Background(), "A", domain.DirectionForward, FetchOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(forward) != 2 {
		t.Fatalf("expected 2 forward edges (self-loop dropped), got %d", len(forward))
	}
	if forward[0].Label != "b" {
		t.Errorf("expected label from fixture, got %q", forward[0].Label)
	}

	backward, err := fetcher.FetchEdges(context.Background(), "A", domain.DirectionBackward, FetchOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(backward) != 1 || backward[0].To != "C" {
		t.Fatalf("unexpected backward edges: %+v", backward)
	}

	limited, err := fetcher.FetchEdges(context.Background(), "A", domain.DirectionForward, FetchOptions{Limit: 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to cap results, got %d", len(limited))
	}
}
