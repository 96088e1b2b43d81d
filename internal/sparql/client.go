package sparql

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client defines the minimal contract required to run read-only queries
// against a SPARQL-compatible endpoint.
type Client interface {
	Select(ctx context.Context, query string) (Result, error)
	Ask(ctx context.Context, query string) (bool, error)
	Close(ctx context.Context) error
}

// Result is a simplified representation of a SELECT response.
type Result struct {
	Vars []string
	Rows []Row
}

// Row binds variable names to terms for one solution.
type Row map[string]Term

// Term is a single RDF term from a result binding.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

// TermKind distinguishes IRIs, literals and blank nodes.
type TermKind string

const (
	TermIRI     TermKind = "uri"
	TermLiteral TermKind = "literal"
	TermBlank   TermKind = "bnode"
)

// IRI reports whether the term names a graph entity.
func (t Term) IRI() bool {
	return t.Kind == TermIRI
}

// Options configures a SPARQL client implementation.
type Options struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
}

// ErrMissingEndpoint indicates the endpoint URL is not provided.
var ErrMissingEndpoint = errors.New("sparql endpoint URL is required")

// TransportError wraps a network or HTTP-level failure talking to the
// endpoint. Callers treat it as recoverable per anchor, not fatal.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sparql endpoint %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
