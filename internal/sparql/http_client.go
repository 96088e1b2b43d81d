package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "kgexplore/1.0"
	resultsMediaType = "application/sparql-results+json"

	// maxErrorBody caps how much of an error response is kept for messages.
	maxErrorBody = 512
)

// NewHTTPClient builds a Client speaking the SPARQL 1.1 protocol over HTTP.
// Queries are sent as form-encoded POST requests; results are requested as
// application/sparql-results+json. The client is stateless and safe for
// concurrent use.
func NewHTTPClient(opts Options) (Client, error) {
	if opts.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(opts.Endpoint); err != nil {
		return nil, fmt.Errorf("parse endpoint URL: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	agent := opts.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}

	return &httpClient{
		endpoint: opts.Endpoint,
		agent:    agent,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

type httpClient struct {
	endpoint string
	agent    string
	http     *http.Client
}

// selectResponse mirrors the SPARQL JSON results format.
type selectResponse struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]termJSON `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"`
}

type termJSON struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

func (c *httpClient) Select(ctx context.Context, query string) (Result, error) {
	resp, err := c.execute(ctx, query)
	if err != nil {
		return Result{}, err
	}

	result := Result{Vars: resp.Head.Vars}
	for _, binding := range resp.Results.Bindings {
		row := make(Row, len(binding))
		for name, term := range binding {
			row[name] = Term{
				Kind:     parseTermKind(term.Type),
				Value:    term.Value,
				Lang:     term.Lang,
				Datatype: term.Datatype,
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func (c *httpClient) Ask(ctx context.Context, query string) (bool, error) {
	resp, err := c.execute(ctx, query)
	if err != nil {
		return false, err
	}
	if resp.Boolean == nil {
		return false, fmt.Errorf("endpoint returned no boolean for ASK query")
	}
	return *resp.Boolean, nil
}

func (c *httpClient) Close(context.Context) error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *httpClient) execute(ctx context.Context, query string) (selectResponse, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return selectResponse{}, fmt.Errorf("build sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("User-Agent", c.agent)

	resp, err := c.http.Do(req)
	if err != nil {
		return selectResponse{}, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return selectResponse{}, &TransportError{
			Endpoint: c.endpoint,
			Err:      fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var decoded selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return selectResponse{}, &TransportError{
			Endpoint: c.endpoint,
			Err:      fmt.Errorf("decode results: %w", err),
		}
	}
	return decoded, nil
}

func parseTermKind(raw string) TermKind {
	switch raw {
	case "uri":
		return TermIRI
	case "bnode":
		return TermBlank
	default:
		// typed-literal is the SPARQL 1.0 spelling.
		return TermLiteral
	}
}
