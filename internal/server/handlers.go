package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tanviarora/kgexplore/internal/config"
	"github.com/tanviarora/kgexplore/internal/domain"
	"github.com/tanviarora/kgexplore/internal/explore"
	"github.com/tanviarora/kgexplore/internal/graph"
	"github.com/tanviarora/kgexplore/internal/pathexpr"
	"github.com/tanviarora/kgexplore/internal/render"
	"github.com/tanviarora/kgexplore/internal/score"
)

// FetcherFactory resolves the edge source for one exploration. endpoint is
// the caller-supplied override and may be empty. The factory owns the
// fetcher's lifecycle; handlers never close what it returns.
type FetcherFactory func(r *http.Request, endpoint string) (graph.EdgeFetcher, error)

// ExploreHandler serves the exploration API.
type ExploreHandler struct {
	logger     *slog.Logger
	scorer     score.Scorer
	defaults   config.SearchConfig
	fetcherFor FetcherFactory
}

// NewExploreHandler builds the handler. A nil scorer falls back to the
// engine's built-in lexical scorer.
func NewExploreHandler(logger *slog.Logger, scorer score.Scorer, defaults config.SearchConfig, factory FetcherFactory) *ExploreHandler {
	return &ExploreHandler{
		logger:     logger,
		scorer:     scorer,
		defaults:   defaults,
		fetcherFor: factory,
	}
}

// ExploreRequest is the POST /api/explore body. Zero-valued tuning fields
// fall back to the configured defaults.
type ExploreRequest struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Endpoint   string `json:"endpoint,omitempty"`
	Topic      string `json:"topic,omitempty"`
	MaxResults int    `json:"maxResults,omitempty"`
	MaxDepth   int    `json:"maxDepth,omitempty"`
	LabelPath  string `json:"labelPath,omitempty"`
	SchemaOnly bool   `json:"schemaOnly,omitempty"`
}

// PathStep is one traversal step of a discovered path.
type PathStep struct {
	Predicate string `json:"predicate"`
	Direction string `json:"direction"`
	Entity    string `json:"entity"`
	Label     string `json:"label,omitempty"`
}

// PathPayload is one discovered path in API form.
type PathPayload struct {
	Score    float64    `json:"score"`
	Hops     int        `json:"hops"`
	Entities []string   `json:"entities"`
	Steps    []PathStep `json:"steps"`
}

// ExploreResponse is the POST /api/explore response body.
type ExploreResponse struct {
	Tree  string        `json:"tree"`
	Shown int           `json:"shown"`
	Total int           `json:"total"`
	Paths []PathPayload `json:"paths"`
}

func (h *ExploreHandler) handleExplore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ExploreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Source == "" || req.Target == "" {
		respondError(w, http.StatusBadRequest, "source and target are required")
		return
	}

	fetcher, err := h.fetcherFor(r, req.Endpoint)
	if err != nil {
		h.logger.Error("edge source unavailable", "error", err, "request_id", requestID(r.Context()))
		respondError(w, http.StatusBadGateway, "edge source unavailable")
		return
	}

	opts := h.options(req)
	engine := explore.New(fetcher, h.scorer, h.logger.With("request_id", requestID(r.Context())))

	res, err := engine.Explore(r.Context(), req.Source, req.Target, opts)
	switch {
	case errors.Is(err, explore.ErrNoPaths):
		respondJSON(w, http.StatusOK, ExploreResponse{
			Tree:  render.Tree(nil, 0, req.Source, req.Target),
			Paths: []PathPayload{},
		})
		return
	case err != nil:
		var invalid *explore.InvalidParameterError
		var malformed *pathexpr.MalformedPathError
		if errors.As(err, &invalid) || errors.As(err, &malformed) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("exploration failed", "error", err, "request_id", requestID(r.Context()))
		respondError(w, http.StatusBadGateway, "exploration failed")
		return
	}

	respondJSON(w, http.StatusOK, ExploreResponse{
		Tree:  render.Tree(res.Paths, res.Total, res.Source, res.Target),
		Shown: len(res.Paths),
		Total: res.Total,
		Paths: toPayload(res.Paths),
	})
}

func (h *ExploreHandler) options(req ExploreRequest) explore.Options {
	opts := explore.Options{
		Topic:        h.defaults.Topic,
		MaxResults:   h.defaults.MaxResults,
		MaxDepth:     h.defaults.MaxDepth,
		PerHopLimit:  h.defaults.PerHopLimit,
		MinRelevance: h.defaults.MinRelevance,
		DepthPenalty: h.defaults.DepthPenalty,
		FanOut:       h.defaults.FanOut,
		RetryBackoff: h.defaults.RetryBackoff,
		LabelPath:    h.defaults.LabelPath,
	}
	if req.Topic != "" {
		opts.Topic = req.Topic
	}
	if req.MaxResults != 0 {
		opts.MaxResults = req.MaxResults
	}
	if req.MaxDepth != 0 {
		opts.MaxDepth = req.MaxDepth
	}
	if req.LabelPath != "" {
		opts.LabelPath = req.LabelPath
	}
	if req.SchemaOnly || h.defaults.SchemaOnly {
		opts.Predicates = graph.SchemaPredicates
	}
	return opts
}

func toPayload(paths []domain.Path) []PathPayload {
	out := make([]PathPayload, 0, len(paths))
	for _, p := range paths {
		steps := make([]PathStep, 0, len(p.Edges))
		for _, e := range p.Edges {
			steps = append(steps, PathStep{
				Predicate: e.Predicate,
				Direction: string(e.Direction),
				Entity:    e.To,
				Label:     e.Label,
			})
		}
		out = append(out, PathPayload{
			Score:    p.Score,
			Hops:     p.Hops(),
			Entities: p.Entities(),
			Steps:    steps,
		})
	}
	return out
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
