// Package explore implements the bounded, relevance-guided bidirectional
// search that discovers connection paths between two entities in a remote
// knowledge graph.
package explore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tanviarora/kgexplore/internal/domain"
	"github.com/tanviarora/kgexplore/internal/graph"
	"github.com/tanviarora/kgexplore/internal/pathexpr"
	"github.com/tanviarora/kgexplore/internal/render"
	"github.com/tanviarora/kgexplore/internal/score"
)

// Defaults for the caller-facing tuning parameters.
const (
	DefaultMaxResults = 5
	DefaultMaxDepth   = 4

	defaultFanOut       = 4
	defaultMinRelevance = 0.15
	defaultDepthPenalty = 0.05
	defaultRetryBackoff = 250 * time.Millisecond
)

// ErrNoPaths signals that the search completed and found no connecting
// path, as opposed to returning nothing for some other reason.
var ErrNoPaths = errors.New("no paths found")

// InvalidParameterError reports a non-positive tuning parameter. Surfaced
// immediately; no partial execution happens.
type InvalidParameterError struct {
	Param string
	Value int
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("parameter %s must be a positive integer, got %d", e.Param, e.Value)
}

// Options tunes one exploration.
type Options struct {
	// Topic guides relevance pruning and ranking. Empty means neutral
	// scoring, which disables pruning.
	Topic string

	// MaxResults caps how many discovered paths are kept. Required, > 0.
	MaxResults int

	// MaxDepth caps the total hop count of any discovered path. Required,
	// > 0. Each frontier expands to at most ceil(MaxDepth/2).
	MaxDepth int

	// PerHopLimit caps rows per remote query (server-side LIMIT).
	PerHopLimit int

	// MinRelevance prunes candidate edges scoring below it before they
	// enter a frontier.
	MinRelevance float64

	// DepthPenalty is subtracted from a path's average hop score once per
	// hop beyond the first, so shorter equally-relevant paths rank first.
	DepthPenalty float64

	// FanOut bounds how many frontier nodes are expanded concurrently in
	// one round.
	FanOut int

	// RetryBackoff is the wait before the single retry of a failed remote
	// call.
	RetryBackoff time.Duration

	// Predicates optionally narrows expansion to an allowlist of
	// predicate IRIs (for example graph.SchemaPredicates).
	Predicates []string

	// LabelPath overrides the label lookup with a property-path
	// expression.
	LabelPath string
}

func (o Options) withDefaults() Options {
	if o.PerHopLimit <= 0 {
		o.PerHopLimit = graph.DefaultLimit
	}
	if o.FanOut <= 0 {
		o.FanOut = defaultFanOut
	}
	if o.MinRelevance <= 0 {
		o.MinRelevance = defaultMinRelevance
	}
	if o.DepthPenalty <= 0 {
		o.DepthPenalty = defaultDepthPenalty
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = defaultRetryBackoff
	}
	return o
}

// Result is the outcome of a completed exploration.
type Result struct {
	Source   string
	Target   string
	Paths    []domain.Path
	Total    int
	Expanded int
}

// Engine drives explorations against one edge fetcher. Safe for concurrent
// use; all per-exploration state is private to each Explore call.
type Engine struct {
	fetcher graph.EdgeFetcher
	scorer  score.Scorer
	logger  *slog.Logger
}

// New constructs an Engine. A nil scorer falls back to the built-in
// lexical scorer; a nil logger falls back to slog.Default().
func New(fetcher graph.EdgeFetcher, scorer score.Scorer, logger *slog.Logger) *Engine {
	if scorer == nil {
		scorer = score.NewLexicalScorer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher: fetcher,
		scorer:  scorer,
		logger:  logger,
	}
}

// Explore runs a bidirectional bounded best-first search from source to
// target and returns the selected paths, or ErrNoPaths when both frontiers
// exhaust without meeting. Cancelling ctx stops new remote calls and
// returns the best paths found so far.
func (e *Engine) Explore(ctx context.Context, source, target string, opts Options) (*Result, error) {
	started := time.Now()
	defer func() {
		explorationDuration.Observe(time.Since(started).Seconds())
	}()

	if source == "" || target == "" {
		explorationsTotal.WithLabelValues("invalid").Inc()
		return nil, errors.New("source and target entities are required")
	}
	if opts.MaxDepth <= 0 {
		explorationsTotal.WithLabelValues("invalid").Inc()
		return nil, &InvalidParameterError{Param: "maxDepth", Value: opts.MaxDepth}
	}
	if opts.MaxResults <= 0 {
		explorationsTotal.WithLabelValues("invalid").Inc()
		return nil, &InvalidParameterError{Param: "maxResults", Value: opts.MaxResults}
	}
	if opts.LabelPath != "" {
		if _, err := pathexpr.Resolve(opts.LabelPath); err != nil {
			explorationsTotal.WithLabelValues("invalid").Inc()
			return nil, err
		}
	}
	opts = opts.withDefaults()

	logger := e.logger.With(
		"run", uuid.NewString()[:8],
		"source", source,
		"target", target,
	)

	if source == target {
		explorationsTotal.WithLabelValues("found").Inc()
		return &Result{
			Source: source,
			Target: target,
			Paths:  []domain.Path{{Source: source, Target: target, Score: 1}},
			Total:  1,
		}, nil
	}

	s := &search{
		engine:     e,
		logger:     logger,
		opts:       opts,
		source:     source,
		target:     target,
		candidates: make(map[string]domain.Path),
	}
	s.run(ctx)

	if len(s.candidates) == 0 {
		explorationsTotal.WithLabelValues("no_paths").Inc()
		logger.Info("exploration found no paths", "expanded", s.expanded)
		return nil, ErrNoPaths
	}

	paths := selectPaths(s.candidates, opts.MaxResults)
	explorationsTotal.WithLabelValues("found").Inc()
	logger.Info("exploration completed",
		"paths", len(paths),
		"candidates", len(s.candidates),
		"expanded", s.expanded,
	)
	return &Result{
		Source:   source,
		Target:   target,
		Paths:    paths,
		Total:    len(s.candidates),
		Expanded: s.expanded,
	}, nil
}

// ExploreTree is the caller-facing operation: it runs Explore and renders
// the outcome as the deterministic path-tree text, mapping the no-path
// case to its explicit message instead of an error.
func (e *Engine) ExploreTree(ctx context.Context, source, target string, opts Options) (string, error) {
	res, err := e.Explore(ctx, source, target, opts)
	if errors.Is(err, ErrNoPaths) {
		return render.Tree(nil, 0, source, target), nil
	}
	if err != nil {
		return "", err
	}
	return render.Tree(res.Paths, res.Total, source, target), nil
}

// search holds the state of one in-flight exploration. Fetching and
// scoring run concurrently per round; all frontier and candidate mutation
// happens on the round's merging goroutine, in deterministic order.
type search struct {
	engine *Engine
	logger *slog.Logger
	opts   Options
	source string
	target string

	candidates map[string]domain.Path
	expanded   int
}

type scoredEdge struct {
	edge domain.Edge
	hop  float64
}

type expansion struct {
	children []scoredEdge
	err      error
}

func (s *search) run(ctx context.Context) {
	depthCap := (s.opts.MaxDepth + 1) / 2
	frontiers := [2]*frontier{newFrontier(s.source), newFrontier(s.target)}

	for turn := 0; ; turn++ {
		if ctx.Err() != nil {
			s.logger.Warn("exploration cancelled, returning best paths so far",
				"candidates", len(s.candidates))
			return
		}

		active := frontiers[turn%2]
		other := frontiers[(turn+1)%2]
		if active.done() {
			if other.done() {
				return
			}
			continue
		}

		batch := active.popBatch(s.opts.FanOut, depthCap)
		if len(batch) == 0 {
			active.exhausted = true
			if other.done() {
				return
			}
			continue
		}

		results := s.expandBatch(ctx, batch)
		s.expanded += len(batch)

		for i, n := range batch {
			res := results[i]
			if res.err != nil {
				remoteErrorsTotal.Inc()
				s.logger.Warn("anchor exhausted after remote failures",
					"entity", n.entity, "error", res.err)
				continue
			}
			for _, cand := range res.children {
				if onPath(n, active.origin, cand.edge.To) {
					continue
				}
				child := &node{
					entity:   cand.edge.To,
					depth:    n.depth + 1,
					path:     appendEdge(n.path, cand.edge),
					scoreSum: n.scoreSum + cand.hop,
				}
				if !active.add(child) {
					continue
				}
				if opposite, ok := other.visited[child.entity]; ok {
					if turn%2 == 0 {
						s.join(child, opposite)
					} else {
						s.join(opposite, child)
					}
				}
			}
		}

		if s.converged(frontiers) {
			return
		}
	}
}

// expandBatch fetches and scores the neighborhoods of a round's nodes
// concurrently. Only the returned values are shared back; merging is left
// to the caller so visited-set updates stay ordered.
func (s *search) expandBatch(ctx context.Context, batch []*node) []expansion {
	results := make([]expansion, len(batch))
	var wg sync.WaitGroup
	for i, n := range batch {
		wg.Add(1)
		go func(i int, n *node) {
			defer wg.Done()
			results[i] = s.expandAnchor(ctx, n)
		}(i, n)
	}
	wg.Wait()
	return results
}

// expandAnchor issues the forward and backward queries for one anchor
// concurrently, then scores, prunes and orders the surviving edges.
func (s *search) expandAnchor(ctx context.Context, n *node) expansion {
	expansionsTotal.Inc()

	fetchOpts := graph.FetchOptions{
		Limit:      s.opts.PerHopLimit,
		Predicates: s.opts.Predicates,
		LabelPath:  s.opts.LabelPath,
	}

	var (
		wg       sync.WaitGroup
		forward  []domain.Edge
		backward []domain.Edge
		fwdErr   error
		bwdErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		forward, fwdErr = s.fetchWithRetry(ctx, n.entity, domain.DirectionForward, fetchOpts)
	}()
	go func() {
		defer wg.Done()
		backward, bwdErr = s.fetchWithRetry(ctx, n.entity, domain.DirectionBackward, fetchOpts)
	}()
	wg.Wait()

	if fwdErr != nil && bwdErr != nil {
		return expansion{err: errors.Join(fwdErr, bwdErr)}
	}
	if fwdErr != nil {
		s.logger.Warn("forward expansion failed", "entity", n.entity, "error", fwdErr)
	}
	if bwdErr != nil {
		s.logger.Warn("backward expansion failed", "entity", n.entity, "error", bwdErr)
	}

	edges := make([]domain.Edge, 0, len(forward)+len(backward))
	edges = append(edges, forward...)
	edges = append(edges, backward...)

	children := make([]scoredEdge, 0, len(edges))
	for _, edge := range edges {
		if edge.From == edge.To {
			continue
		}
		hop := s.scoreEdge(ctx, edge)
		if hop < s.opts.MinRelevance {
			prunedEdgesTotal.Inc()
			continue
		}
		children = append(children, scoredEdge{edge: edge, hop: hop})
	}

	sort.Slice(children, func(i, j int) bool {
		if children[i].hop != children[j].hop {
			return children[i].hop > children[j].hop
		}
		if children[i].edge.Predicate != children[j].edge.Predicate {
			return children[i].edge.Predicate < children[j].edge.Predicate
		}
		return children[i].edge.To < children[j].edge.To
	})
	return expansion{children: children}
}

func (s *search) scoreEdge(ctx context.Context, edge domain.Edge) float64 {
	text := domain.LocalName(edge.Predicate)
	if edge.Label != "" {
		text += " " + edge.Label
	}
	hop, err := s.engine.scorer.Score(ctx, text, s.opts.Topic)
	if err != nil {
		scorerFailuresTotal.Inc()
		s.logger.Debug("scorer unavailable, using neutral score",
			"entity", edge.To, "error", err)
		return score.Neutral
	}
	if hop < 0 {
		return 0
	}
	if hop > 1 {
		return 1
	}
	return hop
}

// fetchWithRetry retries a failed remote call once after a backoff, then
// gives up on the anchor.
func (s *search) fetchWithRetry(ctx context.Context, anchor string, dir domain.Direction, opts graph.FetchOptions) ([]domain.Edge, error) {
	edges, err := s.engine.fetcher.FetchEdges(ctx, anchor, dir, opts)
	if err == nil || ctx.Err() != nil {
		return edges, err
	}

	select {
	case <-time.After(s.opts.RetryBackoff):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.engine.fetcher.FetchEdges(ctx, anchor, dir, opts)
}

// join assembles a discovered path from a source-side node and a
// target-side node that reached the same entity.
func (s *search) join(srcNode, tgtNode *node) {
	hops := srcNode.depth + tgtNode.depth
	if hops == 0 || hops > s.opts.MaxDepth {
		return
	}

	edges := make([]domain.Edge, 0, hops)
	edges = append(edges, srcNode.path...)
	for i := len(tgtNode.path) - 1; i >= 0; i-- {
		edges = append(edges, tgtNode.path[i].Reversed())
	}

	path := domain.Path{Source: s.source, Target: s.target, Edges: edges}
	if !path.CycleFree() {
		return
	}
	path.Score = (srcNode.scoreSum+tgtNode.scoreSum)/float64(hops) - s.opts.DepthPenalty*float64(hops-1)

	sig := path.Signature()
	if existing, ok := s.candidates[sig]; !ok || path.Score > existing.Score {
		s.candidates[sig] = path
	}
}

// converged applies the best-first cutoff: once MaxResults paths are held
// and no frontier head could optimistically outrank the worst kept result,
// further expansion cannot improve the selection.
func (s *search) converged(frontiers [2]*frontier) bool {
	if len(s.candidates) < s.opts.MaxResults {
		return false
	}
	worst := s.worstKept()
	for _, f := range frontiers {
		if f.done() {
			continue
		}
		if head, ok := f.peek(); ok && s.optimistic(head) > worst {
			return false
		}
	}
	return true
}

// optimistic bounds the score of any path completed through n: every
// remaining hop scores 1.0 and the join happens at the next depth, so the
// depth penalty is at its minimum.
func (s *search) optimistic(n *node) float64 {
	rem := s.opts.MaxDepth - n.depth
	if rem < 1 {
		rem = 1
	}
	bound := (n.scoreSum + float64(rem)) / float64(n.depth+rem)
	return bound - s.opts.DepthPenalty*float64(n.depth)
}

func (s *search) worstKept() float64 {
	scores := make([]float64, 0, len(s.candidates))
	for _, p := range s.candidates {
		scores = append(scores, p.Score)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	return scores[s.opts.MaxResults-1]
}

// selectPaths orders candidates by score desc, then fewer hops, then
// lexicographic entity sequence, and keeps the top maxResults.
func selectPaths(candidates map[string]domain.Path, maxResults int) []domain.Path {
	paths := make([]domain.Path, 0, len(candidates))
	for _, p := range candidates {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Score != paths[j].Score {
			return paths[i].Score > paths[j].Score
		}
		if paths[i].Hops() != paths[j].Hops() {
			return paths[i].Hops() < paths[j].Hops()
		}
		return paths[i].EntityKey() < paths[j].EntityKey()
	})
	if len(paths) > maxResults {
		paths = paths[:maxResults]
	}
	return paths
}

func onPath(n *node, origin, entity string) bool {
	if origin == entity {
		return true
	}
	for _, e := range n.path {
		if e.To == entity {
			return true
		}
	}
	return false
}

func appendEdge(path []domain.Edge, edge domain.Edge) []domain.Edge {
	extended := make([]domain.Edge, 0, len(path)+1)
	extended = append(extended, path...)
	return append(extended, edge)
}
