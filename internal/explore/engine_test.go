package explore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tanviarora/kgexplore/internal/domain"
	"github.com/tanviarora/kgexplore/internal/graph"
	"github.com/tanviarora/kgexplore/internal/pathexpr"
)

type stubScorer struct {
	fn func(text, topic string) (float64, error)
}

func (s stubScorer) Score(_ context.Context, text, topic string) (float64, error) {
	return s.fn(text, topic)
}

func constantScorer(v float64) stubScorer {
	return stubScorer{fn: func(string, string) (float64, error) { return v, nil }}
}

func failingScorer() stubScorer {
	return stubScorer{fn: func(string, string) (float64, error) {
		return 0, errors.New("scorer offline")
	}}
}

func chainFetcher() *graph.MemoryFetcher {
	return graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/B", P: "http://ex/knows", O: "http://ex/C"},
		{S: "http://ex/C", P: "http://ex/knows", O: "http://ex/D"},
	}, nil)
}

func testOptions(maxResults, maxDepth int) Options {
	return Options{
		MaxResults:   maxResults,
		MaxDepth:     maxDepth,
		RetryBackoff: time.Millisecond,
	}
}

func TestExploreIdentityPath(t *testing.T) {
	fetcher := chainFetcher()
	engine := New(fetcher, constantScorer(1), nil)

	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/A", testOptions(5, 4))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Paths) != 1 {
		t.Fatalf("expected exactly one path, got %d", len(res.Paths))
	}
	if got := res.Paths[0].Hops(); got != 0 {
		t.Fatalf("expected zero-hop path, got %d hops", got)
	}
	if fetcher.Calls() != 0 {
		t.Fatalf("expected no remote queries for identity path, got %d", fetcher.Calls())
	}
}

func TestExploreFindsChainPath(t *testing.T) {
	engine := New(chainFetcher(), constantScorer(1), nil)

	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", testOptions(5, 4))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Paths) != 1 {
		t.Fatalf("expected one path, got %d", len(res.Paths))
	}
	p := res.Paths[0]
	if p.Hops() != 3 {
		t.Fatalf("expected 3 hops, got %d", p.Hops())
	}
	want := []string{"http://ex/A", "http://ex/B", "http://ex/C", "http://ex/D"}
	got := p.Entities()
	if len(got) != len(want) {
		t.Fatalf("expected entities %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected entities %v, got %v", want, got)
		}
	}
}

func TestExploreTreeRendering(t *testing.T) {
	engine := New(chainFetcher(), constantScorer(1), nil)

	text, err := engine.ExploreTree(context.Background(), "http://ex/A", "http://ex/D", testOptions(5, 4))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{"Path Tree:", "Showing 1", "paths"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in rendered tree, got %q", want, text)
		}
	}
}

func TestExploreDepthBoundTooTight(t *testing.T) {
	engine := New(chainFetcher(), constantScorer(1), nil)

	_, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", testOptions(5, 2))
	if !errors.Is(err, ErrNoPaths) {
		t.Fatalf("expected ErrNoPaths for maxDepth below shortest path, got %v", err)
	}

	text, err := engine.ExploreTree(context.Background(), "http://ex/A", "http://ex/D", testOptions(5, 2))
	if err != nil {
		t.Fatalf("expected rendered no-path message, got error %v", err)
	}
	if !strings.Contains(text, "No paths found") {
		t.Fatalf("expected no-path message, got %q", text)
	}
}

func TestExploreNoPathSymmetry(t *testing.T) {
	engine := New(chainFetcher(), constantScorer(1), nil)
	opts := testOptions(5, 2)

	_, fwdErr := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", opts)
	_, bwdErr := engine.Explore(context.Background(), "http://ex/D", "http://ex/A", opts)
	if !errors.Is(fwdErr, ErrNoPaths) || !errors.Is(bwdErr, ErrNoPaths) {
		t.Fatalf("expected ErrNoPaths both ways, got %v and %v", fwdErr, bwdErr)
	}
}

func TestExploreJoinRespectsDepthBound(t *testing.T) {
	// Shortest path is 4 hops; each frontier may legally reach depth 2 when
	// maxDepth is 3, so only the join-time check keeps the bound.
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/B", P: "http://ex/knows", O: "http://ex/C"},
		{S: "http://ex/C", P: "http://ex/knows", O: "http://ex/D"},
		{S: "http://ex/D", P: "http://ex/knows", O: "http://ex/E"},
	}, nil)
	engine := New(fetcher, constantScorer(1), nil)

	if _, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/E", testOptions(5, 3)); !errors.Is(err, ErrNoPaths) {
		t.Fatalf("expected ErrNoPaths, got %v", err)
	}

	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/E", testOptions(5, 4))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, p := range res.Paths {
		if p.Hops() > 4 {
			t.Fatalf("path exceeds depth bound: %d hops", p.Hops())
		}
	}
	if res.Paths[0].Hops() != 4 {
		t.Fatalf("expected the 4-hop path, got %d hops", res.Paths[0].Hops())
	}
}

func TestExploreResultCountBound(t *testing.T) {
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/M1"},
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/M2"},
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/M3"},
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/M4"},
		{S: "http://ex/M1", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/M2", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/M3", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/M4", P: "http://ex/knows", O: "http://ex/B"},
	}, nil)
	engine := New(fetcher, constantScorer(0.5), nil)

	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/B", testOptions(2, 4))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Paths) != 2 {
		t.Fatalf("expected exactly maxResults paths, got %d", len(res.Paths))
	}
	if res.Total != 4 {
		t.Fatalf("expected 4 candidate paths, got %d", res.Total)
	}
	// Equal scores and lengths: ties break on the entity sequence.
	if !res.Paths[0].HasEntity("http://ex/M1") || !res.Paths[1].HasEntity("http://ex/M2") {
		t.Fatalf("expected lexicographic tie-break, got %v and %v",
			res.Paths[0].Entities(), res.Paths[1].Entities())
	}
}

func TestExploreDeterministic(t *testing.T) {
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/A", P: "http://ex/cites", O: "http://ex/C"},
		{S: "http://ex/B", P: "http://ex/knows", O: "http://ex/D"},
		{S: "http://ex/C", P: "http://ex/knows", O: "http://ex/D"},
	}, nil)
	engine := New(fetcher, constantScorer(0.5), nil)
	opts := testOptions(5, 4)

	first, err := engine.ExploreTree(context.Background(), "http://ex/A", "http://ex/D", opts)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := engine.ExploreTree(context.Background(), "http://ex/A", "http://ex/D", opts)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output:\n%q\n%q", first, second)
	}
	if !strings.Contains(first, "Showing 2 of 2 paths") {
		t.Fatalf("expected both paths shown, got %q", first)
	}
}

func TestExplorePathsAreCycleFree(t *testing.T) {
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/B", P: "http://ex/knows", O: "http://ex/A"},
		{S: "http://ex/B", P: "http://ex/knows", O: "http://ex/C"},
		{S: "http://ex/C", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/C", P: "http://ex/knows", O: "http://ex/D"},
	}, nil)
	engine := New(fetcher, constantScorer(0.5), nil)

	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", testOptions(10, 4))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, p := range res.Paths {
		if !p.CycleFree() {
			t.Fatalf("path repeats an entity: %v", p.Entities())
		}
	}
}

func TestExploreBackwardOnlyPath(t *testing.T) {
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/B", P: "http://ex/cites", O: "http://ex/A"},
	}, nil)
	engine := New(fetcher, constantScorer(1), nil)

	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/B", testOptions(5, 1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Paths) != 1 || res.Paths[0].Hops() != 1 {
		t.Fatalf("expected one single-hop path, got %+v", res.Paths)
	}
	if res.Paths[0].Edges[0].Direction != domain.DirectionBackward {
		t.Fatalf("expected backward edge, got %s", res.Paths[0].Edges[0].Direction)
	}
}

func TestExploreRelevancePruning(t *testing.T) {
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/research", O: "http://ex/B"},
		{S: "http://ex/B", P: "http://ex/research", O: "http://ex/D"},
		{S: "http://ex/A", P: "http://ex/unrelated", O: "http://ex/C"},
		{S: "http://ex/C", P: "http://ex/unrelated", O: "http://ex/D"},
	}, nil)
	engine := New(fetcher, nil, nil) // lexical scorer

	opts := testOptions(5, 4)
	opts.Topic = "research"
	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", opts)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, p := range res.Paths {
		if p.HasEntity("http://ex/C") {
			t.Fatalf("expected off-topic branch pruned, got %v", p.Entities())
		}
	}
	if len(res.Paths) != 1 {
		t.Fatalf("expected the on-topic path only, got %d paths", len(res.Paths))
	}
}

func TestExploreScorerFailureFallsBackToNeutral(t *testing.T) {
	engine := New(chainFetcher(), failingScorer(), nil)

	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", testOptions(5, 4))
	if err != nil {
		t.Fatalf("expected search to survive scorer failure, got %v", err)
	}
	if len(res.Paths) != 1 || res.Paths[0].Hops() != 3 {
		t.Fatalf("expected the chain path despite scorer failure, got %+v", res.Paths)
	}
}

func TestExploreTransportFailureExhaustsOnlyThatAnchor(t *testing.T) {
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/B"},
		{S: "http://ex/B", P: "http://ex/knows", O: "http://ex/C"},
		{S: "http://ex/C", P: "http://ex/knows", O: "http://ex/D"},
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/X"},
	}, nil)
	// Both directions plus their retries fail when X is expanded.
	boom := errors.New("endpoint unreachable")
	fetcher.FailAnchor("http://ex/X", boom, boom, boom, boom)

	engine := New(fetcher, constantScorer(0.5), nil)
	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", testOptions(5, 4))
	if err != nil {
		t.Fatalf("expected search to survive anchor failure, got %v", err)
	}
	if len(res.Paths) != 1 || res.Paths[0].Hops() != 3 {
		t.Fatalf("expected the surviving chain path, got %+v", res.Paths)
	}
}

func TestExploreTransientFailureRetriedOnce(t *testing.T) {
	fetcher := graph.NewMemoryFetcher([]graph.Triple{
		{S: "http://ex/A", P: "http://ex/knows", O: "http://ex/B"},
	}, nil)
	// One queued error: the retry drains past it.
	fetcher.FailAnchor("http://ex/A", errors.New("transient"))

	engine := New(fetcher, constantScorer(1), nil)
	res, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/B", testOptions(5, 1))
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(res.Paths) != 1 {
		t.Fatalf("expected one path after retry, got %d", len(res.Paths))
	}
}

func TestExploreInvalidParameters(t *testing.T) {
	engine := New(chainFetcher(), constantScorer(1), nil)
	ctx := context.Background()

	var invalid *InvalidParameterError
	if _, err := engine.Explore(ctx, "http://ex/A", "http://ex/D", testOptions(5, 0)); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidParameterError for maxDepth, got %v", err)
	}
	if invalid.Param != "maxDepth" {
		t.Fatalf("expected maxDepth parameter named, got %q", invalid.Param)
	}
	if _, err := engine.Explore(ctx, "http://ex/A", "http://ex/D", testOptions(-1, 4)); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidParameterError for maxResults, got %v", err)
	}
	if _, err := engine.Explore(ctx, "", "http://ex/D", testOptions(5, 4)); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestExploreMalformedLabelPathSurfaced(t *testing.T) {
	engine := New(chainFetcher(), constantScorer(1), nil)
	opts := testOptions(5, 4)
	opts.LabelPath = "kg:authoredBy."

	var malformed *pathexpr.MalformedPathError
	if _, err := engine.Explore(context.Background(), "http://ex/A", "http://ex/D", opts); !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedPathError, got %v", err)
	}
}

func TestExploreCancelledContextReturnsBestSoFar(t *testing.T) {
	engine := New(chainFetcher(), constantScorer(1), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Explore(ctx, "http://ex/A", "http://ex/D", testOptions(5, 4)); !errors.Is(err, ErrNoPaths) {
		t.Fatalf("expected ErrNoPaths when cancelled before any discovery, got %v", err)
	}
}
