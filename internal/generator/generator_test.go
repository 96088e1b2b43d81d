package generator

import (
	"context"
	"strings"
	"testing"
)

func TestGenerateDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42

	first, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(first.Triples) != len(second.Triples) {
		t.Fatalf("expected identical triple counts, got %d and %d", len(first.Triples), len(second.Triples))
	}
	for i := range first.Triples {
		if first.Triples[i] != second.Triples[i] {
			t.Fatalf("triple %d differs: %+v vs %+v", i, first.Triples[i], second.Triples[i])
		}
	}
	if len(first.Labels) != len(second.Labels) {
		t.Fatalf("expected identical label counts, got %d and %d", len(first.Labels), len(second.Labels))
	}
}

func TestGenerateShapes(t *testing.T) {
	cfg := Config{NumPeople: 10, NumWorks: 20, NumSubjects: 4, NumOrganizations: 3, Seed: 7}
	ds, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var works, authored int
	for _, tr := range ds.Triples {
		if tr.S == tr.O {
			t.Fatalf("self-loop generated: %+v", tr)
		}
		if !strings.HasPrefix(tr.S, BaseIRI) {
			t.Fatalf("unexpected subject namespace: %q", tr.S)
		}
		switch tr.P {
		case TypePred:
			if tr.O == ClassWork {
				works++
			}
		case PredAuthoredBy:
			authored++
			if !strings.Contains(tr.S, "/work/") || !strings.Contains(tr.O, "/person/") {
				t.Fatalf("authorship between wrong kinds: %+v", tr)
			}
		}
	}
	if works != cfg.NumWorks {
		t.Fatalf("expected %d works, got %d", cfg.NumWorks, works)
	}
	if authored < cfg.NumWorks {
		t.Fatalf("expected every work authored at least once, got %d authorships", authored)
	}
	for _, iri := range []string{BaseIRI + "person/0001", BaseIRI + "work/00001"} {
		if ds.Labels[iri] == "" {
			t.Fatalf("expected label for %s", iri)
		}
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(DefaultConfig()).Generate(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestEncodeNTriplesDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	ds, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var first, second strings.Builder
	if err := EncodeNTriples(&first, ds); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := EncodeNTriples(&second, ds); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.String() != second.String() {
		t.Fatal("expected identical serializations")
	}
	if !strings.Contains(first.String(), "rdf-schema#label") {
		t.Fatal("expected label statements in output")
	}
}
