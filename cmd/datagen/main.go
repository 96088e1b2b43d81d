package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tanviarora/kgexplore/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		people      = flag.Int("people", cfg.NumPeople, "number of people to generate")
		works       = flag.Int("works", cfg.NumWorks, "number of works to generate")
		subjects    = flag.Int("subjects", cfg.NumSubjects, "number of subjects to generate")
		orgs        = flag.Int("orgs", cfg.NumOrganizations, "number of organizations to generate")
		affiliation = flag.Float64("affiliation-chance", cfg.AffiliationChance, "probability a person is affiliated with an organization")
		citation    = flag.Float64("citation-chance", cfg.CitationChance, "per-work probability of citing an earlier work")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "data", "directory to write graph.nt")
		writeStdout = flag.Bool("stdout", false, "write N-Triples to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumPeople:         *people,
		NumWorks:          *works,
		NumSubjects:       *subjects,
		NumOrganizations:  *orgs,
		AffiliationChance: clampProbability(*affiliation),
		CitationChance:    clampProbability(*citation),
		Seed:              *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := generator.EncodeNTriples(os.Stdout, dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d statements and %d labels into %s\n", len(dataset.Triples), len(dataset.Labels), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
