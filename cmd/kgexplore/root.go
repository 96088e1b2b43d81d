package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tanviarora/kgexplore/internal/config"
	"github.com/tanviarora/kgexplore/internal/explore"
	"github.com/tanviarora/kgexplore/internal/graph"
	"github.com/tanviarora/kgexplore/internal/logging"
	"github.com/tanviarora/kgexplore/internal/sparql"
)

// NewRootCmd builds the one-shot exploration command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kgexplore <source-iri> <target-iri>",
		Short: "Discover connection paths between two knowledge graph entities",
		Long: "Runs a bounded bidirectional search between two entities over a remote " +
			"SPARQL endpoint (or a Neo4j database) and prints the discovered paths " +
			"as a tree, most relevant first.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExplore,
	}

	cmd.Flags().String("endpoint", "", "SPARQL endpoint URL (default from SPARQL_ENDPOINT)")
	cmd.Flags().String("topic", "", "topic guiding relevance ranking")
	cmd.Flags().Int("max-results", 0, "maximum number of paths to keep")
	cmd.Flags().Int("max-depth", 0, "maximum total hops per path")
	cmd.Flags().String("label-path", "", "property path used to fetch labels, e.g. kg:authoredBy.rdfs:label")
	cmd.Flags().Bool("schema-only", false, "restrict traversal to schema predicates")
	cmd.Flags().Duration("timeout", 2*time.Minute, "overall exploration timeout")

	return cmd
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging)

	fetcher, err := buildFetcher(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := fetcher.Close(context.Background()); err != nil {
			logger.Warn("closing edge fetcher failed", "error", err)
		}
	}()

	opts := optionsFromFlags(cmd, cfg.Search)

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	engine := explore.New(fetcher, nil, logger)
	text, err := engine.ExploreTree(ctx, args[0], args[1], opts)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

func buildFetcher(cmd *cobra.Command, cfg config.Config) (graph.EdgeFetcher, error) {
	if cfg.Backend == "bolt" {
		return graph.NewNeo4jFetcher(cmd.Context(), graph.Neo4jOptions{
			URI:            cfg.Bolt.URI,
			Database:       cfg.Bolt.Database,
			Username:       cfg.Bolt.Username,
			Password:       cfg.Bolt.Password,
			MaxConnections: cfg.Bolt.MaxConnections,
		})
	}

	endpoint, _ := cmd.Flags().GetString("endpoint")
	if endpoint == "" {
		endpoint = cfg.Endpoint.URL
	}
	if endpoint == "" {
		return nil, errors.New("no endpoint configured: pass --endpoint or set SPARQL_ENDPOINT")
	}
	client, err := sparql.NewHTTPClient(sparql.Options{
		Endpoint:  endpoint,
		Timeout:   cfg.Endpoint.Timeout,
		UserAgent: cfg.Endpoint.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	return graph.NewSparqlFetcher(client), nil
}

func optionsFromFlags(cmd *cobra.Command, defaults config.SearchConfig) explore.Options {
	opts := explore.Options{
		Topic:        defaults.Topic,
		MaxResults:   defaults.MaxResults,
		MaxDepth:     defaults.MaxDepth,
		PerHopLimit:  defaults.PerHopLimit,
		MinRelevance: defaults.MinRelevance,
		DepthPenalty: defaults.DepthPenalty,
		FanOut:       defaults.FanOut,
		RetryBackoff: defaults.RetryBackoff,
		LabelPath:    defaults.LabelPath,
	}

	if v, _ := cmd.Flags().GetString("topic"); v != "" {
		opts.Topic = v
	}
	if v, _ := cmd.Flags().GetInt("max-results"); v != 0 {
		opts.MaxResults = v
	}
	if v, _ := cmd.Flags().GetInt("max-depth"); v != 0 {
		opts.MaxDepth = v
	}
	if v, _ := cmd.Flags().GetString("label-path"); v != "" {
		opts.LabelPath = v
	}
	schemaOnly, _ := cmd.Flags().GetBool("schema-only")
	if schemaOnly || defaults.SchemaOnly {
		opts.Predicates = graph.SchemaPredicates
	}
	return opts
}
