package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Endpoint EndpointConfig
	Bolt     BoltConfig
	Search   SearchConfig
	Logging  LoggingConfig

	// Backend selects where edges are fetched from: "sparql" or "bolt".
	Backend string
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// EndpointConfig describes the default remote SPARQL query endpoint.
// Callers may still override the endpoint per exploration.
type EndpointConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// BoltConfig describes connectivity to a Neo4j-compatible graph database
// used as an alternative edge source.
type BoltConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// SearchConfig carries the default exploration tuning parameters.
type SearchConfig struct {
	Topic        string
	MaxResults   int
	MaxDepth     int
	PerHopLimit  int
	MinRelevance float64
	DepthPenalty float64
	FanOut       int
	RetryBackoff time.Duration
	LabelPath    string
	SchemaOnly   bool
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Colored       bool
	IncludeCaller bool
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultBackend         = "sparql"
	defaultSparqlTimeout   = 15 * time.Second
	defaultBoltMaxSessions = 10
	defaultMaxResults      = 5
	defaultMaxDepth        = 4
	defaultPerHopLimit     = 50
	defaultMinRelevance    = 0.15
	defaultDepthPenalty    = 0.05
	defaultFanOut          = 4
	defaultRetryBackoff    = 250 * time.Millisecond
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host: valueOrDefault("SERVER_HOST", defaultHost),
		},
		Endpoint: EndpointConfig{
			URL:       os.Getenv("SPARQL_ENDPOINT"),
			UserAgent: valueOrDefault("SPARQL_USER_AGENT", ""),
		},
		Bolt: BoltConfig{
			URI:            os.Getenv("BOLT_URI"),
			Database:       valueOrDefault("BOLT_DATABASE", ""),
			Username:       os.Getenv("BOLT_USERNAME"),
			Password:       os.Getenv("BOLT_PASSWORD"),
			MaxConnections: parseIntWithDefault("BOLT_MAX_CONNECTIONS", defaultBoltMaxSessions),
		},
		Search: SearchConfig{
			Topic:        os.Getenv("EXPLORE_TOPIC"),
			MaxResults:   parseIntWithDefault("EXPLORE_MAX_RESULTS", defaultMaxResults),
			MaxDepth:     parseIntWithDefault("EXPLORE_MAX_DEPTH", defaultMaxDepth),
			PerHopLimit:  parseIntWithDefault("EXPLORE_PER_HOP_LIMIT", defaultPerHopLimit),
			MinRelevance: parseFloatWithDefault("EXPLORE_MIN_RELEVANCE", defaultMinRelevance),
			DepthPenalty: parseFloatWithDefault("EXPLORE_DEPTH_PENALTY", defaultDepthPenalty),
			FanOut:       parseIntWithDefault("EXPLORE_FAN_OUT", defaultFanOut),
			LabelPath:    os.Getenv("EXPLORE_LABEL_PATH"),
			SchemaOnly:   parseBoolWithDefault("EXPLORE_SCHEMA_ONLY", false),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			Colored:       parseBoolWithDefault("LOG_COLOR", false),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Backend: strings.ToLower(valueOrDefault("GRAPH_BACKEND", defaultBackend)),
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	if cfg.Backend != "sparql" && cfg.Backend != "bolt" {
		return Config{}, fmt.Errorf("unknown GRAPH_BACKEND %q", cfg.Backend)
	}

	durations := []struct {
		key  string
		dst  *time.Duration
		def  time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout, defaultReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout, defaultWriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout, defaultIdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout, defaultShutdownTimeout},
		{"SPARQL_TIMEOUT", &cfg.Endpoint.Timeout, defaultSparqlTimeout},
		{"EXPLORE_RETRY_BACKOFF", &cfg.Search.RetryBackoff, defaultRetryBackoff},
	}
	for _, d := range durations {
		*d.dst = d.def
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", false)
	cfg.HTTP.AllowedOriginsCSV = os.Getenv("SERVER_ALLOWED_ORIGINS")

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseFloatWithDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

// AllowedOrigins splits the configured CSV into a clean origin list.
func (c HTTPConfig) AllowedOrigins() []string {
	if c.AllowedOriginsCSV == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOriginsCSV, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
