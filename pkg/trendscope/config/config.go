// Package config loads and validates engine configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// Embedding provider names.
const (
	ProviderHashing = "hashing"
	ProviderGemini  = "gemini"
)

// Reduction method names.
const (
	MethodNeighbor = "neighbor"
	MethodPCA      = "pca"
)

// Config is the full engine configuration.
type Config struct {
	Embedding  Embedding  `yaml:"embedding"`
	Reduction  Reduction  `yaml:"reduction"`
	Clustering Clustering `yaml:"clustering"`
	Keywords   Keywords   `yaml:"keywords"`
	Trends     Trends     `yaml:"trends"`

	// StoplistPath optionally replaces the built-in stopword list.
	StoplistPath string `yaml:"stoplist"`
}

// Embedding selects and sizes the encoder.
type Embedding struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Dim       int    `yaml:"dim"`
	CacheSize int    `yaml:"cache_size"`
	CacheTTL  string `yaml:"cache_ttl"`
}

// Reduction configures the dimensionality reducer.
type Reduction struct {
	Method     string `yaml:"method"`
	Components int    `yaml:"components"`
	Neighbors  int    `yaml:"neighbors"`
	MinPoints  int    `yaml:"min_points"`
	Fallback   string `yaml:"fallback"`
	Seed       int64  `yaml:"seed"`
}

// Clustering configures the density cluster assigner.
type Clustering struct {
	MinClusterSize int     `yaml:"min_cluster_size"`
	MinSamples     int     `yaml:"min_samples"`
	Epsilon        float64 `yaml:"epsilon"`
}

// Keywords configures topic description.
type Keywords struct {
	TopK int `yaml:"top_k"`
}

// Trends configures temporal aggregation.
type Trends struct {
	Granularity string `yaml:"granularity"`
}

// Default returns the baseline configuration: hashing encoder, neighbor
// embedding to 2 components with PCA fallback, moderate cluster size.
func Default() Config {
	return Config{
		Embedding: Embedding{
			Provider:  ProviderHashing,
			Dim:       64,
			CacheSize: 4096,
			CacheTTL:  "1h",
		},
		Reduction: Reduction{
			Method:     MethodNeighbor,
			Components: 2,
			Neighbors:  15,
			MinPoints:  10,
			Fallback:   "pca",
			Seed:       42,
		},
		Clustering: Clustering{
			MinClusterSize: 5,
			MinSamples:     1,
			Epsilon:        0, // auto
		},
		Keywords: Keywords{TopK: 5},
		Trends:   Trends{Granularity: "day"},
	}
}

// Load reads a YAML config file over the defaults and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration; all violations wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderHashing, ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", internalerr.ErrInvalidConfig, c.Embedding.Provider)
	}
	if c.Embedding.Dim <= 0 {
		return fmt.Errorf("%w: embedding dim must be positive, got %d", internalerr.ErrInvalidConfig, c.Embedding.Dim)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	switch c.Reduction.Method {
	case MethodNeighbor, MethodPCA:
	default:
		return fmt.Errorf("%w: unknown reduction method %q", internalerr.ErrInvalidConfig, c.Reduction.Method)
	}
	if c.Reduction.Components <= 0 {
		return fmt.Errorf("%w: reduction components must be positive, got %d", internalerr.ErrInvalidConfig, c.Reduction.Components)
	}
	switch c.Reduction.Fallback {
	case "pca", "error":
	default:
		return fmt.Errorf("%w: unknown reduction fallback %q", internalerr.ErrInvalidConfig, c.Reduction.Fallback)
	}

	if c.Clustering.MinClusterSize < 2 {
		return fmt.Errorf("%w: min_cluster_size must be at least 2, got %d", internalerr.ErrInvalidConfig, c.Clustering.MinClusterSize)
	}
	if c.Clustering.MinSamples < 1 {
		return fmt.Errorf("%w: min_samples must be at least 1, got %d", internalerr.ErrInvalidConfig, c.Clustering.MinSamples)
	}
	if c.Clustering.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon cannot be negative, got %g", internalerr.ErrInvalidConfig, c.Clustering.Epsilon)
	}

	if c.Keywords.TopK < 1 {
		return fmt.Errorf("%w: keywords top_k must be at least 1, got %d", internalerr.ErrInvalidConfig, c.Keywords.TopK)
	}

	switch c.Trends.Granularity {
	case "day", "week", "month":
	default:
		return fmt.Errorf("%w: unknown bucket granularity %q", internalerr.ErrInvalidConfig, c.Trends.Granularity)
	}

	return nil
}

// CacheTTL parses the embedding cache TTL. Empty means no expiry-driven
// cache (zero duration).
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Embedding.CacheTTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.Embedding.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("%w: bad cache_ttl %q: %v", internalerr.ErrInvalidConfig, c.Embedding.CacheTTL, err)
	}
	return ttl, nil
}

// Stoplist is the stopword list file format.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
