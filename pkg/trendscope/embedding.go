package trendscope

import (
	"fmt"

	"github.com/cognicore/trendscope/pkg/trendscope/config"
	"github.com/cognicore/trendscope/pkg/trendscope/embed"
	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// NewEmbedder constructs the configured encoder, wrapped with the
// embedding cache when one is configured. apiKey is only consulted for
// providers that need one.
func NewEmbedder(cfg config.Config, apiKey string) (embed.Embedder, error) {
	var (
		encoder embed.Embedder
		err     error
	)
	switch cfg.Embedding.Provider {
	case config.ProviderHashing:
		encoder, err = embed.NewHashing(cfg.Embedding.Dim)
	case config.ProviderGemini:
		encoder, err = embed.NewGemini(apiKey, cfg.Embedding.Model, cfg.Embedding.Dim)
	default:
		err = fmt.Errorf("%w: unknown embedding provider %q", internalerr.ErrInvalidConfig, cfg.Embedding.Provider)
	}
	if err != nil {
		return nil, err
	}

	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	return embed.WithCache(encoder, cfg.Embedding.CacheSize, ttl), nil
}
