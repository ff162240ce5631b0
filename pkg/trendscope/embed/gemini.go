package embed

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// DefaultGeminiModel is the embedding model used when none is configured.
const DefaultGeminiModel = "text-embedding-004"

// Gemini encodes documents through the Gemini embedding API. It is the
// domain-tuned encoder variant: slower and nondeterministic across model
// updates, but semantically much stronger than the hashing encoder.
type Gemini struct {
	apiKey string
	model  string
	dim    int
}

// NewGemini creates a Gemini-backed encoder. The API key is required;
// without it the encoder is unusable and the batch would fail anyway,
// so construction fails fast.
func NewGemini(apiKey, model string, dim int) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key missing", internalerr.ErrEncoderUnavailable)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: gemini embedding dimension must be positive, got %d", internalerr.ErrInvalidConfig, dim)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, model: model, dim: dim}, nil
}

func (g *Gemini) Dim() int {
	return g.dim
}

// Encode embeds the whole batch. Any API failure aborts the batch with no
// partial results.
func (g *Gemini) Encode(ctx context.Context, docs []string) ([][]float64, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrEncoderUnavailable, err)
	}

	dims := int32(g.dim)
	config := &genai.EmbedContentConfig{
		TaskType:             "CLUSTERING",
		OutputDimensionality: &dims,
	}

	out := make([][]float64, len(docs))
	for i, doc := range docs {
		resp, err := client.Models.EmbedContent(
			ctx,
			g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: doc}}}},
			config,
		)
		if err != nil {
			return nil, fmt.Errorf("gemini embed document %d: %w", i, err)
		}
		if len(resp.Embeddings) == 0 {
			return nil, fmt.Errorf("gemini embed document %d: empty response", i)
		}
		values := resp.Embeddings[0].Values
		if len(values) != g.dim {
			return nil, fmt.Errorf("gemini embed document %d: got dimension %d, want %d", i, len(values), g.dim)
		}
		vec := make([]float64, len(values))
		for j, v := range values {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	return out, nil
}
