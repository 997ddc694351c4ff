// Package embeddings defines the text-to-vector contract used by ingestion
// and retrieval.
package embeddings

import "context"

// Provider produces vector representations for text. Implementations must be
// deterministic for a fixed model and safe for concurrent use.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedAll embeds texts in order, stopping at the first failure.
func EmbedAll(ctx context.Context, p Provider, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}
