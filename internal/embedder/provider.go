// Package embedder wraps the local embedding model contract of spec
// §4.3: embed_document/embed_query variants, batching that preserves
// order, and ModelNotReady/DimensionMismatch failures. Grounded on the
// teacher's internal/embed package (Provider interface, factory,
// mock), with the subprocess-management half of local.go replaced by
// a plain HTTP client against an already-running inference server —
// spec §9 puts on-disk model distribution out of scope.
package embedder

import (
	"context"

	"github.com/cortexlocal/codeintel/internal/model"
)

// Mode selects the asymmetric prefix the backing model expects.
type Mode string

const (
	ModeQuery    Mode = "query"
	ModeDocument Mode = "passage"
)

// Provider embeds text into L2-normalized, fixed-dimension vectors.
type Provider interface {
	// Embed converts texts into vectors in the given mode, preserving order.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimensions returns D, the configured output dimension.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}

// EmbedBatch processes texts in fixed-size batches, preserving order,
// per spec §4.3.
func EmbedBatch(ctx context.Context, p Provider, texts []string, mode Mode, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	if batchSize == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := p.Embed(ctx, texts[start:end], mode)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func errModelNotReady(detail string) error {
	return model.New(model.ErrModelNotReady, "embedding model not ready: %s", detail)
}

func errDimensionMismatch(got, want int) error {
	return model.New(model.ErrDimensionMismatch, "embedder returned dimension %d, want %d", got, want).
		WithDetails(map[string]any{"got": got, "want": want})
}
