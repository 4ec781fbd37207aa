package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderIsDeterministic(t *testing.T) {
	p := NewMockProvider(16)
	ctx := context.Background()

	a, err := p.Embed(ctx, []string{"hello world"}, ModeQuery)
	require.NoError(t, err)
	b, err := p.Embed(ctx, []string{"hello world"}, ModeQuery)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a[0], 16)
}

func TestMockProviderUnitNorm(t *testing.T) {
	p := NewMockProvider(8)
	vecs, err := p.Embed(context.Background(), []string{"x"}, ModeDocument)
	require.NoError(t, err)

	var sumSq float64
	for _, x := range vecs[0] {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-4)
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	p := NewMockProvider(4)
	texts := []string{"a", "b", "c", "d", "e"}

	batched, err := EmbedBatch(context.Background(), p, texts, ModeDocument, 2)
	require.NoError(t, err)
	whole, err := p.Embed(context.Background(), texts, ModeDocument)
	require.NoError(t, err)

	require.Len(t, batched, len(texts))
	assert.Equal(t, whole, batched)
}

func TestMockProviderEmbedError(t *testing.T) {
	p := NewMockProvider(4)
	p.SetEmbedError(assert.AnError)

	_, err := p.Embed(context.Background(), []string{"x"}, ModeQuery)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMockProviderCloseTracksState(t *testing.T) {
	p := NewMockProvider(4)
	assert.False(t, p.IsClosed())
	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "openai"})
	assert.Error(t, err)
}
