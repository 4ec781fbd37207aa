package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexlocal/codeintel/internal/embedder"
	"github.com/cortexlocal/codeintel/internal/keywordindex"
	"github.com/cortexlocal/codeintel/internal/model"
	"github.com/cortexlocal/codeintel/internal/store"
)

func newTestIndex(t *testing.T) (*store.DualIndex, embedder.Provider) {
	t.Helper()
	d, err := store.Open(t.TempDir(), 8)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, embedder.NewMockProvider(8)
}

func indexChunk(t *testing.T, d *store.DualIndex, p embedder.Provider, c model.Chunk) {
	t.Helper()
	require.NoError(t, store.EmbedAndApplyFile(context.Background(), d, p, c.RelativePath, []model.Chunk{c}))
}

func TestSearchReturnsBothLiteralAndParaphraseMatches(t *testing.T) {
	d, p := newTestIndex(t)

	literal := model.Chunk{
		ID: "a.go:1:3", RelativePath: "a.go", Language: "go", Kind: model.KindFunction,
		Name: "getUserById", Code: "func getUserById(id int) User { return lookup(id) }",
		LastUpdated: time.Now(),
	}
	paraphrase := model.Chunk{
		ID: "b.go:1:3", RelativePath: "b.go", Language: "go", Kind: model.KindFunction,
		Name: "fetchAccountByIdentifier", Code: "func fetchAccountByIdentifier(id int) Account { return store.Get(id) }",
		LastUpdated: time.Now(),
	}
	indexChunk(t, d, p, literal)
	indexChunk(t, d, p, paraphrase)

	searcher := NewSearcher(d, p)
	results, err := searcher.Search(context.Background(), Request{Query: "getUserById", K: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	var gotLiteral, gotParaphrase bool
	for _, r := range results {
		if r.ChunkID == literal.ID {
			gotLiteral = true
			assert.Greater(t, r.KwScore, 0.0)
		}
		if r.ChunkID == paraphrase.ID {
			gotParaphrase = true
		}
	}
	assert.True(t, gotLiteral)
	assert.True(t, gotParaphrase)
}

func TestSearchLanguageFilter(t *testing.T) {
	d, p := newTestIndex(t)
	indexChunk(t, d, p, model.Chunk{
		ID: "a.go:1:3", RelativePath: "a.go", Language: "go", Kind: model.KindFunction,
		Name: "Handler", Code: "func Handler() {}", LastUpdated: time.Now(),
	})
	indexChunk(t, d, p, model.Chunk{
		ID: "b.rs:1:3", RelativePath: "b.rs", Language: "rust", Kind: model.KindFunction,
		Name: "handler", Code: "fn handler() {}", LastUpdated: time.Now(),
	})

	searcher := NewSearcher(d, p)
	results, err := searcher.Search(context.Background(), Request{Query: "handler", K: 5, LanguageFilter: "rust"})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "b.rs", r.RelativePath)
	}
}

func TestSearchDegradedForcesKeywordOnly(t *testing.T) {
	d, p := newTestIndex(t)
	indexChunk(t, d, p, model.Chunk{
		ID: "a.go:1:3", RelativePath: "a.go", Language: "go", Kind: model.KindFunction,
		Name: "Widget", Code: "func Widget() {}", LastUpdated: time.Now(),
	})

	searcher := NewSearcher(d, p)
	searcher.SetAlpha(0)

	results, err := searcher.Search(context.Background(), Request{Query: "Widget", K: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 0.0, results[0].SemScore)
}

func TestMinMaxNormalizeEqualScoresYieldZero(t *testing.T) {
	results := []keywordindex.Result{{ChunkID: "a", Score: 1.0}, {ChunkID: "b", Score: 1.0}}
	norm := minMaxNormalize(results)
	assert.Equal(t, 0.0, norm["a"])
	assert.Equal(t, 0.0, norm["b"])
}

func TestEmptyQueryRejected(t *testing.T) {
	d, p := newTestIndex(t)
	searcher := NewSearcher(d, p)
	_, err := searcher.Search(context.Background(), Request{Query: ""})
	assert.Error(t, err)
}
