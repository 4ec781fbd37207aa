package keywordindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeSplitsCamelCaseAndUnderscores(t *testing.T) {
	tokens := Tokenize("getUserById get_user_by_id")
	assert.Equal(t, []string{"get", "user", "by", "id", "get", "user", "by", "id"}, tokens)
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := Tokenize("a I do it go")
	assert.Equal(t, []string{"do", "it", "go"}, tokens)
}

func TestSearchRanksExactMatchHigher(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "function parseRequest handles the http request body")
	idx.AddDocument("b", "function renderResponse writes output")

	results := idx.Search("parseRequest", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "a", results[0].ChunkID)
}

func TestAddDocumentReplacesExisting(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "alpha beta gamma")
	idx.AddDocument("a", "delta epsilon")

	results := idx.Search("alpha", 10)
	assert.Empty(t, results)

	results = idx.Search("delta", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ChunkID)
}

func TestRemoveDocumentDropsEmptyPostingLists(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "unique token here")
	idx.RemoveDocument("a")

	results := idx.Search("unique", 10)
	assert.Empty(t, results)
	assert.Equal(t, 0, idx.totalLength)
	assert.Empty(t, idx.postings)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "hello world")
	idx.AddDocument("b", "goodbye world")

	data, err := idx.Serialize()
	require.NoError(t, err)

	idx2 := New()
	require.NoError(t, idx2.Deserialize(data))

	results := idx2.Search("hello", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ChunkID)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "searchable content here")

	path := filepath.Join(t.TempDir(), "keyword.json")
	require.NoError(t, idx.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	results := loaded.Search("searchable", 10)
	require.Len(t, results, 1)
}

func TestLoadFromFileMissingReturnsEmptyIndex(t *testing.T) {
	idx, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, idx.Search("anything", 10))
}

func TestWithWriteLockSerializesAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyword.json")
	var calls int
	err := WithWriteLock(path, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
