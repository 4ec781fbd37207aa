package vectorstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVec(t *testing.T, dims int, hot int) []float32 {
	t.Helper()
	v := make([]float32, dims)
	v[hot] = 1.0
	return v
}

func TestUpsertAndNearest(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(dbPath, 4)
	require.NoError(t, err)
	defer s.Close()

	err = s.Upsert([]Record{
		{ChunkID: "a", RelativePath: "a.go", Language: "go", Vector: unitVec(t, 4, 0)},
		{ChunkID: "b", RelativePath: "b.rs", Language: "rust", Vector: unitVec(t, 4, 1)},
	})
	require.NoError(t, err)

	n, err := s.CountRows()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	matches, err := s.Nearest(unitVec(t, 4, 0), 2, Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "a", matches[0].ChunkID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
}

func TestNearestWithLanguageFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(dbPath, 4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Upsert([]Record{
		{ChunkID: "a", RelativePath: "a.go", Language: "go", Vector: unitVec(t, 4, 0)},
		{ChunkID: "b", RelativePath: "b.rs", Language: "rust", Vector: unitVec(t, 4, 0)},
	}))

	matches, err := s.Nearest(unitVec(t, 4, 0), 10, Filter{Language: "rust"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].ChunkID)
}

func TestDeleteByPathRemovesAllChunksForFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(dbPath, 4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Upsert([]Record{
		{ChunkID: "a:1", RelativePath: "a.go", Language: "go", Vector: unitVec(t, 4, 0)},
		{ChunkID: "a:2", RelativePath: "a.go", Language: "go", Vector: unitVec(t, 4, 1)},
		{ChunkID: "b:1", RelativePath: "b.go", Language: "go", Vector: unitVec(t, 4, 2)},
	}))

	require.NoError(t, s.DeleteByPath("a.go"))

	n, err := s.CountRows()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetChunksReconstructsFields(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(dbPath, 4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Upsert([]Record{
		{
			ChunkID: "a.go:1:3", RelativePath: "a.go", Language: "go", Kind: "function",
			Name: "Foo", StartLine: 1, EndLine: 3, Code: "func Foo() {}",
			TokenEstimate: 4, Vector: unitVec(t, 4, 0),
		},
	}))

	got, err := s.GetChunks([]string{"a.go:1:3", "missing"})
	require.NoError(t, err)
	require.Contains(t, got, "a.go:1:3")
	assert.NotContains(t, got, "missing")
	c := got["a.go:1:3"]
	assert.Equal(t, "Foo", c.Name)
	assert.Equal(t, 1, c.StartLine)
	assert.Equal(t, "func Foo() {}", c.Code)
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(dbPath, 4)
	require.NoError(t, err)
	defer s.Close()

	err = s.Upsert([]Record{{ChunkID: "a", RelativePath: "a.go", Language: "go", Vector: make([]float32, 3)}})
	assert.Error(t, err)
}
