package planner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexlocal/codeintel/internal/discovery"
	"github.com/cortexlocal/codeintel/internal/gitutil"
	"github.com/cortexlocal/codeintel/internal/model"
)

func newTestDiscovery(t *testing.T, root string) *discovery.Discovery {
	t.Helper()
	d, err := discovery.New(root, []string{"go"}, nil)
	require.NoError(t, err)
	return d
}

func TestPlanFullReindexWhenNoPriorState(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

	p := New(root, newTestDiscovery(t, root), nil)
	plan, err := p.Plan(context.Background(), nil, nil, Config{EmbeddingModelID: "m", EmbeddingDimensions: 384})
	require.NoError(t, err)

	assert.True(t, plan.IsFull)
	assert.Len(t, plan.FilesToIndex, 1)
}

func TestPlanFullReindexWhenDimensionsChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

	state := &model.IndexState{EmbeddingModelID: "m", EmbeddingDimensions: 128}
	p := New(root, newTestDiscovery(t, root), nil)
	plan, err := p.Plan(context.Background(), state, nil, Config{EmbeddingModelID: "m", EmbeddingDimensions: 384})
	require.NoError(t, err)

	assert.True(t, plan.IsFull)
}

func TestPlanGitDiffIncremental(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "added.go"), []byte("package main\n"), 0o644))

	commit := "abc123"
	state := &model.IndexState{EmbeddingModelID: "m", EmbeddingDimensions: 384, LastIndexedCommit: &commit}

	mockGit := gitutil.NewMockOperations()
	mockGit.DiffResult = map[string]gitutil.ChangeStatus{
		"added.go":   gitutil.StatusAdded,
		"removed.go": gitutil.StatusDeleted,
	}

	p := New(root, newTestDiscovery(t, root), mockGit)
	plan, err := p.Plan(context.Background(), state, nil, Config{EmbeddingModelID: "m", EmbeddingDimensions: 384})
	require.NoError(t, err)

	assert.False(t, plan.IsFull)
	require.Len(t, plan.FilesToIndex, 1)
	assert.Equal(t, "added.go", plan.FilesToIndex[0].RelPath)
	assert.Equal(t, []string{"removed.go"}, plan.FilesToRemove)
}

func TestPlanDegradesToFileHashOnGitError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

	commit := "abc123"
	state := &model.IndexState{EmbeddingModelID: "m", EmbeddingDimensions: 384, LastIndexedCommit: &commit}

	mockGit := gitutil.NewMockOperations()
	mockGit.DiffErr = assert.AnError

	p := New(root, newTestDiscovery(t, root), mockGit)
	plan, err := p.Plan(context.Background(), state, FileHashes{}, Config{EmbeddingModelID: "m", EmbeddingDimensions: 384})
	require.NoError(t, err)

	assert.Contains(t, plan.Reason, "degraded")
	assert.Len(t, plan.FilesToIndex, 1)
}

func TestPlanFileHashFallbackDetectsUnchangedAndDeleted(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	d := newTestDiscovery(t, root)
	refs, err := d.Discover()
	require.NoError(t, err)
	hashes, err := ComputeFileHashes(refs)
	require.NoError(t, err)
	hashes["gone.go"] = FileHash{ModTime: 1, SHA256: "stale"}

	mockGit := gitutil.NewMockOperations()
	mockGit.Repo = false

	state := &model.IndexState{EmbeddingModelID: "m", EmbeddingDimensions: 384}
	p := New(root, d, mockGit)
	plan, err := p.Plan(context.Background(), state, hashes, Config{EmbeddingModelID: "m", EmbeddingDimensions: 384})
	require.NoError(t, err)

	assert.Empty(t, plan.FilesToIndex)
	assert.Equal(t, 1, plan.Stats.Unchanged)
	assert.Equal(t, []string{"gone.go"}, plan.FilesToRemove)
	assert.Equal(t, 1, plan.Stats.Deleted)
}
