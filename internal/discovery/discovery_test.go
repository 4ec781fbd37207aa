package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestDiscoverFiltersIgnoredAndUnsupported(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "README.md", "# hi\n")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, root, "node_modules/x/index.js", "module.exports = {}\n")

	d, err := New(root, []string{"go", "javascript"}, []string{"vendor/**", "node_modules/**"})
	require.NoError(t, err)

	refs, err := d.Discover()
	require.NoError(t, err)

	var paths []string
	for _, r := range refs {
		paths = append(paths, r.RelPath)
	}
	assert.Contains(t, paths, "main.go")
	assert.NotContains(t, paths, "README.md")
	assert.NotContains(t, paths, "vendor/dep/dep.go")
	assert.NotContains(t, paths, "node_modules/x/index.js")
}

func TestDiscoverExcludesBinary(t *testing.T) {
	root := t.TempDir()
	binPath := filepath.Join(root, "blob.go")
	require.NoError(t, os.WriteFile(binPath, []byte("package x\x00\x01\x02"), 0o644))

	d, err := New(root, []string{"go"}, nil)
	require.NoError(t, err)

	refs, err := d.Discover()
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestDiscoverSkipsCodeintelDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".codeintel/state.json", "{}")
	writeFile(t, root, "app.py", "print('hi')\n")

	d, err := New(root, []string{"python"}, nil)
	require.NoError(t, err)

	refs, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "app.py", refs[0].RelPath)
}
