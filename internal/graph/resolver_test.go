package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexlocal/codeintel/internal/discovery"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestFindSymbolLocatesDefinitionAndReferences(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "greeter.go", `package sample

func Greet(name string) string {
	return "hello " + name
}
`)
	writeFile(t, root, "main.go", `package sample

func run() {
	Greet("world")
	Greet("again")
}
`)

	disc, err := discovery.New(root, []string{"go"}, nil)
	require.NoError(t, err)

	resolver, err := NewResolver(root, disc)
	require.NoError(t, err)
	defer resolver.Close()

	result, err := resolver.FindSymbol(context.Background(), "Greet", nil)
	require.NoError(t, err)

	assert.Equal(t, "Greet", result.SymbolName)
	assert.Equal(t, SourceTreeSitter, result.Source)
	require.Len(t, result.Definitions, 1)
	assert.Equal(t, "greeter.go", result.Definitions[0].RelativePath)
	assert.GreaterOrEqual(t, len(result.References), 2)
}

func TestFindSymbolScopesToEntryPointClosure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "used/used.go", `package used

func Helper() int {
	return 1
}
`)
	writeFile(t, root, "excluded/excluded.go", `package excluded

func Helper() int {
	return 2
}
`)
	writeFile(t, root, "entry.go", `package sample

import "example.com/sample/used"

func run() {
	used.Helper()
}
`)

	disc, err := discovery.New(root, []string{"go"}, nil)
	require.NoError(t, err)

	resolver, err := NewResolver(root, disc)
	require.NoError(t, err)
	defer resolver.Close()

	result, err := resolver.FindSymbol(context.Background(), "Helper", []string{"entry.go"})
	require.NoError(t, err)

	all := append(append([]Location{}, result.Definitions...), result.References...)
	var paths []string
	for _, loc := range all {
		paths = append(paths, loc.RelativePath)
		assert.NotEqual(t, "excluded/excluded.go", loc.RelativePath)
	}
	assert.Contains(t, paths, "used/used.go")
}

func TestFileGraphTransitiveClosureHandlesCycles(t *testing.T) {
	fg := NewFileGraph()
	fg.AddFile("a.go", "go")
	fg.AddFile("b.go", "go")
	fg.AddFile("c.go", "go")
	fg.AddImport("a.go", "b.go")
	fg.AddImport("b.go", "c.go")
	fg.AddImport("c.go", "a.go")

	closure := fg.TransitiveClosure([]string{"a.go"})
	assert.ElementsMatch(t, []string{"a.go", "b.go", "c.go"}, closure)
}
