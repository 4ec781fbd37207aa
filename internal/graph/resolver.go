package graph

import (
	"context"
	"fmt"

	"github.com/cortexlocal/codeintel/internal/discovery"
)

// Resolver implements find_symbol (spec §4.5.2). No LSP session is
// wired in this tree (the spec prefers one when available), so every
// Resolver result is produced by the tree-sitter fallback scan and
// reports Source: SourceTreeSitter.
type Resolver struct {
	rootDir string
	disc    *discovery.Discovery
	cache   *FileCache
}

// NewResolver builds a resolver scoped to one project tree, reusing
// disc's ignore rules and supported-language set so find_symbol sees
// exactly the files the indexer would chunk.
func NewResolver(rootDir string, disc *discovery.Discovery) (*Resolver, error) {
	cache, err := NewFileCache()
	if err != nil {
		return nil, err
	}
	return &Resolver{rootDir: rootDir, disc: disc, cache: cache}, nil
}

// Close releases the resolver's file cache.
func (r *Resolver) Close() {
	r.cache.Close()
}

// buildFileGraph discovers every eligible file, registers it in the
// arena, and wires import edges by matching each file's import
// specifiers against the other discovered files' stems.
func (r *Resolver) buildFileGraph() (*FileGraph, map[string]discovery.FileRef, error) {
	refs, err := r.disc.Discover()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover files for symbol resolution: %w", err)
	}

	fg := NewFileGraph()
	byPath := make(map[string]discovery.FileRef, len(refs))
	candidates := make(map[string]bool, len(refs))
	for _, ref := range refs {
		fg.AddFile(ref.RelPath, ref.Language)
		byPath[ref.RelPath] = ref
		candidates[ref.RelPath] = true
	}

	for _, ref := range refs {
		data, err := r.cache.Read(ref.Path)
		if err != nil {
			continue
		}
		for _, spec := range extractImportSpecs(ref.Language, data) {
			if target := resolveImportToFile(spec, candidates); target != "" {
				fg.AddImport(ref.RelPath, target)
			}
		}
	}

	return fg, byPath, nil
}

// FindSymbol returns every definition and reference of name, scoped to
// the transitive closure of entryPoints when given, or the whole
// indexed tree otherwise (spec §4.5.2).
func (r *Resolver) FindSymbol(ctx context.Context, name string, entryPoints []string) (*Result, error) {
	fg, byPath, err := r.buildFileGraph()
	if err != nil {
		return nil, err
	}

	var scope []string
	if len(entryPoints) > 0 {
		scope = fg.TransitiveClosure(entryPoints)
	} else {
		scope = fg.AllFiles()
	}

	result := &Result{SymbolName: name, Source: SourceTreeSitter}

	for _, relPath := range scope {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ref, ok := byPath[relPath]
		if !ok {
			continue
		}
		data, err := r.cache.Read(ref.Path)
		if err != nil {
			continue
		}

		for _, loc := range scanFile(ref.Language, relPath, name, data) {
			if loc.Kind == KindDefinition {
				result.Definitions = append(result.Definitions, loc)
			} else {
				result.References = append(result.References, loc)
			}
		}
	}

	return result, nil
}
