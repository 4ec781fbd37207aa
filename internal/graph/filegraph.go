package graph

import (
	"github.com/dominikbraun/graph"
)

// FileNode is one file's arena entry (spec §9's "arena of FileNode
// records addressed by integer index").
type FileNode struct {
	RelPath  string
	Language string
}

// FileGraph is the import/dependency graph used to scope find_symbol
// to an entry-point transitive closure. Edges carry arena indices, not
// owning handles, and traversal uses dominikbraun/graph's adjacency
// map with an explicit visited set, so shared and cyclic imports
// terminate cleanly (spec §9).
type FileGraph struct {
	nodes []FileNode
	index map[string]int
	g     graph.Graph[int, int]
}

// NewFileGraph creates an empty file dependency graph.
func NewFileGraph() *FileGraph {
	return &FileGraph{
		index: make(map[string]int),
		g:     graph.New(graph.IntHash, graph.Directed()),
	}
}

// AddFile registers relPath in the arena if it isn't already present
// and returns its index.
func (fg *FileGraph) AddFile(relPath, language string) int {
	if i, ok := fg.index[relPath]; ok {
		return i
	}
	i := len(fg.nodes)
	fg.nodes = append(fg.nodes, FileNode{RelPath: relPath, Language: language})
	fg.index[relPath] = i
	_ = fg.g.AddVertex(i)
	return i
}

// AddImport records that fromRelPath imports toRelPath. Both files
// must already be registered via AddFile; unknown paths are ignored,
// since an import may point outside the indexed tree (a third-party
// package, say).
func (fg *FileGraph) AddImport(fromRelPath, toRelPath string) {
	from, ok := fg.index[fromRelPath]
	if !ok {
		return
	}
	to, ok := fg.index[toRelPath]
	if !ok {
		return
	}
	// Duplicate or self edges are harmless; AddEdge errors on either
	// are not actionable here.
	_ = fg.g.AddEdge(from, to)
}

// TransitiveClosure returns every registered file reachable from the
// given entry relative paths (entries included), using an explicit
// visited set keyed by arena index to terminate cycles.
func (fg *FileGraph) TransitiveClosure(entryRelPaths []string) []string {
	visited := make(map[int]bool)
	var order []int

	adjacency, err := fg.g.AdjacencyMap()
	if err != nil {
		adjacency = map[int]map[int]graph.Edge[int]{}
	}

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		order = append(order, i)
		for to := range adjacency[i] {
			visit(to)
		}
	}

	for _, rp := range entryRelPaths {
		if i, ok := fg.index[rp]; ok {
			visit(i)
		}
	}

	out := make([]string, 0, len(order))
	for _, i := range order {
		out = append(out, fg.nodes[i].RelPath)
	}
	return out
}

// AllFiles returns every registered file's relative path, for the
// no-entry-point case where find_symbol scans the whole indexed tree.
func (fg *FileGraph) AllFiles() []string {
	out := make([]string, len(fg.nodes))
	for i, n := range fg.nodes {
		out[i] = n.RelPath
	}
	return out
}
