// Package graph implements the symbol resolver (spec §4.5.2): find a
// name's definitions and references across the indexed tree, scoped
// to an entry-point transitive closure when one is given. Grounded on
// the teacher's internal/graph/searcher.go (dominikbraun/graph for the
// traversal, otter for a bounded file-content cache) and
// internal/graph/extractor.go's AST-walk shape, generalized from Go's
// go/ast to the chunker's tree-sitter grammar registry so every
// supported language resolves the same way.
package graph

// SymbolKind classifies a resolved location's syntactic role.
type SymbolKind string

const (
	KindDefinition SymbolKind = "definition"
	KindReference  SymbolKind = "reference"
)

// Location is one resolved occurrence of a symbol (spec §4.5.2).
type Location struct {
	RelativePath string     `json:"relative_path"`
	Line         int        `json:"line"`
	Column       int        `json:"column"`
	Kind         SymbolKind `json:"kind"`
}

// Source identifies which backend produced a Result, per spec §6's
// find_symbol response.
type Source string

const (
	SourceLSP        Source = "lsp"
	SourceTreeSitter Source = "treesitter"
)

// Result is the find_symbol tool-call output, bit-exact per spec §6.
type Result struct {
	SymbolName  string     `json:"symbol_name"`
	Definitions []Location `json:"definitions"`
	References  []Location `json:"references"`
	Source      Source     `json:"source"`
}
