// Package chunker implements the chunk extractor (spec §4.2): parses
// one file with a language-appropriate tree-sitter grammar and emits
// model.Chunk values for each named syntactic unit, plus a trailing
// block chunk for whatever is left over. Grounded on the teacher's
// internal/indexer/parsers/treesitter.go (shared node-text helpers)
// and its per-language parsers (node-kind switch tables, adapted in
// adapters.go), generalized into one walker instead of one parser
// struct per language.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cortexlocal/codeintel/internal/config"
	"github.com/cortexlocal/codeintel/internal/model"
)

// Chunker extracts chunks from source files.
type Chunker struct {
	cfg config.ChunkingConfig
}

// New creates a Chunker bound to the project's chunking configuration.
func New(cfg config.ChunkingConfig) *Chunker {
	return &Chunker{cfg: cfg}
}

// ErrUnsupportedLanguage is returned when no grammar adapter is
// registered for a language that passed discovery's filters.
type ErrUnsupportedLanguage struct{ Language string }

func (e *ErrUnsupportedLanguage) Error() string {
	return fmt.Sprintf("no chunker adapter for language %q", e.Language)
}

// ChunkFile parses source and returns the chunks for one file, per
// spec §4.2's boundary rules, oversize splitting and minimum-size
// merge-up.
func (c *Chunker) ChunkFile(ctx context.Context, relPath, language string, source []byte) ([]model.Chunk, error) {
	spec, ok := specs[language]
	if !ok {
		return nil, &ErrUnsupportedLanguage{Language: language}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Grammar())

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file %s", language, relPath)
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")
	now := time.Now()

	w := &walker{
		relPath:  relPath,
		language: language,
		spec:     spec,
		source:   source,
		lines:    lines,
		cfg:      c.cfg,
		now:      now,
	}

	root := tree.RootNode()
	w.walkContainer(root, "", true)

	w.flushBlockBuffer()

	var out []model.Chunk
	for _, chunk := range w.chunks {
		out = append(out, splitOversize(chunk, c.cfg)...)
	}
	return out, nil
}

type lineRange struct{ start, end int }

type walker struct {
	relPath  string
	language string
	spec     LanguageSpec
	source   []byte
	lines    []string
	cfg      config.ChunkingConfig
	now      time.Time

	chunks      []model.Chunk
	blockBuffer []lineRange
}

// walkContainer iterates the named children of node. Children whose
// kind matches the language's named-unit set become chunks (recursing
// to find nested methods/classes); unmatched top-level children that
// produce no descendant chunks are folded into the trailing block
// chunk, per spec §4.2.
func (w *walker) walkContainer(node *sitter.Node, scope string, topLevel bool) {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(uint(i))
		if child == nil {
			continue
		}
		kind, matched := w.spec.NodeKinds[child.Kind()]
		before := len(w.chunks)

		if matched {
			w.emitChunk(child, kind, scope)
			newScope := scope
			name := nodeName(child, w.source)
			if name != "" {
				if newScope == "" {
					newScope = name
				} else {
					newScope = newScope + "." + name
				}
			}
			w.walkContainer(child, newScope, false)
		} else {
			w.walkContainer(child, scope, false)
		}

		if topLevel && len(w.chunks) == before {
			w.blockBuffer = append(w.blockBuffer, lineRange{
				start: int(child.StartPosition().Row) + 1,
				end:   int(child.EndPosition().Row) + 1,
			})
		}
	}
}

// emitChunk builds a chunk for node, refining function-kind chunks to
// method when they have an enclosing scope, and drops units smaller
// than MinChunkLines (their text already lives in the enclosing
// container's chunk, which is the merge-upward spec §4.2 asks for).
func (w *walker) emitChunk(node *sitter.Node, kind model.ChunkKind, scope string) {
	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	if kind == model.KindFunction && scope != "" {
		kind = model.KindMethod
	}

	if endLine-startLine+1 < w.cfg.MinChunkLines {
		return
	}

	name := nodeName(node, w.source)
	code := extractLines(w.lines, startLine, endLine)

	chunk := model.Chunk{
		ID:            chunkID(w.relPath, string(kind), name, startLine),
		RelativePath:  w.relPath,
		Language:      w.language,
		Kind:          kind,
		Name:          name,
		Scope:         scope,
		StartLine:     startLine,
		EndLine:       endLine,
		Code:          code,
		Docstring:     leadingDocstring(node, w.source, w.spec.CommentKinds),
		TokenEstimate: estimateTokens(code),
		LastUpdated:   w.now,
	}
	w.chunks = append(w.chunks, chunk)
}

// flushBlockBuffer groups uncovered top-level statements into block
// chunks, each under MaxChunkTokens.
func (w *walker) flushBlockBuffer() {
	if len(w.blockBuffer) == 0 {
		return
	}

	var cur []lineRange
	curTokens := 0
	part := 1

	flush := func() {
		if len(cur) == 0 {
			return
		}
		start := cur[0].start
		end := cur[len(cur)-1].end
		code := extractLines(w.lines, start, end)
		w.chunks = append(w.chunks, model.Chunk{
			ID:            chunkBlockID(w.relPath, part),
			RelativePath:  w.relPath,
			Language:      w.language,
			Kind:          model.KindBlock,
			StartLine:     start,
			EndLine:       end,
			Code:          code,
			TokenEstimate: estimateTokens(code),
			LastUpdated:   w.now,
		})
		part++
		cur = nil
		curTokens = 0
	}

	for _, r := range w.blockBuffer {
		text := extractLines(w.lines, r.start, r.end)
		tokens := estimateTokens(text)
		if curTokens > 0 && curTokens+tokens > w.cfg.MaxChunkTokens {
			flush()
		}
		cur = append(cur, r)
		curTokens += tokens
	}
	flush()
}

// nodeName returns the node's "name" field text, falling back to the
// first identifier-like child for grammars that don't expose a name
// field on the container node itself (e.g. Go's type_declaration).
func nodeName(node *sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return extractNodeText(n, source)
	}
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(uint(i))
		switch child.Kind() {
		case "identifier", "type_identifier", "constant", "property_identifier":
			return extractNodeText(child, source)
		case "type_spec":
			if n := child.ChildByFieldName("name"); n != nil {
				return extractNodeText(n, source)
			}
		}
	}
	return ""
}

// leadingDocstring concatenates the contiguous block of comment nodes
// immediately preceding node, per spec §4.2's docstring rule.
func leadingDocstring(node *sitter.Node, source []byte, commentKinds map[string]bool) string {
	var comments []string
	sibling := node.PrevSibling()
	expectedEndRow := node.StartPosition().Row

	for sibling != nil && commentKinds[sibling.Kind()] {
		if sibling.EndPosition().Row+1 != expectedEndRow && sibling.EndPosition().Row != expectedEndRow-1 {
			break
		}
		comments = append([]string{extractNodeText(sibling, source)}, comments...)
		expectedEndRow = sibling.StartPosition().Row
		sibling = sibling.PrevSibling()
	}
	return strings.Join(comments, "\n")
}

func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}
	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// estimateTokens counts whitespace/punctuation-split tokens, per spec
// §3's token_estimate definition: a run of letters/digits/underscore
// is one token, every other non-space byte is its own token.
func estimateTokens(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if !inWord {
				count++
				inWord = true
			}
		default:
			count++
			inWord = false
		}
	}
	return count
}

// chunkID builds the bit-exact id format of spec §6:
// "{relative_path}#{kind}:{name_or_anon}:{start_line}".
func chunkID(relPath, kind, name string, startLine int) string {
	if name == "" {
		name = "anon"
	}
	return fmt.Sprintf("%s#%s:%s:%d", relPath, kind, name, startLine)
}

// chunkBlockID is chunkID for the trailing block kind, which has no
// name and is keyed by its sequence number among the file's blocks
// instead of a start line, since a file may need more than one.
func chunkBlockID(relPath string, part int) string {
	return fmt.Sprintf("%s#%s:anon:%d", relPath, model.KindBlock, part)
}
