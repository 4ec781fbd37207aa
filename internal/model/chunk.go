// Package model holds the data types shared across the indexing and
// retrieval core: chunks, vector records, keyword postings and index
// state.
package model

import "time"

// ChunkKind is the closed set of syntactic units the chunker emits.
type ChunkKind string

const (
	KindFunction  ChunkKind = "function"
	KindMethod    ChunkKind = "method"
	KindClass     ChunkKind = "class"
	KindInterface ChunkKind = "interface"
	KindModule    ChunkKind = "module"
	KindBlock     ChunkKind = "block"
)

// Chunk is the atomic indexed unit (spec §3).
type Chunk struct {
	ID            string    `json:"id"`
	RelativePath  string    `json:"relative_path"`
	Language      string    `json:"language"`
	Kind          ChunkKind `json:"kind"`
	Name          string    `json:"name,omitempty"`
	Scope         string    `json:"scope,omitempty"`
	StartLine     int       `json:"start_line"`
	EndLine       int       `json:"end_line"`
	Code          string    `json:"code"`
	Docstring     string    `json:"docstring,omitempty"`
	TokenEstimate int       `json:"token_estimate"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Payload builds the structured text fed to the embedder, per spec §4.3:
// "<language> <kind> <scope>.<name>\n<docstring>\n<code>"
func (c Chunk) Payload() string {
	scopeName := c.Name
	if c.Scope != "" {
		scopeName = c.Scope + "." + c.Name
	}
	return c.Language + " " + string(c.Kind) + " " + scopeName + "\n" + c.Docstring + "\n" + c.Code
}

// VectorRecord is a (chunk_id, vector) pair. Dimension is validated by the
// vector store, never by the record itself.
type VectorRecord struct {
	ChunkID string
	Vector  []float32
}

// Posting is a single (term, chunk_id, term_freq) tuple in the inverted
// index's posting lists.
type Posting struct {
	Term        string
	ChunkID     string
	TermFreqDoc int
}

// IndexState is persisted after every successful apply (spec §3, §6).
type IndexState struct {
	LastIndexedCommit   *string   `json:"last_indexed_commit"`
	LastIndexedAt       time.Time `json:"last_indexed_at"`
	Branch              *string   `json:"branch"`
	TotalChunks         int       `json:"total_chunks"`
	TotalFiles          int       `json:"total_files"`
	IncludesUncommitted bool      `json:"includes_uncommitted"`
	EmbeddingModelID    string    `json:"embedding_model_id"`
	EmbeddingDimensions int       `json:"embedding_dimensions"`
	SchemaVersion       int       `json:"schema_version"`
}

// CurrentSchemaVersion is written into every fresh IndexState.
const CurrentSchemaVersion = 1
