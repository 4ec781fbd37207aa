// Package store combines the vector and keyword sides into the dual
// index of spec §4.4: per-file apply deletes then re-inserts both
// sides so no stale chunks survive a content change (invariant 3).
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/cortexlocal/codeintel/internal/embedder"
	"github.com/cortexlocal/codeintel/internal/keywordindex"
	"github.com/cortexlocal/codeintel/internal/logging"
	"github.com/cortexlocal/codeintel/internal/model"
	"github.com/cortexlocal/codeintel/internal/vectorstore"
)

// DualIndex owns both index halves for one project. Vectors is nil
// when the store is running in the Degraded state of spec §4.5.3: the
// vector side failed to open but the keyword side is available.
type DualIndex struct {
	Vectors  *vectorstore.Store
	Keywords *keywordindex.Index
	Degraded bool

	dataDir string

	// degradedMeta hydrates GetChunks while Degraded, since the
	// keyword index carries no chunk body/line columns of its own.
	// It only reflects files applied since this process started in
	// Degraded mode; chunks from a prior, healthy run are searchable
	// by keyword but cannot be hydrated until the vector side returns.
	metaMu       sync.RWMutex
	degradedMeta map[string]model.Chunk
}

// Open opens (or creates) the vector store and loads (or creates) the
// keyword index, both rooted at dataDir. Per spec §4.5.3, a vector-
// store open failure degrades rather than fails outright: the keyword
// index still loads and DualIndex.Degraded is set so callers can force
// the hybrid searcher's alpha to 0.
func Open(dataDir string, dimensions int) (*DualIndex, error) {
	vecPath := filepath.Join(dataDir, "vectors.db")
	vs, err := vectorstore.Open(vecPath, dimensions)
	degraded := false
	if err != nil {
		logging.New("store").Warnf("vector store unavailable, degrading to keyword-only: %v", err)
		vs = nil
		degraded = true
	}

	kwPath := filepath.Join(dataDir, "keyword.json")
	kw, err := keywordindex.LoadFromFile(kwPath)
	if err != nil {
		if vs != nil {
			vs.Close()
		}
		return nil, fmt.Errorf("failed to load keyword index: %w", err)
	}

	return &DualIndex{
		Vectors:      vs,
		Keywords:     kw,
		Degraded:     degraded,
		dataDir:      dataDir,
		degradedMeta: make(map[string]model.Chunk),
	}, nil
}

// Close releases the vector store handle. The keyword index is
// in-memory and must be persisted explicitly via Save.
func (d *DualIndex) Close() error {
	if d.Vectors == nil {
		return nil
	}
	return d.Vectors.Close()
}

// Save persists the keyword index under a single-writer lock, per
// spec §4.4.2's serialize/deserialize contract.
func (d *DualIndex) Save() error {
	path := filepath.Join(d.dataDir, "keyword.json")
	return keywordindex.WithWriteLock(path, func() error {
		return d.Keywords.SaveToFile(path)
	})
}

// ApplyFile replaces every chunk belonging to relPath with newChunks
// and their vectors, in both index halves. Per spec §4.4.1, this is
// delete-then-upsert for that one file, not a whole-plan transaction.
// While Degraded, the vector half is skipped entirely: only the
// keyword index and its hydration metadata are updated.
func (d *DualIndex) ApplyFile(relPath string, newChunks []model.Chunk, vectors []model.VectorRecord) error {
	if d.Vectors != nil {
		if err := d.Vectors.DeleteByPath(relPath); err != nil {
			return fmt.Errorf("failed to delete stale vectors for %s: %w", relPath, err)
		}
	}
	d.removeKeywordDocsForPath(relPath)

	if len(newChunks) == 0 {
		return nil
	}

	vecByChunk := make(map[string]model.VectorRecord, len(vectors))
	for _, v := range vectors {
		vecByChunk[v.ChunkID] = v
	}

	records := make([]vectorstore.Record, 0, len(newChunks))
	for _, chunk := range newChunks {
		d.Keywords.AddDocument(chunk.ID, chunk.Payload())

		if d.Vectors == nil {
			d.setDegradedMeta(chunk)
			continue
		}
		vec, ok := vecByChunk[chunk.ID]
		if !ok {
			return fmt.Errorf("missing vector for chunk %s", chunk.ID)
		}
		records = append(records, vectorstore.ToRecord(chunk, vec))
	}

	if d.Vectors == nil {
		return nil
	}
	if err := d.Vectors.Upsert(records); err != nil {
		return fmt.Errorf("failed to upsert vectors for %s: %w", relPath, err)
	}
	return nil
}

// RemoveFile deletes every chunk belonging to relPath from both halves.
func (d *DualIndex) RemoveFile(relPath string) error {
	if d.Vectors != nil {
		if err := d.Vectors.DeleteByPath(relPath); err != nil {
			return fmt.Errorf("failed to delete vectors for %s: %w", relPath, err)
		}
	}
	for _, id := range d.Keywords.DocumentIDsWithPrefix(relPath + "#") {
		d.clearDegradedMeta(id)
	}
	d.removeKeywordDocsForPath(relPath)
	return nil
}

func (d *DualIndex) setDegradedMeta(chunk model.Chunk) {
	d.metaMu.Lock()
	defer d.metaMu.Unlock()
	d.degradedMeta[chunk.ID] = chunk
}

func (d *DualIndex) clearDegradedMeta(chunkID string) {
	d.metaMu.Lock()
	defer d.metaMu.Unlock()
	delete(d.degradedMeta, chunkID)
}

// removeKeywordDocsForPath is linear in the chunk id namespace: the
// keyword index has no path column, so every document id is scanned
// for the "relPath#" prefix.
func (d *DualIndex) removeKeywordDocsForPath(relPath string) {
	// Chunk ids are "<relative_path>#<kind>:<name>:<start_line>[:partN]",
	// so every keyword document for this file shares the path prefix.
	for _, id := range d.Keywords.DocumentIDsWithPrefix(relPath + "#") {
		d.Keywords.RemoveDocument(id)
	}
}

// SearchVector runs the vector half of a hybrid search. While
// Degraded there is no vector side to query; it returns an empty
// result set rather than an error, matching spec §4.5.3's "run with
// alpha=0" rather than fail the whole search.
func (d *DualIndex) SearchVector(vec []float32, k int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	if d.Vectors == nil {
		return nil, nil
	}
	return d.Vectors.Nearest(vec, k, filter)
}

// SearchKeyword runs the keyword half of a hybrid search.
func (d *DualIndex) SearchKeyword(query string, k int) []keywordindex.Result {
	return d.Keywords.Search(query, k)
}

// GetChunks hydrates full chunk records (code, lines, docstring) for a
// set of chunk ids, for assembling hybrid search results. While
// Degraded, the vector side's chunk_meta table doesn't exist, so
// hydration falls back to the in-memory snapshot ApplyFile keeps for
// chunks indexed during this degraded run.
func (d *DualIndex) GetChunks(ids []string) (map[string]model.Chunk, error) {
	if d.Vectors == nil {
		d.metaMu.RLock()
		defer d.metaMu.RUnlock()
		out := make(map[string]model.Chunk, len(ids))
		for _, id := range ids {
			if c, ok := d.degradedMeta[id]; ok {
				out[id] = c
			}
		}
		return out, nil
	}
	return d.Vectors.GetChunks(ids)
}

// CountChunks returns the total number of indexed chunks, for
// advancing IndexState.TotalChunks. While Degraded it falls back to
// the keyword index's document count, since there is no chunk_meta
// table to count rows from.
func (d *DualIndex) CountChunks() (int, error) {
	if d.Vectors == nil {
		return d.Keywords.DocumentCount(), nil
	}
	return d.Vectors.CountRows()
}

// CountFiles returns the number of distinct indexed files, for
// advancing IndexState.TotalFiles. While Degraded it falls back to
// the distinct relative_path prefixes in the degraded-mode hydration
// snapshot, since there is no chunk_meta table to count paths from.
func (d *DualIndex) CountFiles() (int, error) {
	if d.Vectors == nil {
		d.metaMu.RLock()
		defer d.metaMu.RUnlock()
		paths := make(map[string]struct{}, len(d.degradedMeta))
		for _, c := range d.degradedMeta {
			paths[c.RelativePath] = struct{}{}
		}
		return len(paths), nil
	}
	return d.Vectors.CountDistinctPaths()
}

// Stats is the get_stats tool-call output, bit-exact per spec §6.
type Stats struct {
	TotalChunks       int            `json:"total_chunks"`
	Languages         map[string]int `json:"languages"`
	Types             map[string]int `json:"types"`
	LastIndexedCommit *string        `json:"last_indexed_commit"`
	LastIndexedAt     string         `json:"last_indexed_at"`
}

// Stats aggregates the vector side's chunk_meta table into get_stats'
// response shape, merged with the persisted index state for the
// commit/timestamp fields the chunk table itself doesn't carry. The
// keyword index has no per-language column of its own, so language/kind
// breakdowns always come from the vector side, which mirrors every
// chunk field (spec §4.4.1). state may be nil before any index run has
// completed, in which case the timestamp fields are left zero-valued.
// While Degraded, there is no chunk_meta table to aggregate: total
// chunks falls back to the keyword index's document count and the
// per-language/kind breakdowns are left empty.
func (d *DualIndex) Stats(state *model.IndexState) (Stats, error) {
	stats := Stats{Languages: map[string]int{}, Types: map[string]int{}}

	if d.Vectors == nil {
		stats.TotalChunks = d.Keywords.DocumentCount()
	} else {
		total, err := d.Vectors.CountRows()
		if err != nil {
			return Stats{}, fmt.Errorf("failed to count chunks: %w", err)
		}
		languages, err := d.Vectors.CountByColumn("language")
		if err != nil {
			return Stats{}, err
		}
		kinds, err := d.Vectors.CountByColumn("kind")
		if err != nil {
			return Stats{}, err
		}
		stats.TotalChunks = total
		stats.Languages = languages
		stats.Types = kinds
	}

	if state != nil {
		stats.LastIndexedCommit = state.LastIndexedCommit
		stats.LastIndexedAt = state.LastIndexedAt.UTC().Format(time.RFC3339)
	}
	return stats, nil
}

// EmbedAndApplyFile embeds each chunk's payload then applies the file
// atomically, for use by the indexing orchestrator.
func EmbedAndApplyFile(ctx context.Context, d *DualIndex, p embedder.Provider, relPath string, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return d.ApplyFile(relPath, nil, nil)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Payload()
	}

	vecs, err := p.Embed(ctx, texts, embedder.ModeDocument)
	if err != nil {
		return err
	}

	records := make([]model.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = model.VectorRecord{ChunkID: c.ID, Vector: vecs[i]}
	}

	return d.ApplyFile(relPath, chunks, records)
}
