// Package vectorstore is the vector half of the dual index (spec
// §4.4.1): a sqlite-vec vec0 virtual table holding chunk embeddings,
// queried by cosine distance. Grounded on the teacher's
// internal/storage/vector_index.go (vec0 schema, delete-then-insert
// upsert pattern, vec_distance_cosine query), extended with a
// companion metadata table so nearest() can apply a predicate filter
// over chunk columns per spec §4.4.1.
package vectorstore

import (
	"database/sql"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cortexlocal/codeintel/internal/model"
)

func init() {
	sqlite_vec.Auto()
}

// Store is one project's vector index, backed by a single SQLite file.
type Store struct {
	db         *sql.DB
	dimensions int
}

// Open creates or opens the vector store at path, ensuring its schema
// exists for the configured dimension.
func Open(path string, dimensions int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	s := &Store{db: db, dimensions: dimensions}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createSchema() error {
	vecSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d]
		)
	`, s.dimensions)
	if _, err := s.db.Exec(vecSQL); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	metaSQL := `
		CREATE TABLE IF NOT EXISTS chunk_meta (
			chunk_id TEXT PRIMARY KEY,
			relative_path TEXT NOT NULL,
			language TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			scope TEXT NOT NULL DEFAULT '',
			start_line INTEGER NOT NULL DEFAULT 0,
			end_line INTEGER NOT NULL DEFAULT 0,
			code TEXT NOT NULL DEFAULT '',
			docstring TEXT NOT NULL DEFAULT '',
			token_estimate INTEGER NOT NULL DEFAULT 0,
			last_updated INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_chunk_meta_path ON chunk_meta(relative_path);
		CREATE INDEX IF NOT EXISTS idx_chunk_meta_language ON chunk_meta(language);
	`
	if _, err := s.db.Exec(metaSQL); err != nil {
		return fmt.Errorf("failed to create chunk metadata table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record is one vector plus the full set of chunk columns, mirroring
// the chunk fields per spec §4.4.1 so nearest() results and get_stats
// lookups never need to revisit the source file.
type Record struct {
	ChunkID       string
	RelativePath  string
	Language      string
	Kind          string
	Name          string
	Scope         string
	StartLine     int
	EndLine       int
	Code          string
	Docstring     string
	TokenEstimate int
	LastUpdated   time.Time
	Vector        []float32
}

// Upsert replaces any existing entry for each record's chunk id, per
// vec0's delete-then-insert upsert pattern (it has no native REPLACE).
func (s *Store) Upsert(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin vector upsert transaction: %w", err)
	}
	defer tx.Rollback()

	deleteVec, err := tx.Prepare("DELETE FROM chunks_vec WHERE chunk_id = ?")
	if err != nil {
		return err
	}
	defer deleteVec.Close()

	insertVec, err := tx.Prepare("INSERT INTO chunks_vec (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer insertVec.Close()

	upsertMeta, err := tx.Prepare(`
		INSERT INTO chunk_meta (
			chunk_id, relative_path, language, kind, name, scope,
			start_line, end_line, code, docstring, token_estimate, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			relative_path = excluded.relative_path,
			language = excluded.language,
			kind = excluded.kind,
			name = excluded.name,
			scope = excluded.scope,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			code = excluded.code,
			docstring = excluded.docstring,
			token_estimate = excluded.token_estimate,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return err
	}
	defer upsertMeta.Close()

	for _, r := range records {
		if len(r.Vector) != s.dimensions {
			return fmt.Errorf("vector for chunk %s has dimension %d, want %d", r.ChunkID, len(r.Vector), s.dimensions)
		}

		if _, err := deleteVec.Exec(r.ChunkID); err != nil {
			return fmt.Errorf("failed to delete vector for chunk %s: %w", r.ChunkID, err)
		}

		embBytes, err := sqlite_vec.SerializeFloat32(r.Vector)
		if err != nil {
			return fmt.Errorf("failed to serialize embedding for chunk %s: %w", r.ChunkID, err)
		}
		if _, err := insertVec.Exec(r.ChunkID, embBytes); err != nil {
			return fmt.Errorf("failed to insert vector for chunk %s: %w", r.ChunkID, err)
		}
		if _, err := upsertMeta.Exec(
			r.ChunkID, r.RelativePath, r.Language, r.Kind, r.Name, r.Scope,
			r.StartLine, r.EndLine, r.Code, r.Docstring, r.TokenEstimate, r.LastUpdated.Unix(),
		); err != nil {
			return fmt.Errorf("failed to upsert metadata for chunk %s: %w", r.ChunkID, err)
		}
	}

	return tx.Commit()
}

// DeleteByPath removes every chunk belonging to relPath, per the
// per-file atomic replace invariant (spec §3 invariant 3).
func (s *Store) DeleteByPath(relPath string) error {
	rows, err := s.db.Query("SELECT chunk_id FROM chunk_meta WHERE relative_path = ?", relPath)
	if err != nil {
		return fmt.Errorf("failed to look up chunks for %s: %w", relPath, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()

	return s.DeleteByIDs(ids)
}

// DeleteByIDs removes a specific set of chunk ids from both tables.
func (s *Store) DeleteByIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	delVec, err := tx.Prepare("DELETE FROM chunks_vec WHERE chunk_id = ?")
	if err != nil {
		return err
	}
	defer delVec.Close()

	delMeta, err := tx.Prepare("DELETE FROM chunk_meta WHERE chunk_id = ?")
	if err != nil {
		return err
	}
	defer delMeta.Close()

	for _, id := range ids {
		if _, err := delVec.Exec(id); err != nil {
			return fmt.Errorf("failed to delete vector %s: %w", id, err)
		}
		if _, err := delMeta.Exec(id); err != nil {
			return fmt.Errorf("failed to delete metadata %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Match is one nearest-neighbor result: a chunk id with its cosine
// similarity to the query vector, per spec §4.4.1's sim = 1 - d/2.
type Match struct {
	ChunkID    string
	Similarity float64
}

// Filter restricts nearest() to chunks matching a column predicate.
// An empty Filter matches everything.
type Filter struct {
	Language     string
	RelativePath string
}

// Nearest performs approximate k-NN under cosine distance, optionally
// filtered by chunk columns, per spec §4.4.1.
func (s *Store) Nearest(queryVec []float32, k int, filter Filter) ([]Match, error) {
	if len(queryVec) != s.dimensions {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(queryVec), s.dimensions)
	}

	queryBytes, err := sqlite_vec.SerializeFloat32(queryVec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query embedding: %w", err)
	}

	query := `
		SELECT v.chunk_id, vec_distance_cosine(v.embedding, ?) as distance
		FROM chunks_vec v
		JOIN chunk_meta m ON m.chunk_id = v.chunk_id
		WHERE 1 = 1
	`
	args := []any{queryBytes}
	if filter.Language != "" {
		query += " AND m.language = ?"
		args = append(args, filter.Language)
	}
	if filter.RelativePath != "" {
		query += " AND m.relative_path = ?"
		args = append(args, filter.RelativePath)
	}
	query += " ORDER BY distance LIMIT ?"
	args = append(args, k)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan vector result: %w", err)
		}
		out = append(out, Match{ChunkID: id, Similarity: 1 - distance/2})
	}
	return out, rows.Err()
}

// CountRows returns the number of indexed vectors.
func (s *Store) CountRows() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chunks_vec").Scan(&n)
	return n, err
}

// CountByColumn groups chunk_meta rows by the given column and returns
// per-value counts, for get_stats' "languages"/"types" breakdowns
// (spec §6). column must be "language" or "kind" — both are fixed
// identifiers the caller controls, never user input.
func (s *Store) CountByColumn(column string) (map[string]int, error) {
	if column != "language" && column != "kind" {
		return nil, fmt.Errorf("unsupported stats column %q", column)
	}
	rows, err := s.db.Query(fmt.Sprintf("SELECT %s, COUNT(*) FROM chunk_meta GROUP BY %s", column, column))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

// CountDistinctPaths returns the number of distinct relative_path
// values indexed, for the index state's total_files bookkeeping.
func (s *Store) CountDistinctPaths() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(DISTINCT relative_path) FROM chunk_meta").Scan(&n)
	return n, err
}

// GetChunks reconstructs model.Chunk values for the given chunk ids,
// silently skipping ids no longer present. Used by the query engine to
// hydrate search_code results without re-reading source files.
func (s *Store) GetChunks(ids []string) (map[string]model.Chunk, error) {
	out := make(map[string]model.Chunk, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT chunk_id, relative_path, language, kind, name, scope,
			start_line, end_line, code, docstring, token_estimate, last_updated
		FROM chunk_meta WHERE chunk_id IN (%s)
	`, string(placeholders))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Chunk
		var lastUpdated int64
		if err := rows.Scan(
			&c.ID, &c.RelativePath, &c.Language, &c.Kind, &c.Name, &c.Scope,
			&c.StartLine, &c.EndLine, &c.Code, &c.Docstring, &c.TokenEstimate, &lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		c.LastUpdated = time.Unix(lastUpdated, 0).UTC()
		out[c.ID] = c
	}
	return out, rows.Err()
}

// ToRecord adapts a chunk and its embedding into a vectorstore Record.
func ToRecord(chunk model.Chunk, vec model.VectorRecord) Record {
	return Record{
		ChunkID:       chunk.ID,
		RelativePath:  chunk.RelativePath,
		Language:      chunk.Language,
		Kind:          string(chunk.Kind),
		Name:          chunk.Name,
		Scope:         chunk.Scope,
		StartLine:     chunk.StartLine,
		EndLine:       chunk.EndLine,
		Code:          chunk.Code,
		Docstring:     chunk.Docstring,
		TokenEstimate: chunk.TokenEstimate,
		LastUpdated:   chunk.LastUpdated,
		Vector:        vec.Vector,
	}
}
