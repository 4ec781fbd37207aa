// Package state persists the index state and planner file-hash
// snapshot across runs, using write-temp-then-rename for crash safety
// (spec §5). Grounded on the teacher's internal/indexer/writer.go
// (AtomicWriter's temp-dir-then-rename pattern) and
// internal/cache/metadata.go (JSON metadata load/save shape).
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cortexlocal/codeintel/internal/model"
	"github.com/cortexlocal/codeintel/internal/planner"
)

const (
	stateFileName  = "state.json"
	hashesFileName = "file_hashes.json"
)

// Store persists IndexState and FileHashes under one data directory.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir, ensuring it exists.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

// LoadState reads state.json, returning (nil, nil) if it doesn't
// exist yet (first run).
func (s *Store) LoadState() (*model.IndexState, error) {
	var st model.IndexState
	ok, err := readJSON(filepath.Join(s.dataDir, stateFileName), &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// SaveState writes state.json atomically.
func (s *Store) SaveState(st *model.IndexState) error {
	return writeJSONAtomic(filepath.Join(s.dataDir, stateFileName), st)
}

// LoadFileHashes reads file_hashes.json, returning an empty map if it
// doesn't exist yet.
func (s *Store) LoadFileHashes() (planner.FileHashes, error) {
	hashes := planner.FileHashes{}
	_, err := readJSON(filepath.Join(s.dataDir, hashesFileName), &hashes)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// SaveFileHashes writes file_hashes.json atomically.
func (s *Store) SaveFileHashes(hashes planner.FileHashes) error {
	return writeJSONAtomic(filepath.Join(s.dataDir, hashesFileName), hashes)
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return true, nil
}

// writeJSONAtomic marshals v and writes it to path via a temp file in
// the same directory followed by rename, so a crash mid-write never
// leaves a corrupt file in path's place.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file into %s: %w", path, err)
	}
	return nil
}
