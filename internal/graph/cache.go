package graph

import (
	"fmt"
	"os"

	"github.com/maypok86/otter"
)

// maxFileCacheWeight bounds the symbol resolver's file-content cache,
// grounded on the teacher's searcher.go MaxFileCacheWeight.
const maxFileCacheWeight = 50 * 1024 * 1024

// FileCache is a bounded, weight-evicted cache of file contents, so
// repeated find_symbol calls over the same entry-point closure don't
// re-read large files from disk every time.
type FileCache struct {
	cache otter.Cache[string, []byte]
}

// NewFileCache builds a 50MB weight-based LRU over raw file bytes.
func NewFileCache() (*FileCache, error) {
	cache, err := otter.MustBuilder[string, []byte](maxFileCacheWeight).
		Cost(func(key string, value []byte) uint32 { return uint32(len(value)) }).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create symbol resolver file cache: %w", err)
	}
	return &FileCache{cache: cache}, nil
}

// Read returns path's contents, populating the cache on a miss.
func (c *FileCache) Read(path string) ([]byte, error) {
	if data, ok := c.cache.Get(path); ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(path, data)
	return data, nil
}

// Close releases the cache's background maintenance goroutine.
func (c *FileCache) Close() {
	c.cache.Close()
}
