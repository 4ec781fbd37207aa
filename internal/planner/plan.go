// Package planner implements the change planner (spec §4.1): decides
// which files need (re)indexing and which should be removed from the
// store, without touching the store itself. Grounded on the teacher's
// internal/indexer/change_detector.go for the mtime-then-hash fallback
// shape, extended with the spec's three-branch priority algorithm
// (full reindex, git-diff incremental, file-hash fallback).
package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/cortexlocal/codeintel/internal/discovery"
	"github.com/cortexlocal/codeintel/internal/gitutil"
	"github.com/cortexlocal/codeintel/internal/model"
)

// Plan is the output of one planning pass.
type Plan struct {
	FilesToIndex []discovery.FileRef
	FilesToRemove []string
	IsFull       bool
	Reason       string
	Stats        Stats
}

// Stats summarizes the branch taken, for logging and the
// index_codebase result's files_updated count.
type Stats struct {
	Added     int
	Modified  int
	Deleted   int
	Unchanged int
}

// FileHashes is the planner's persisted view of file state for the
// no-source-control fallback branch (spec §4.1 branch 3), keyed by
// relative path.
type FileHashes map[string]FileHash

// FileHash records the last-seen mtime and content hash for one file.
type FileHash struct {
	ModTime int64  `json:"mod_time"`
	SHA256  string `json:"sha256"`
}

// Planner produces plans for one project root.
type Planner struct {
	rootDir string
	disc    *discovery.Discovery
	git     gitutil.Operations
}

// New creates a Planner. git may be nil to force file-hash mode.
func New(rootDir string, disc *discovery.Discovery, git gitutil.Operations) *Planner {
	return &Planner{rootDir: rootDir, disc: disc, git: git}
}

// Plan runs the three-branch algorithm of spec §4.1, in priority order.
func (p *Planner) Plan(ctx context.Context, state *model.IndexState, hashes FileHashes, cfg Config) (*Plan, error) {
	if state == nil || state.EmbeddingModelID != cfg.EmbeddingModelID || state.EmbeddingDimensions != cfg.EmbeddingDimensions {
		return p.fullReindex("no prior index state or embedding config changed")
	}

	if p.git != nil && p.git.IsRepo(p.rootDir) && state.LastIndexedCommit != nil {
		plan, err := p.gitDiffPlan(ctx, state, cfg.IncludeUncommitted)
		if err == nil {
			return plan, nil
		}
		// Source-control invocation failed; degrade, never fatal.
		return p.fileHashPlan(ctx, hashes, fmt.Sprintf("git diff failed, degraded to file-hash mode: %v", err))
	}

	return p.fileHashPlan(ctx, hashes, "no source control available")
}

func (p *Planner) fullReindex(reason string) (*Plan, error) {
	refs, err := p.disc.Discover()
	if err != nil {
		return nil, fmt.Errorf("discovery failed during full reindex: %w", err)
	}
	return &Plan{
		FilesToIndex: refs,
		IsFull:       true,
		Reason:       reason,
		Stats:        Stats{Added: len(refs)},
	}, nil
}

func (p *Planner) gitDiffPlan(ctx context.Context, state *model.IndexState, includeUncommitted bool) (*Plan, error) {
	changed, err := p.git.DiffNameStatus(p.rootDir, *state.LastIndexedCommit)
	if err != nil {
		return nil, err
	}

	if includeUncommitted {
		working, err := p.git.WorkingTreeStatus(p.rootDir)
		if err != nil {
			return nil, err
		}
		for path, status := range working {
			changed[path] = status
		}
	}

	refsByPath := p.discoveredRefsByRelPath()

	plan := &Plan{}
	for relPath, status := range changed {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		switch status {
		case gitutil.StatusDeleted:
			plan.FilesToRemove = append(plan.FilesToRemove, relPath)
			plan.Stats.Deleted++
		case gitutil.StatusAdded:
			if ref, ok := refsByPath[relPath]; ok {
				plan.FilesToIndex = append(plan.FilesToIndex, ref)
				plan.Stats.Added++
			}
		case gitutil.StatusModified:
			if ref, ok := refsByPath[relPath]; ok {
				plan.FilesToIndex = append(plan.FilesToIndex, ref)
				plan.Stats.Modified++
			}
		}
	}

	plan.Reason = "incremental git diff"
	return plan, nil
}

func (p *Planner) discoveredRefsByRelPath() map[string]discovery.FileRef {
	refs, err := p.disc.Discover()
	if err != nil {
		return map[string]discovery.FileRef{}
	}
	m := make(map[string]discovery.FileRef, len(refs))
	for _, r := range refs {
		m[r.RelPath] = r
	}
	return m
}

// fileHashPlan implements spec §4.1 branch 3: mtime fast-path, then
// SHA-256 comparison against the last-seen hashes, grounded on the
// teacher's change_detector.go algorithm.
func (p *Planner) fileHashPlan(ctx context.Context, hashes FileHashes, reason string) (*Plan, error) {
	refs, err := p.disc.Discover()
	if err != nil {
		return nil, fmt.Errorf("discovery failed during file-hash plan: %w", err)
	}

	plan := &Plan{Reason: reason}
	seen := make(map[string]bool, len(refs))

	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		seen[ref.RelPath] = true
		prior, existed := hashes[ref.RelPath]

		info, err := os.Stat(ref.Path)
		if err != nil {
			continue
		}

		if existed && info.ModTime().UnixNano() == prior.ModTime {
			plan.Stats.Unchanged++
			continue
		}

		sum, err := hashFile(ref.Path)
		if err != nil {
			continue
		}

		if existed && sum == prior.SHA256 {
			plan.Stats.Unchanged++
			continue
		}

		plan.FilesToIndex = append(plan.FilesToIndex, ref)
		if existed {
			plan.Stats.Modified++
		} else {
			plan.Stats.Added++
		}
	}

	for relPath := range hashes {
		if !seen[relPath] {
			plan.FilesToRemove = append(plan.FilesToRemove, relPath)
			plan.Stats.Deleted++
		}
	}

	return plan, nil
}

// Config is the subset of configuration the planner needs to decide
// whether a full reindex is required.
type Config struct {
	EmbeddingModelID   string
	EmbeddingDimensions int
	IncludeUncommitted bool
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ComputeFileHashes builds a fresh FileHashes snapshot from a set of
// refs, for persistence after a successful apply.
func ComputeFileHashes(refs []discovery.FileRef) (FileHashes, error) {
	out := make(FileHashes, len(refs))
	for _, ref := range refs {
		info, err := os.Stat(ref.Path)
		if err != nil {
			continue
		}
		sum, err := hashFile(ref.Path)
		if err != nil {
			continue
		}
		out[ref.RelPath] = FileHash{ModTime: info.ModTime().UnixNano(), SHA256: sum}
	}
	return out, nil
}
