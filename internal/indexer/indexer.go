package indexer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/cortexlocal/codeintel/internal/chunker"
	"github.com/cortexlocal/codeintel/internal/config"
	"github.com/cortexlocal/codeintel/internal/discovery"
	"github.com/cortexlocal/codeintel/internal/embedder"
	"github.com/cortexlocal/codeintel/internal/gitutil"
	"github.com/cortexlocal/codeintel/internal/logging"
	"github.com/cortexlocal/codeintel/internal/model"
	"github.com/cortexlocal/codeintel/internal/planner"
	"github.com/cortexlocal/codeintel/internal/state"
	"github.com/cortexlocal/codeintel/internal/store"
)

// Request is the index_codebase tool-call input (spec §6).
type Request struct {
	Force              bool
	IncludeUncommitted bool
}

// Result is the index_codebase tool-call output, bit-exact per spec §6.
type Result struct {
	FilesProcessed int            `json:"files_processed"`
	ChunksCreated  int            `json:"chunks_created"`
	FilesSkipped   int            `json:"files_skipped"`
	FilesUpdated   int            `json:"files_updated"`
	FilesDeleted   int            `json:"files_deleted"`
	FilesFailed    []string       `json:"files_failed,omitempty"`
	Languages      map[string]int `json:"languages"`
	DurationMs     int64          `json:"duration_ms"`
	Success        bool           `json:"success"`
	Error          *model.Error   `json:"error,omitempty"`
}

// Indexer ties together the change planner, chunker, embedder and
// dual index into one incremental apply, per spec §2's indexing flow.
type Indexer struct {
	rootDir string
	cfg     *config.Config
	disc    *discovery.Discovery
	plan    *planner.Planner
	chunks  *chunker.Chunker
	index   *store.DualIndex
	embed   embedder.Provider
	git     gitutil.Operations
	state   *state.Store
	log     *logging.Logger
}

// New builds an Indexer from its already-opened collaborators.
func New(
	rootDir string,
	cfg *config.Config,
	disc *discovery.Discovery,
	plan *planner.Planner,
	chunks *chunker.Chunker,
	index *store.DualIndex,
	embed embedder.Provider,
	git gitutil.Operations,
	stateStore *state.Store,
) *Indexer {
	return &Indexer{
		rootDir: rootDir,
		cfg:     cfg,
		disc:    disc,
		plan:    plan,
		chunks:  chunks,
		index:   index,
		embed:   embed,
		git:     git,
		state:   stateStore,
		log:     logging.New("indexer"),
	}
}

// Run executes one index_codebase pass: plan, apply per-file changes,
// and (on success) advance the persisted index state. Cancellation
// never leaves a file half-indexed (spec §5): an in-flight per-file
// apply either finishes or is abandoned before delete_by_path runs.
func (ix *Indexer) Run(ctx context.Context, req Request, progress ProgressReporter) (Result, error) {
	if progress == nil {
		progress = NoOpProgressReporter{}
	}
	start := time.Now()

	runID := uuid.New().String()
	ix.log.Infof("run %s starting (force=%v include_uncommitted=%v)", runID, req.Force, req.IncludeUncommitted)
	defer ix.log.Infof("run %s finished", runID)

	prior, err := ix.state.LoadState()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load index state: %w", err)
	}
	if req.Force {
		prior = nil
	}

	hashes, err := ix.state.LoadFileHashes()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load file hashes: %w", err)
	}

	planCfg := planner.Config{
		EmbeddingModelID:    ix.cfg.Embedding.ModelID,
		EmbeddingDimensions: ix.cfg.Embedding.Dimensions,
		IncludeUncommitted:  req.IncludeUncommitted,
	}

	progress.OnPlanStart()
	p, err := ix.plan.Plan(ctx, prior, hashes, planCfg)
	if err != nil {
		return Result{}, fmt.Errorf("planning failed: %w", err)
	}
	progress.OnPlanComplete(len(p.FilesToIndex), len(p.FilesToRemove), p.IsFull, p.Reason)

	result := Result{Languages: map[string]int{}}
	progress.OnFileStart(len(p.FilesToIndex))

	for _, relPath := range p.FilesToRemove {
		select {
		case <-ctx.Done():
			return ix.cancelled(result, start)
		default:
		}
		if err := ix.index.RemoveFile(relPath); err != nil {
			ix.log.Warnf("failed to remove %s: %v", relPath, err)
			continue
		}
		delete(hashes, relPath)
		result.FilesDeleted++
	}

	for _, ref := range p.FilesToIndex {
		select {
		case <-ctx.Done():
			return ix.cancelled(result, start)
		default:
		}

		chunks, failed := ix.applyFileWithRetry(ctx, ref)
		if failed != nil {
			result.FilesFailed = append(result.FilesFailed, ref.RelPath)
			delete(hashes, ref.RelPath) // retry on next run
			progress.OnFileFailed(ref.RelPath, failed)
			continue
		}

		result.FilesProcessed++
		result.ChunksCreated += chunks
		result.Languages[ref.Language]++
		progress.OnFileProcessed(ref.RelPath)
	}
	result.FilesUpdated = p.Stats.Modified

	if refs, derr := ix.disc.Discover(); derr == nil {
		if refreshed, herr := planner.ComputeFileHashes(refs); herr == nil {
			for relPath, h := range refreshed {
				hashes[relPath] = h
			}
		}
	}

	totalChunks, err := ix.index.CountChunks()
	if err != nil {
		return Result{}, fmt.Errorf("failed to count indexed chunks: %w", err)
	}
	totalFiles, err := ix.index.CountFiles()
	if err != nil {
		return Result{}, fmt.Errorf("failed to count indexed files: %w", err)
	}

	if err := ix.index.Save(); err != nil {
		return Result{}, fmt.Errorf("failed to persist keyword index: %w", err)
	}

	newState := ix.buildState(prior, totalChunks, totalFiles, req.IncludeUncommitted)
	if err := ix.state.SaveState(newState); err != nil {
		return Result{}, fmt.Errorf("failed to persist index state: %w", err)
	}
	if err := ix.state.SaveFileHashes(hashes); err != nil {
		return Result{}, fmt.Errorf("failed to persist file hashes: %w", err)
	}

	result.FilesSkipped = len(result.FilesFailed)
	result.DurationMs = time.Since(start).Milliseconds()
	result.Success = true
	progress.OnComplete(result)
	return result, nil
}

// applyFileWithRetry embeds and applies one file, retrying exactly
// once on a StoreIOError per spec §7 (delete_by_path succeeded but
// upsert failed). ParseFailed and UnsupportedLanguage are logged and
// treated as a skip, not a retryable failure.
func (ix *Indexer) applyFileWithRetry(ctx context.Context, ref discovery.FileRef) (int, error) {
	source, err := os.ReadFile(ref.Path)
	if err != nil {
		ix.log.Warnf("failed to read %s: %v", ref.RelPath, err)
		return 0, nil
	}

	chunks, err := ix.chunks.ChunkFile(ctx, ref.RelPath, ref.Language, source)
	if err != nil {
		var unsupported *chunker.ErrUnsupportedLanguage
		if isUnsupported(err, &unsupported) {
			ix.log.Warnf("skipping %s: %v", ref.RelPath, err)
			return 0, nil
		}
		ix.log.Warnf("parse failed for %s: %v", ref.RelPath, err)
		return 0, nil
	}

	applyErr := store.EmbedAndApplyFile(ctx, ix.index, ix.embed, ref.RelPath, chunks)
	if applyErr == nil {
		return len(chunks), nil
	}

	if kind := model.KindOf(applyErr); kind == model.ErrModelNotReady || kind == model.ErrDimensionMismatch {
		return 0, applyErr
	}

	ix.log.Warnf("apply failed for %s, retrying once: %v", ref.RelPath, applyErr)
	if applyErr = store.EmbedAndApplyFile(ctx, ix.index, ix.embed, ref.RelPath, chunks); applyErr == nil {
		return len(chunks), nil
	}

	return 0, model.New(model.ErrStoreIOError, "failed to apply %s after retry: %v", ref.RelPath, applyErr)
}

func isUnsupported(err error, target **chunker.ErrUnsupportedLanguage) bool {
	u, ok := err.(*chunker.ErrUnsupportedLanguage)
	if ok {
		*target = u
	}
	return ok
}

// cancelled finalizes a Result for a context cancellation: no state
// advance, a distinct error kind, success=false (spec §7, §8 scenario 6).
func (ix *Indexer) cancelled(result Result, start time.Time) (Result, error) {
	result.DurationMs = time.Since(start).Milliseconds()
	result.Success = false
	result.Error = model.New(model.ErrCancelled, "indexing was cancelled")
	return result, nil
}

func (ix *Indexer) buildState(prior *model.IndexState, totalChunks, totalFiles int, includeUncommitted bool) *model.IndexState {
	st := &model.IndexState{
		LastIndexedAt:       time.Now().UTC(),
		TotalChunks:         totalChunks,
		TotalFiles:          totalFiles,
		IncludesUncommitted: includeUncommitted,
		EmbeddingModelID:    ix.cfg.Embedding.ModelID,
		EmbeddingDimensions: ix.cfg.Embedding.Dimensions,
		SchemaVersion:       model.CurrentSchemaVersion,
	}
	if ix.git != nil && ix.git.IsRepo(ix.rootDir) {
		if commit := ix.git.CurrentCommit(ix.rootDir); commit != "" {
			st.LastIndexedCommit = &commit
		}
		if branch := ix.git.CurrentBranch(ix.rootDir); branch != "" {
			st.Branch = &branch
		}
	}
	if st.LastIndexedCommit == nil && prior != nil {
		st.LastIndexedCommit = prior.LastIndexedCommit
	}
	return st
}
