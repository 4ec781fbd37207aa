// Package indexer orchestrates the change planner, chunker, embedder
// and dual index into the index_codebase operation (spec §2, §6).
// Grounded on the teacher's internal/indexer/impl.go for the apply
// loop's shape and internal/indexer/progress.go for the reporter
// contract, narrowed to the single-pass (no docs/graph tiers) core
// this spec defines.
package indexer

// ProgressReporter receives callbacks during Run, per spec §5's
// "progress reporting" requirement on the State & Coordination row.
// Grounded on the teacher's ProgressReporter interface, trimmed to the
// stages this core actually has (no doc-chunk or graph-build phases).
type ProgressReporter interface {
	OnPlanStart()
	OnPlanComplete(toIndex, toRemove int, isFull bool, reason string)
	OnFileStart(total int)
	OnFileProcessed(relPath string)
	OnFileFailed(relPath string, err error)
	OnEmbeddingBatch(processed, total int)
	OnComplete(result Result)
}

// NoOpProgressReporter discards every callback.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnPlanStart()                                               {}
func (NoOpProgressReporter) OnPlanComplete(toIndex, toRemove int, isFull bool, r string) {}
func (NoOpProgressReporter) OnFileStart(total int)                                       {}
func (NoOpProgressReporter) OnFileProcessed(relPath string)                              {}
func (NoOpProgressReporter) OnFileFailed(relPath string, err error)                      {}
func (NoOpProgressReporter) OnEmbeddingBatch(processed, total int)                       {}
func (NoOpProgressReporter) OnComplete(result Result)                                    {}
