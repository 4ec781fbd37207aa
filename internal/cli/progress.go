package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/cortexlocal/codeintel/internal/indexer"
)

// cliProgressReporter implements indexer.ProgressReporter with a
// terminal progress bar, grounded on the teacher's
// internal/cli/progress.go CLIProgressReporter.
type cliProgressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

func newCLIProgressReporter(quiet bool) *cliProgressReporter {
	return &cliProgressReporter{quiet: quiet}
}

func (c *cliProgressReporter) OnPlanStart() {
	if c.quiet {
		return
	}
	log.Println("Planning changes...")
}

func (c *cliProgressReporter) OnPlanComplete(toIndex, toRemove int, isFull bool, reason string) {
	if c.quiet {
		return
	}
	kind := "incremental"
	if isFull {
		kind = "full"
	}
	log.Printf("Plan ready (%s, %s): %d file(s) to index, %d to remove\n", kind, reason, toIndex, toRemove)
}

func (c *cliProgressReporter) OnFileStart(total int) {
	if c.quiet || total == 0 {
		return
	}
	c.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Indexing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)
}

func (c *cliProgressReporter) OnFileProcessed(relPath string) {
	if c.bar != nil {
		c.bar.Add(1)
	}
}

func (c *cliProgressReporter) OnFileFailed(relPath string, err error) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		c.bar.Add(1)
	}
	log.Printf("warning: failed to index %s: %v\n", relPath, err)
}

func (c *cliProgressReporter) OnEmbeddingBatch(processed, total int) {}

func (c *cliProgressReporter) OnComplete(result indexer.Result) {
	if c.quiet {
		return
	}
	fmt.Println()
	fmt.Printf("Indexing complete: %d processed, %d updated, %d deleted, %d failed (%dms)\n",
		result.FilesProcessed, result.FilesUpdated, result.FilesDeleted, len(result.FilesFailed), result.DurationMs)
}
