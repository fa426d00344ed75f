// Package logic wires configuration, the shift pipeline and reporting together.
package logic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/datashift/internal/config"
	"github.com/idelchi/datashift/internal/frame"
	"github.com/idelchi/datashift/internal/report"
	"github.com/idelchi/datashift/internal/shifter"
)

var (
	// ErrIncomplete is returned when at least one input was not processed.
	ErrIncomplete = errors.New("not all files were processed")
	// ErrAborted is returned when --fail-fast stopped the run after a failure.
	ErrAborted = errors.New("aborted after failure")
)

// tally accumulates per-run counters for the summary.
type tally struct {
	processed, skipped, failed int
	totalSize                  int64
}

// Run is the main logic of the application.
func Run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	start := time.Now()

	mode, err := shifter.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	const dirPerm = 0o750

	if err := os.MkdirAll(cfg.Dir, dirPerm); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	var source frame.ShiftSource
	if cfg.Seed != 0 {
		source = frame.NewSeededSource(cfg.Seed)
	}

	proc := shifter.NewProcessor(shifter.Options{
		Dir:                cfg.Dir,
		Force:              cfg.Force,
		Source:             source,
		PreserveTimestamps: cfg.PreserveTimestamps,
	})

	reporter := report.New(stderr)
	results := make(chan shifter.Result)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		counts  tally
		aborted bool
	)

	group := errgroup.Group{}

	group.Go(func() error {
		defer close(results)

		return proc.Process(ctx, mode, cfg.Files, func(res shifter.Result) {
			results <- res

			// Cancel before Process moves on, so no further file is started.
			if res.Status == shifter.StatusFailed && cfg.FailFast {
				aborted = true

				cancel()
			}
		})
	})

	group.Go(func() error {
		for res := range results {
			handle(cfg, res, &counts, reporter, stdout)
		}

		return nil
	})

	err = group.Wait()

	if cfg.Stats {
		printStats(stderr, len(cfg.Files), counts, time.Since(start))
	}

	switch {
	case aborted && counts.total() < len(cfg.Files):
		return fmt.Errorf("%w: %d file(s) left unprocessed", ErrAborted, len(cfg.Files)-counts.total())
	case err != nil:
		return fmt.Errorf("running logic: %w", err)
	case counts.failed > 0, counts.skipped > 0 && !cfg.IgnoreSkipped:
		return fmt.Errorf("%w: %d skipped, %d failed", ErrIncomplete, counts.skipped, counts.failed)
	}

	return nil
}

func (t tally) total() int {
	return t.processed + t.skipped + t.failed
}

// handle reports a single result and deletes its source if requested.
func handle(cfg *config.Config, res shifter.Result, counts *tally, reporter *report.Reporter, stdout io.Writer) {
	switch res.Status {
	case shifter.StatusOK:
		counts.processed++
		counts.totalSize += res.Size
	case shifter.StatusSkipped:
		counts.skipped++
	case shifter.StatusFailed:
		counts.failed++
	}

	reporter.Result(res)

	if !res.OK() {
		return
	}

	if !cfg.Quiet {
		fmt.Fprintf(stdout, "Processed %q -> %q\n", res.Input, res.Output)
	}

	if !cfg.Delete || samePath(res.Input, res.Output) {
		return
	}

	if err := os.Remove(res.Input); err != nil {
		reporter.Error(err, fmt.Sprintf("deleting %q", res.Input))
	} else if !cfg.Quiet {
		fmt.Fprintf(stdout, "Deleted %q\n", res.Input)
	}
}

// samePath reports whether a and b resolve to the same location.
// A forced in-place restore replaces its own input, which must then survive --delete.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	return errA == nil && errB == nil && absA == absB
}

func printStats(w io.Writer, scanned int, counts tally, duration time.Duration) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(w, "  Processed: %d\n", counts.processed)
	fmt.Fprintf(w, "  Skipped:   %d\n", counts.skipped)
	fmt.Fprintf(w, "  Errors:    %d\n", counts.failed)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, counts.totalSize))))
	fmt.Fprintf(w, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
