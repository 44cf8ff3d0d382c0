// Package batch converts many songs in one run, isolating per-song failures
// so a single malformed file cannot abort the rest of the songbook.
package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bricedupuy/chordshow/core/errors"
	"github.com/bricedupuy/chordshow/core/meta"
	"github.com/bricedupuy/chordshow/core/song"
	"github.com/bricedupuy/chordshow/internal/logging"
)

// Job is one song to convert.
type Job struct {
	Stem string
	Raw  []byte
}

// Options configures a batch run.
type Options struct {
	OutputDir string
	Workers   int
	Table     meta.Table
}

// Outcome summarizes a finished run. Failed maps stems to their errors;
// songs appear in exactly one of Processed or Failed.
type Outcome struct {
	RunID     string
	Processed []string
	Failed    map[string]error
	Duration  time.Duration
}

// Run converts all jobs with a pool of workers and writes each song's
// enhanced ChordPro file and .show file into the output directory.
func Run(ctx context.Context, jobs []Job, opts Options) (*Outcome, error) {
	if opts.OutputDir == "" {
		return nil, errors.NewValidation("output dir", "must not be empty")
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.NewIO("mkdir", opts.OutputDir, err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	start := time.Now()

	outcome := &Outcome{
		RunID:  runID,
		Failed: make(map[string]error),
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		jobChan = make(chan Job)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				err := convertOne(job, opts)

				mu.Lock()
				if err != nil {
					outcome.Failed[job.Stem] = err
				} else {
					outcome.Processed = append(outcome.Processed, job.Stem)
				}
				mu.Unlock()

				if err != nil {
					logging.SongFailed(job.Stem, "convert", err, "run_id", runID)
				}
			}
		}()
	}

feed:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case jobChan <- job:
		}
	}
	close(jobChan)
	wg.Wait()

	outcome.Duration = time.Since(start)
	logging.BatchSummary(runID, len(outcome.Processed), len(outcome.Failed), outcome.Duration)

	if err := ctx.Err(); err != nil {
		return outcome, errors.Wrap(err, "batch interrupted")
	}
	return outcome, nil
}

// convertOne runs the pipeline for a single job and writes both artifacts.
func convertOne(job Job, opts Options) error {
	start := time.Now()

	res, err := song.Process(job.Stem, string(job.Raw), opts.Table)
	if err != nil {
		return err
	}

	enhancedPath := filepath.Join(opts.OutputDir, song.EnhancedFilename(job.Stem))
	if err := os.WriteFile(enhancedPath, []byte(res.Enhanced), 0644); err != nil {
		return errors.NewIO("write", enhancedPath, err)
	}

	showData, err := json.MarshalIndent(res.Show, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encode show")
	}
	showPath := filepath.Join(opts.OutputDir, song.ShowFilename(job.Stem))
	if err := os.WriteFile(showPath, showData, 0644); err != nil {
		return errors.NewIO("write", showPath, err)
	}

	logging.SongProcessed(job.Stem, len(res.Show.Slides), time.Since(start))
	return nil
}
