package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/stats"
)

// Worker runs outline extraction for jobs under a wall-clock deadline.
type Worker struct {
	extractor *outline.Extractor
	jobs      *JobStore
	stats     *stats.Extraction
	log       *slog.Logger
	timeout   time.Duration

	parserFor func(filename string) (parser.Parser, error)
}

func NewWorker(ex *outline.Extractor, jobs *JobStore, st *stats.Extraction, log *slog.Logger, timeout time.Duration) *Worker {
	w := &Worker{
		extractor: ex,
		jobs:      jobs,
		stats:     st,
		log:       log,
		timeout:   timeout,
	}
	w.parserFor = func(filename string) (parser.Parser, error) {
		return parser.ForFile(filename, w.extractor)
	}
	return w
}

// Process runs extraction for a queued job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if w.jobs != nil {
		if res, ok := w.jobs.CompletedResult(job.ContentHash, job.Filename); ok {
			log.Info("reusing outline for identical content", "content_hash", job.ContentHash)
			job.Complete(res, PhaseCached)
			return
		}
	}

	job.SetStatus(StatusExtracting, PhaseExtracting)
	res, err := w.Extract(ctx, job.Filename, job.FileData())
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("extraction timed out", "timeout", w.timeout)
		job.Fail(PhaseTimeout, err)
	case errors.Is(err, context.Canceled):
		log.Warn("extraction canceled")
		job.Fail(PhaseCanceled, err)
	case err != nil:
		log.Error("extraction failed", "error", err)
		job.Fail(PhaseParse, err)
	default:
		log.Info("outline extracted", "title", res.Title, "headings", len(res.Outline))
		job.Complete(res, PhaseDone)
	}
}

// Extract parses data according to the filename's extension. It returns
// when the parser finishes or the deadline passes, whichever is first.
func (w *Worker) Extract(ctx context.Context, filename string, data []byte) (outline.Result, error) {
	p, err := w.parserFor(filename)
	if err != nil {
		return outline.Result{}, err
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	type parsed struct {
		res *outline.Result
		err error
	}
	done := make(chan parsed, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- parsed{err: fmt.Errorf("parse %s: panic: %v", filename, r)}
			}
		}()
		res, err := p.Parse(bytes.NewReader(data), filename)
		done <- parsed{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		outcome := stats.OutcomeFailed
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = stats.OutcomeTimeout
		}
		w.record(time.Since(start), outcome, 0)
		return outline.Result{}, fmt.Errorf("extract %s: %w", filename, ctx.Err())
	case out := <-done:
		if out.err != nil {
			w.record(time.Since(start), stats.OutcomeFailed, 0)
			return outline.Result{}, out.err
		}
		w.record(time.Since(start), stats.OutcomeOK, len(out.res.Outline))
		return *out.res, nil
	}
}

func (w *Worker) record(d time.Duration, outcome stats.Outcome, entries int) {
	if w.stats != nil {
		w.stats.Record(d, outcome, entries)
	}
}

// sameOutlineSource reports whether a stored outline for a file named a
// may stand in for one named b with identical bytes. Markup titles can
// fall back to the file name, so those must match by name as well.
func sameOutlineSource(a, b string) bool {
	extA := strings.ToLower(filepath.Ext(a))
	if extA != strings.ToLower(filepath.Ext(b)) {
		return false
	}
	return extA == ".pdf" || filepath.Base(a) == filepath.Base(b)
}
