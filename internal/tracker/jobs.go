package tracker

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitick/internal/csvio"
	"github.com/julianstephens/habitick/internal/logger"
)

// StdStream is the path that maps CSV jobs to stdin or stdout.
const StdStream = "-"

// submit appends job to the queue and returns without waiting. Queued jobs
// run one at a time in submission order on a single drain goroutine, which
// exits once the queue is empty.
func (t *Tracker) submit(job func() error) {
	t.jobsMu.Lock()
	defer t.jobsMu.Unlock()
	t.queue = append(t.queue, job)
	if !t.draining {
		t.draining = true
		t.jobs.Go(t.drain)
	}
}

// drain runs queued jobs until none are left. Every job runs even after a
// failure; the first error is returned.
func (t *Tracker) drain() error {
	var first error
	for {
		t.jobsMu.Lock()
		if len(t.queue) == 0 {
			t.draining = false
			t.jobsMu.Unlock()
			return first
		}
		job := t.queue[0]
		t.queue = t.queue[1:]
		t.jobsMu.Unlock()

		if err := job(); err != nil && first == nil {
			first = err
		}
	}
}

// Wait blocks until every submitted job has finished and returns the first
// job error since the previous Wait. Jobs submitted while Wait is blocked
// are joined by it as well.
func (t *Tracker) Wait() error {
	t.jobsMu.Lock()
	g := t.jobs
	t.jobs = &errgroup.Group{}
	t.jobsMu.Unlock()
	return g.Wait()
}

func (t *Tracker) report(text string) {
	if err := t.notify.Notify(text); err != nil {
		logger.Warn("Failed to deliver notification", "text", text, "error", err)
	}
}

// ExportCSV writes every habit to path in the background. The outcome is
// reported through the notifier.
func (t *Tracker) ExportCSV(ctx context.Context, path string) {
	t.submit(func() error {
		summary, err := t.exportTo(ctx, path)
		if err != nil {
			logger.Error("Export failed", "path", path, "error", err)
			t.report("Export failed: " + err.Error())
			return err
		}
		logger.Info("Exported habits", "path", path, "habits", summary.Habits, "records", summary.Records)
		t.report("Export succeeded")
		return nil
	})
}

func (t *Tracker) exportTo(ctx context.Context, path string) (csvio.ExportSummary, error) {
	if path == StdStream {
		return csvio.Export(ctx, t.stdout, t.store)
	}
	f, err := os.Create(path)
	if err != nil {
		return csvio.ExportSummary{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	summary, err := csvio.Export(ctx, f, t.store)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	return summary, err
}

// ImportCSV reads habit blocks from path in the background. A backup of the
// store is taken first when one is configured.
func (t *Tracker) ImportCSV(ctx context.Context, path string) {
	t.submit(func() error {
		res, err := t.importFrom(ctx, path)
		if err != nil {
			logger.Error("Import failed", "path", path, "error", err,
				"records", res.RecordsImported, "skipped", res.RowsSkipped)
			t.report("Import failed: " + err.Error())
			return err
		}
		logger.Info("Imported habits", "path", path, "created", res.HabitsCreated,
			"records", res.RecordsImported, "skipped", res.RowsSkipped)
		t.report(fmt.Sprintf("Imported %d records", res.RecordsImported))
		return nil
	})
}

func (t *Tracker) importFrom(ctx context.Context, path string) (csvio.Result, error) {
	var r io.Reader = t.stdin
	if path != StdStream {
		f, err := os.Open(path)
		if err != nil {
			return csvio.Result{}, err
		}
		defer f.Close()
		r = f
	}

	if t.backup != nil {
		backupPath, err := t.backup.CreateBackup()
		if err != nil {
			return csvio.Result{}, fmt.Errorf("failed to back up before import: %w", err)
		}
		logger.Info("Backed up before import", "path", backupPath)
	}

	return csvio.Import(ctx, r, t.store, csvio.Options{
		Location:     t.loc,
		DefaultColor: t.settings.DefaultColor,
		NewID:        t.newID,
		Today:        t.Today(),
	})
}
