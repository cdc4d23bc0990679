package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mettle-junit/mettle-junit/internal/adapter"
	"github.com/mettle-junit/mettle-junit/internal/controller"
	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// RunArgs contains the arguments for running test executables.
type RunArgs struct {
	Files   []m.Path
	Reports m.Path
	// Args are appended to every executable's command line before the
	// event descriptor flag.
	Args     []string
	Parallel int
	// Timeout bounds each executable separately. Zero means no limit.
	Timeout          time.Duration
	Record           bool
	IgnoreExitStatus bool
}

// ConvertArgs contains the arguments for rebuilding reports from recordings.
type ConvertArgs struct {
	Files    []m.Path
	Reports  m.Path
	Parallel int
}

// ViewArgs contains the arguments for viewing written reports.
type ViewArgs struct {
	Reports m.Path
}

// Workflow defines the reporter workflow.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	Convert(ctx context.Context, args ConvertArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	store        adapter.ReportStore
	ui           controller.UI
	orchestrator Orchestrator
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	store adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
) Workflow {
	return &workflow{
		store:        store,
		ui:           ui,
		orchestrator: orchestrator,
	}
}

// Run runs every file, writes one report per file and the run index.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	return w.each(ctx, args.Files, args.Reports, args.Parallel, func(ctx context.Context, file m.Path) m.FileResult {
		return w.runFile(ctx, args, file)
	})
}

// Convert rebuilds reports from recorded event streams.
func (w *workflow) Convert(ctx context.Context, args ConvertArgs) error {
	return w.each(ctx, args.Files, args.Reports, args.Parallel, func(ctx context.Context, file m.Path) m.FileResult {
		return w.convertFile(ctx, args.Reports, file)
	})
}

// View prints the counts of every report in the reports directory.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.ui.Start(ctx, controller.WithViewMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	paths, err := w.store.ListReports(ctx, args.Reports)
	if err != nil {
		return err
	}

	summaries := make([]controller.ReportSummary, 0, len(paths))

	for _, path := range paths {
		run, err := w.store.LoadReport(ctx, path)
		if err != nil {
			slog.Warn("Skipping unreadable report", "path", path, "error", err)
			continue
		}

		summaries = append(summaries, controller.ReportSummary{
			Path:   path,
			Suites: len(run.Suites),
			Counts: run.Counts(),
		})
	}

	return w.ui.DisplayReports(ctx, summaries)
}

type fileTask func(ctx context.Context, file m.Path) m.FileResult

// each processes files on a bounded pool. Results keep the input order.
func (w *workflow) each(ctx context.Context, files []m.Path, reports m.Path, parallel int, task fileTask) error {
	if len(files) == 0 {
		return errors.New("no input files")
	}

	workers := max(1, parallel)

	if err := w.ui.Start(ctx, controller.WithRunMode()); err != nil {
		return err
	}

	w.ui.DisplayRunInfo(ctx, len(files), workers)

	results := make([]m.FileResult, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, file := range files {
		i, file := i, file

		if groupCtx.Err() != nil {
			results[i] = m.FileResult{File: file, Err: groupCtx.Err()}
			continue
		}

		group.Go(func() error {
			w.ui.DisplayStartingFile(groupCtx, file)

			results[i] = task(groupCtx, file)

			w.ui.DisplayCompletedFile(groupCtx, results[i])

			return nil
		})
	}

	_ = group.Wait()

	w.ui.Close(ctx)

	// The index records whatever finished, even after an interrupt.
	if err := w.store.SaveIndex(context.WithoutCancel(ctx), reports, results); err != nil {
		slog.Error("Failed to save run index", "dir", reports, "error", err)
		return err
	}

	w.ui.DisplaySummary(ctx, results)

	return resultsError(results)
}

func (w *workflow) runFile(ctx context.Context, args RunArgs, file m.Path) m.FileResult {
	result := m.FileResult{File: file}

	fileCtx, cancel := ctx, context.CancelFunc(func() {})
	if args.Timeout > 0 {
		fileCtx, cancel = context.WithTimeout(ctx, args.Timeout)
	}
	defer cancel()

	req := ReportRequest{
		Executable: file,
		Args:       args.Args,
		Observer:   w.progress(ctx, file),
	}

	if args.Record {
		rec, err := w.store.CreateRecording(ctx, args.Reports, file.Base())
		if err != nil {
			result.Err = err
			return result
		}

		defer func() {
			if err := rec.Close(); err != nil {
				slog.Warn("Failed to close recording", "file", file, "error", err)
			}
		}()

		req.Record = rec
	}

	res, err := w.orchestrator.Run(fileCtx, req)
	result.ExitCode = res.ExitCode

	if m.IsFatal(err) {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", args.Timeout, err)
		}

		slog.Error("No report written", "file", file, "error", err)
		result.Err = err

		return result
	}

	if err != nil && !args.IgnoreExitStatus {
		result.Err = err
	}

	return w.save(ctx, args.Reports, res.Run, result)
}

func (w *workflow) convertFile(ctx context.Context, reports m.Path, file m.Path) m.FileResult {
	result := m.FileResult{File: file}

	stream, err := w.store.OpenRecording(ctx, file)
	if err != nil {
		result.Err = err
		return result
	}

	defer func() {
		if err := stream.Close(); err != nil {
			slog.Debug("Failed to close recording", "file", file, "error", err)
		}
	}()

	run, err := w.orchestrator.Convert(ctx, stream, w.progress(ctx, file))
	if err != nil {
		slog.Error("No report written", "file", file, "error", err)
		result.Err = err

		return result
	}

	return w.save(ctx, reports, run, result)
}

func (w *workflow) save(ctx context.Context, reports m.Path, run *m.Run, result m.FileResult) m.FileResult {
	path := m.Path(filepath.Join(string(reports), result.File.ReportName()))

	if err := w.store.SaveReport(ctx, path, run); err != nil {
		result.Err = err
		return result
	}

	result.Report = path
	result.Counts = run.Counts()

	return result
}

func (w *workflow) progress(ctx context.Context, file m.Path) Observer {
	return func(counts m.Counts) {
		w.ui.DisplayProgress(ctx, file, counts)
	}
}

func resultsError(results []m.FileResult) error {
	var errs []error

	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.File, r.Err))
		}
	}

	return errors.Join(errs...)
}
