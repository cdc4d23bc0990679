package controller

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mettle-junit/mettle-junit/internal/junitxml"
	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// SimpleUI implements UI using cobra Command's output streams.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// DisplayRunInfo shows how many files will run and with how many workers.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, files int, workers int) {
	if err := ctx.Err(); err != nil {
		return
	}

	if files > 1 {
		s.printf("Running %d test files with %d worker(s)\n", files, workers)
	}
}

// DisplayStartingFile is a no-op; the plain UI only reports completed files.
func (s *SimpleUI) DisplayStartingFile(_ context.Context, _ m.Path) {}

// DisplayProgress is a no-op for the plain UI.
func (s *SimpleUI) DisplayProgress(_ context.Context, _ m.Path, _ m.Counts) {}

// DisplayCompletedFile prints the written report path or the error.
func (s *SimpleUI) DisplayCompletedFile(_ context.Context, result m.FileResult) {
	if result.Report != "" {
		s.printf("Wrote %s\n", result.Report)
	}

	if result.Err != nil {
		s.errorf("%s: %v\n", result.File, result.Err)
	}
}

// DisplaySummary prints a table of all files when more than one ran.
func (s *SimpleUI) DisplaySummary(ctx context.Context, results []m.FileResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	if len(results) < 2 {
		return
	}

	s.printf("\n%s", renderResultsTable(results))
}

// DisplayReports prints a table of previously written reports.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []ReportSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) == 0 {
		s.printf("No reports found\n")
		return nil
	}

	s.printf("%s", renderReportsTable(reports))

	return nil
}

func renderResultsTable(results []m.FileResult) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Status", "Tests", "Failures", "Skipped", "Time"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	var total m.Counts

	failed := 0

	for _, r := range results {
		table.Append([]string{
			string(r.File),
			string(r.Status()),
			fmt.Sprintf("%d", r.Counts.Tests),
			fmt.Sprintf("%d", r.Counts.Failures),
			fmt.Sprintf("%d", r.Counts.Skipped),
			junitxml.FormatTime(r.Counts.Time),
		})

		total.Tests += r.Counts.Tests
		total.Failures += r.Counts.Failures
		total.Skipped += r.Counts.Skipped
		total.Time += r.Counts.Time

		if r.Status() != m.StatusPassed {
			failed++
		}
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(results)),
		fmt.Sprintf("%d not passed", failed),
		fmt.Sprintf("%d", total.Tests),
		fmt.Sprintf("%d", total.Failures),
		fmt.Sprintf("%d", total.Skipped),
		junitxml.FormatTime(total.Time),
	})

	table.Render()

	return tableBuffer.String()
}

func renderReportsTable(reports []ReportSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Report", "Suites", "Tests", "Failures", "Skipped", "Time"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, r := range reports {
		table.Append([]string{
			string(r.Path),
			fmt.Sprintf("%d", r.Suites),
			fmt.Sprintf("%d", r.Counts.Tests),
			fmt.Sprintf("%d", r.Counts.Failures),
			fmt.Sprintf("%d", r.Counts.Skipped),
			junitxml.FormatTime(r.Counts.Time),
		})
	}

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func (s *SimpleUI) errorf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), format, args...)
}
