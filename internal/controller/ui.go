// Package controller provides output adapters for displaying reporter
// progress and results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRunMode sets the UI to live run mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithViewMode sets the UI to report viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func applyStartOptions(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeRun}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// ReportSummary is one written report as shown by the view command.
type ReportSummary struct {
	Path   m.Path
	Suites int
	Counts m.Counts
}

// UI defines the interface for displaying progress and results.
// Implementations must be safe for concurrent use: several test files may
// report progress at the same time.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	DisplayRunInfo(ctx context.Context, files int, workers int)
	DisplayStartingFile(ctx context.Context, file m.Path)
	DisplayProgress(ctx context.Context, file m.Path, counts m.Counts)
	DisplayCompletedFile(ctx context.Context, result m.FileResult)
	DisplaySummary(ctx context.Context, results []m.FileResult)
	DisplayReports(ctx context.Context, reports []ReportSummary) error
}

// NewUI returns the interactive TUI when tty is true and the plain UI
// otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
