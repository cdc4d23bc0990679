package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with a live Bubble Tea progress view. Final tables are
// printed through the embedded SimpleUI once the program has exited.
type TUI struct {
	*SimpleUI

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{SimpleUI: NewSimpleUI(cmd)}
}

// Start launches the progress view in run mode. View mode prints plain
// tables and needs no program.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if applyStartOptions(options).mode != ModeRun {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(
		newRunModel(),
		tea.WithOutput(t.cmd.OutOrStdout()),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	t.done = make(chan struct{})

	go func(p *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := p.Run(); err != nil {
			slog.Error("Progress view failed", "error", err)
		}
	}(t.program, t.done)

	return nil
}

// Close stops the progress view and waits for it to restore the terminal.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program = nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(quitMsg{})
	<-done
}

func (t *TUI) send(msg tea.Msg) bool {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return false
	}

	program.Send(msg)

	return true
}

// DisplayRunInfo sets the number of files shown in the footer.
func (t *TUI) DisplayRunInfo(ctx context.Context, files int, workers int) {
	if !t.send(runInfoMsg{files: files, workers: workers}) {
		t.SimpleUI.DisplayRunInfo(ctx, files, workers)
	}
}

// DisplayStartingFile adds a spinner line for file.
func (t *TUI) DisplayStartingFile(_ context.Context, file m.Path) {
	t.send(fileStartedMsg{file: file})
}

// DisplayProgress updates the counters shown for file.
func (t *TUI) DisplayProgress(_ context.Context, file m.Path, counts m.Counts) {
	t.send(progressMsg{file: file, counts: counts})
}

// DisplayCompletedFile removes the spinner line and prints the outcome
// above the progress view.
func (t *TUI) DisplayCompletedFile(ctx context.Context, result m.FileResult) {
	if !t.send(fileDoneMsg{result: result}) {
		t.SimpleUI.DisplayCompletedFile(ctx, result)
	}
}

type quitMsg struct{}

type runInfoMsg struct {
	files   int
	workers int
}

type fileStartedMsg struct {
	file m.Path
}

type progressMsg struct {
	file   m.Path
	counts m.Counts
}

type fileDoneMsg struct {
	result m.FileResult
}

type fileProgress struct {
	file   m.Path
	counts m.Counts
}

// runModel is the Bubble Tea model of the live progress view.
type runModel struct {
	spinner spinner.Model
	running []*fileProgress
	total   int
	done    int
}

func newRunModel() runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return runModel{spinner: s}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case quitMsg:
		rm.running = nil
		return rm, tea.Quit

	case runInfoMsg:
		rm.total = msg.files
		return rm, nil

	case fileStartedMsg:
		rm.running = append(rm.running, &fileProgress{file: msg.file})
		return rm, nil

	case progressMsg:
		if fp := rm.find(msg.file); fp != nil {
			fp.counts = msg.counts
		}

		return rm, nil

	case fileDoneMsg:
		rm.remove(msg.result.File)
		rm.done++

		return rm, tea.Println(formatResultLine(msg.result))

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd
	}

	return rm, nil
}

func (rm runModel) find(file m.Path) *fileProgress {
	for _, fp := range rm.running {
		if fp.file == file {
			return fp
		}
	}

	return nil
}

func (rm *runModel) remove(file m.Path) {
	for i, fp := range rm.running {
		if fp.file == file {
			rm.running = append(rm.running[:i], rm.running[i+1:]...)
			return
		}
	}
}

func (rm runModel) View() string {
	var b strings.Builder

	for _, fp := range rm.running {
		fmt.Fprintf(&b, "%s %s  %s\n", rm.spinner.View(), fp.file, formatCounts(fp.counts))
	}

	if rm.total > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("%d/%d test files done", rm.done, rm.total)))
		b.WriteString("\n")
	}

	return b.String()
}

func formatCounts(c m.Counts) string {
	passed := c.Tests - c.Failures - c.Skipped

	parts := []string{passStyle.Render(fmt.Sprintf("%d passed", passed))}
	if c.Failures > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", c.Failures)))
	}

	if c.Skipped > 0 {
		parts = append(parts, skipStyle.Render(fmt.Sprintf("%d skipped", c.Skipped)))
	}

	return strings.Join(parts, ", ")
}

func formatResultLine(r m.FileResult) string {
	switch r.Status() {
	case m.StatusError:
		return failStyle.Render("✗ ") + fmt.Sprintf("%s: %v", r.File, r.Err)
	case m.StatusFailed:
		line := failStyle.Render("✗ ") + fmt.Sprintf("%s  %s", r.File, formatCounts(r.Counts))
		if r.Err != nil {
			line += faintStyle.Render(fmt.Sprintf(" (%v)", r.Err))
		}

		return line + "\n  Wrote " + string(r.Report)
	default:
		return passStyle.Render("✓ ") + fmt.Sprintf("%s  %s", r.File, formatCounts(r.Counts)) +
			"\n  Wrote " + string(r.Report)
	}
}
