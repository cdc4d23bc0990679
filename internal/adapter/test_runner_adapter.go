package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"sync"
	"time"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

const (
	// DefaultFDFlag is the option mettle executables read the event fd from.
	DefaultFDFlag = "--output-fd"

	// childEventFD is the descriptor number of ExtraFiles[0] in the child.
	childEventFD = 3

	defaultWaitDelay = 5 * time.Second
)

// TestRunnerAdapter abstracts starting a test executable with a private
// event channel.
type TestRunnerAdapter interface {
	// Start launches executable with args and the event descriptor flag
	// appended. The process is killed when ctx is done.
	Start(ctx context.Context, executable m.Path, args ...string) (TestProcess, error)
}

// TestProcess is a running test executable.
type TestProcess interface {
	// Events returns the read end of the event channel.
	Events() io.Reader
	// Wait blocks until the process exits and returns its exit code. A
	// process killed by a signal reports -1.
	Wait() (int, error)
	// Kill terminates the process without waiting for it.
	Kill() error
	// Close releases the read end of the event channel. It is safe to call
	// more than once; the channel is closed exactly once.
	Close() error
}

// LocalTestRunnerAdapter provides a concrete implementation using os/exec.
type LocalTestRunnerAdapter struct {
	fdFlag string
	stdout io.Writer
	stderr io.Writer
}

// RunnerOption configures a LocalTestRunnerAdapter.
type RunnerOption func(*LocalTestRunnerAdapter)

// WithFDFlag overrides the option used to pass the event descriptor.
func WithFDFlag(flag string) RunnerOption {
	return func(a *LocalTestRunnerAdapter) {
		if flag != "" {
			a.fdFlag = flag
		}
	}
}

// WithProcessOutput sets where the executable's own stdout and stderr go.
func WithProcessOutput(stdout, stderr io.Writer) RunnerOption {
	return func(a *LocalTestRunnerAdapter) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter that
// discards the executable's own output unless configured otherwise.
func NewLocalTestRunnerAdapter(opts ...RunnerOption) *LocalTestRunnerAdapter {
	a := &LocalTestRunnerAdapter{
		fdFlag: DefaultFDFlag,
		stdout: io.Discard,
		stderr: io.Discard,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start implements TestRunnerAdapter.
func (a *LocalTestRunnerAdapter) Start(ctx context.Context, executable m.Path, args ...string) (TestProcess, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create event pipe: %w", err)
	}

	args = append(slices.Clone(args), fmt.Sprintf("%s=%d", a.fdFlag, childEventFD))

	cmd := exec.CommandContext(ctx, string(executable), args...)
	cmd.ExtraFiles = []*os.File{w}
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr
	cmd.WaitDelay = defaultWaitDelay

	if err := cmd.Start(); err != nil {
		closeQuietly(r)
		closeQuietly(w)

		return nil, fmt.Errorf("start %s: %w", executable, err)
	}

	slog.Debug("started test executable", "executable", executable, "pid", cmd.Process.Pid, "args", args)

	proc := &localTestProcess{cmd: cmd, events: r}

	// The child holds its own copy of the write end; ours must go so that
	// the reader sees end of stream once the child exits.
	if err := w.Close(); err != nil {
		_ = proc.Kill()
		_, _ = proc.Wait()
		_ = proc.Close()

		return nil, fmt.Errorf("close parent write end: %w", err)
	}

	// Unblock a pending read if the process is cancelled while a
	// grandchild still holds the write end.
	proc.mu.Lock()
	proc.stop = context.AfterFunc(ctx, func() {
		_ = proc.Close()
	})
	proc.mu.Unlock()

	return proc, nil
}

type localTestProcess struct {
	cmd    *exec.Cmd
	events *os.File

	mu   sync.Mutex
	stop func() bool

	closeOnce sync.Once
	closeErr  error
}

func (p *localTestProcess) Events() io.Reader {
	return p.events
}

func (p *localTestProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, fmt.Errorf("wait for %s: %w", p.cmd.Path, err)
}

func (p *localTestProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}

	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill %s: %w", p.cmd.Path, err)
	}

	return nil
}

func (p *localTestProcess) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		stop := p.stop
		p.mu.Unlock()

		if stop != nil {
			stop()
		}

		p.closeErr = p.events.Close()
	})

	return p.closeErr
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Debug("close failed", "error", err)
	}
}
