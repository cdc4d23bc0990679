package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/mettle-junit/mettle-junit/internal/adapter"
	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// ReportRequest describes one reporter invocation against a live executable.
type ReportRequest struct {
	Executable m.Path
	Args       []string
	// Record, when set, receives a copy of every raw byte read from the
	// event channel.
	Record   io.Writer
	Observer Observer
}

// ReportResult is a finished report and the exit code of its executable.
type ReportResult struct {
	Run      *m.Run
	ExitCode int
}

// Orchestrator drives the event reader and the report builder for a single
// test executable or a recorded event stream.
type Orchestrator interface {
	// Run starts the executable, builds its report and waits for it to exit.
	// A non-zero exit after a complete stream returns the report together
	// with an *m.SubprocessError; any other error means no report.
	Run(ctx context.Context, req ReportRequest) (ReportResult, error)
	// Convert builds a report from a recorded event stream.
	Convert(ctx context.Context, stream io.Reader, observer Observer) (*m.Run, error)
}

type orchestrator struct {
	testAdapter adapter.TestRunnerAdapter
	enc         encoding.Encoding
}

// NewOrchestrator constructs an Orchestrator backed by the provided test
// runner adapter. enc decodes captured output; nil means UTF-8.
func NewOrchestrator(testAdapter adapter.TestRunnerAdapter, enc encoding.Encoding) Orchestrator {
	return &orchestrator{
		testAdapter: testAdapter,
		enc:         enc,
	}
}

func (o *orchestrator) newBuilder(observer Observer) *Builder {
	return NewBuilder(WithOutputEncoding(o.enc), WithObserver(observer))
}

func (o *orchestrator) Run(ctx context.Context, req ReportRequest) (ReportResult, error) {
	if err := ctx.Err(); err != nil {
		return ReportResult{}, err
	}

	proc, err := o.testAdapter.Start(ctx, req.Executable, req.Args...)
	if err != nil {
		slog.Error("Failed to start test executable", "executable", req.Executable, "error", err)
		return ReportResult{}, err
	}

	defer func() {
		if err := proc.Close(); err != nil {
			slog.Debug("Failed to close event channel", "executable", req.Executable, "error", err)
		}
	}()

	var stream io.Reader = proc.Events()
	if req.Record != nil {
		stream = io.TeeReader(stream, req.Record)
	}

	builder := o.newBuilder(req.Observer)

	if err := o.consume(ctx, adapter.NewBencodeEventReader(stream), builder); err != nil {
		slog.Error("Aborting report", "executable", req.Executable, "state", builder.State(), "error", err)
		o.abort(proc, req.Executable)

		return ReportResult{}, err
	}

	code, err := proc.Wait()
	if err != nil {
		slog.Error("Failed to wait for test executable", "executable", req.Executable, "error", err)
		return ReportResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return ReportResult{}, err
	}

	result := ReportResult{Run: builder.Report(), ExitCode: code}

	slog.Debug("Test executable exited", "executable", req.Executable, "exitCode", code)

	if code != 0 {
		return result, &m.SubprocessError{ExitCode: code}
	}

	return result, nil
}

func (o *orchestrator) Convert(ctx context.Context, stream io.Reader, observer Observer) (*m.Run, error) {
	builder := o.newBuilder(observer)

	if err := o.consume(ctx, adapter.NewBencodeEventReader(stream), builder); err != nil {
		return nil, err
	}

	return builder.Report(), nil
}

// consume applies events in order until the builder reaches its terminal
// state. The read is the only blocking step.
func (o *orchestrator) consume(ctx context.Context, events adapter.EventReader, builder *Builder) error {
	for !builder.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		evt, err := events.Next()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w (last state %s)", m.ErrTruncatedStream, builder.State())
			}

			return err
		}

		if err := builder.Apply(evt); err != nil {
			return err
		}
	}

	return nil
}

// abort stops the executable after a fatal protocol error so that the event
// channel is only closed once the process is gone.
func (o *orchestrator) abort(proc adapter.TestProcess, executable m.Path) {
	if err := proc.Kill(); err != nil {
		slog.Warn("Failed to kill test executable", "executable", executable, "error", err)
	}

	if _, err := proc.Wait(); err != nil {
		slog.Debug("Wait after kill failed", "executable", executable, "error", err)
	}
}
