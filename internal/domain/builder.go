package domain

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// BuilderState is the position of a Builder in the run/suite/test scopes.
type BuilderState int

// Builder states.
const (
	StateIdle BuilderState = iota
	StateRunOpen
	StateSuiteOpen
	StateTestOpen
	StateRunClosed
)

func (s BuilderState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunOpen:
		return "run-open"
	case StateSuiteOpen:
		return "suite-open"
	case StateTestOpen:
		return "test-open"
	case StateRunClosed:
		return "run-closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Observer receives a snapshot of the run counters after every test outcome.
type Observer func(m.Counts)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithOutputEncoding sets the text encoding captured output is decoded from.
func WithOutputEncoding(enc encoding.Encoding) BuilderOption {
	return func(b *Builder) {
		if enc != nil {
			b.enc = enc
		}
	}
}

// WithObserver registers a progress callback.
func WithObserver(obs Observer) BuilderOption {
	return func(b *Builder) {
		b.observer = obs
	}
}

// Builder applies events, one at a time, to a report tree it owns.
type Builder struct {
	state    BuilderState
	run      *m.Run
	suite    *m.Suite
	test     *m.Test
	enclosed []openSuite

	enc      encoding.Encoding
	observer Observer
}

type openSuite struct {
	path []string
	node *m.Suite
}

// NewBuilder returns a Builder in the idle state.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{enc: unicode.UTF8}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// State returns the current state.
func (b *Builder) State() BuilderState {
	return b.state
}

// Done reports whether the terminal event has been applied.
func (b *Builder) Done() bool {
	return b.state == StateRunClosed
}

// Report returns the finished report, or nil until the run is closed.
func (b *Builder) Report() *m.Run {
	if !b.Done() {
		return nil
	}

	return b.run
}

// Apply consumes one event. An event arriving in a state that forbids it
// returns an *m.UnexpectedEventError and leaves the builder unchanged.
func (b *Builder) Apply(evt m.Event) error {
	switch evt.Kind {
	case m.EventStartedRun:
		return b.startedRun(evt)
	case m.EventStartedSuite:
		return b.startedSuite(evt)
	case m.EventStartedTest:
		return b.startedTest(evt)
	case m.EventPassedTest:
		return b.passedTest(evt)
	case m.EventFailedTest:
		return b.failedTest(evt)
	case m.EventSkippedTest:
		return b.skippedTest(evt)
	case m.EventEndedSuite:
		return b.endedSuite(evt)
	case m.EventEndedRun:
		return b.endedRun(evt)
	case m.EventFailedFile:
		return b.failedFile(evt)
	default:
		return b.unexpected(evt)
	}
}

func (b *Builder) unexpected(evt m.Event) error {
	return &m.UnexpectedEventError{Kind: evt.Kind, State: b.state.String()}
}

func (b *Builder) startedRun(evt m.Event) error {
	if b.state != StateIdle {
		return b.unexpected(evt)
	}

	b.run = &m.Run{}
	b.state = StateRunOpen

	return nil
}

func (b *Builder) startedSuite(evt m.Event) error {
	if b.state != StateRunOpen && b.state != StateSuiteOpen {
		return b.unexpected(evt)
	}

	suite := &m.Suite{Name: strings.Join(evt.Suites, ".")}
	b.run.Suites = append(b.run.Suites, suite)

	// A suite started inside another one becomes the only active suite; the
	// enclosing one is resumed when it ends.
	b.enclosed = append(b.enclosed, openSuite{path: evt.Suites, node: suite})
	b.suite = suite
	b.state = StateSuiteOpen

	slog.Debug("started suite", "suite", suite.Name, "depth", len(b.enclosed))

	return nil
}

func (b *Builder) startedTest(evt m.Event) error {
	if b.state != StateSuiteOpen {
		return b.unexpected(evt)
	}

	b.test = &m.Test{Name: evt.Test.Name, ID: evt.Test.ID}
	b.suite.Cases = append(b.suite.Cases, b.test)
	b.suite.Tests++
	b.run.Tests++
	b.state = StateTestOpen

	return nil
}

func (b *Builder) passedTest(evt m.Event) error {
	if b.state != StateTestOpen {
		return b.unexpected(evt)
	}

	b.finishTimed(evt)
	b.closeTest()

	return nil
}

func (b *Builder) failedTest(evt m.Event) error {
	if b.state != StateTestOpen {
		return b.unexpected(evt)
	}

	b.test.Outcome = &m.Outcome{Kind: m.OutcomeFailure, Message: evt.Message}
	b.finishTimed(evt)
	b.suite.Failures++
	b.run.Failures++
	b.closeTest()

	return nil
}

func (b *Builder) skippedTest(evt m.Event) error {
	if b.state != StateTestOpen {
		return b.unexpected(evt)
	}

	b.test.Outcome = &m.Outcome{Kind: m.OutcomeSkipped, Message: evt.Message}
	if evt.Test.ID != "" {
		b.test.ID = evt.Test.ID
	}

	// There is no distinct "disabled" signal on the wire.
	b.suite.Disabled++
	b.suite.Skipped++
	b.closeTest()

	return nil
}

// finishTimed records id, duration and captured output of a passed or
// failed test and accumulates the duration on the suite and the run.
func (b *Builder) finishTimed(evt m.Event) {
	if evt.Test.ID != "" {
		b.test.ID = evt.Test.ID
	}

	b.test.Time = evt.Duration
	b.suite.Time += evt.Duration
	b.run.Time += evt.Duration
	b.test.SystemOut = b.decodeOutput(evt.Output.Stdout)
	b.test.SystemErr = b.decodeOutput(evt.Output.Stderr)
}

func (b *Builder) closeTest() {
	b.test = nil
	b.state = StateSuiteOpen

	if b.observer != nil {
		b.observer(b.run.Counts())
	}
}

func (b *Builder) decodeOutput(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	decoded, err := b.enc.NewDecoder().Bytes(raw)
	if err != nil {
		// Undecodable bytes are kept as they are rather than dropping the block.
		slog.Warn("failed to decode captured output", "error", err)

		decoded = raw
	}

	return strings.TrimSpace(string(decoded))
}

func (b *Builder) endedSuite(evt m.Event) error {
	if b.state != StateSuiteOpen {
		return b.unexpected(evt)
	}

	top := b.enclosed[len(b.enclosed)-1]
	if evt.Suites != nil && !slices.Equal(evt.Suites, top.path) {
		slog.Warn("ended_suite does not match the open suite, closing it anyway",
			"open", top.node.Name, "ended", strings.Join(evt.Suites, "."))
	}

	b.enclosed = b.enclosed[:len(b.enclosed)-1]
	if len(b.enclosed) == 0 {
		b.suite = nil
		b.state = StateRunOpen

		return nil
	}

	b.suite = b.enclosed[len(b.enclosed)-1].node

	return nil
}

func (b *Builder) endedRun(evt m.Event) error {
	if b.state != StateRunOpen {
		return b.unexpected(evt)
	}

	b.state = StateRunClosed

	return nil
}

// failedFile records that the executable could not be run. The report gets
// a synthetic suite holding a single failed test case.
func (b *Builder) failedFile(evt m.Event) error {
	switch b.state {
	case StateIdle:
		b.run = &m.Run{}
	case StateRunOpen:
	default:
		return b.unexpected(evt)
	}

	b.run.Suites = append(b.run.Suites, &m.Suite{
		Name:     fmt.Sprintf("file `%s`", evt.File),
		Tests:    1,
		Failures: 1,
		Cases: []*m.Test{{
			Name:    "<file>",
			Outcome: &m.Outcome{Kind: m.OutcomeFailure, Message: evt.Message},
		}},
	})
	b.run.Tests++
	b.run.Failures++
	b.state = StateRunClosed

	return nil
}
