package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

func startedRun() m.Event {
	return m.Event{Kind: m.EventStartedRun}
}

func endedRun() m.Event {
	return m.Event{Kind: m.EventEndedRun}
}

func startedSuite(path ...string) m.Event {
	return m.Event{Kind: m.EventStartedSuite, Suites: path}
}

func endedSuite(path ...string) m.Event {
	return m.Event{Kind: m.EventEndedSuite, Suites: path}
}

func startedTest(name string) m.Event {
	return m.Event{Kind: m.EventStartedTest, Test: m.TestName{Name: name}}
}

func passedTest(id string, d time.Duration) m.Event {
	return m.Event{Kind: m.EventPassedTest, Test: m.TestName{ID: id}, Duration: d}
}

func failedTest(id string, d time.Duration, message string) m.Event {
	return m.Event{Kind: m.EventFailedTest, Test: m.TestName{ID: id}, Duration: d, Message: message}
}

func skippedTest(id string, message string) m.Event {
	return m.Event{Kind: m.EventSkippedTest, Test: m.TestName{ID: id}, Message: message}
}

func applyAll(t *testing.T, b *Builder, events ...m.Event) {
	t.Helper()

	for i, evt := range events {
		require.NoError(t, b.Apply(evt), "event %d (%s)", i, evt.Kind)
	}
}

func TestBuilder_SingleSuiteScenario(t *testing.T) {
	b := NewBuilder()

	applyAll(t, b,
		startedRun(),
		startedSuite("pkg", "sub"),
		startedTest("t1"),
		passedTest("1", 500*time.Millisecond),
		endedSuite("pkg", "sub"),
		endedRun(),
	)

	require.True(t, b.Done())

	run := b.Report()
	require.NotNil(t, run)
	assert.Equal(t, 1, run.Tests)
	assert.Equal(t, 500*time.Millisecond, run.Time)
	require.Len(t, run.Suites, 1)

	suite := run.Suites[0]
	assert.Equal(t, "pkg.sub", suite.Name)
	assert.Equal(t, 1, suite.Tests)
	assert.Equal(t, 500*time.Millisecond, suite.Time)
	require.Len(t, suite.Cases, 1)
	assert.Equal(t, "t1", suite.Cases[0].Name)
	assert.Equal(t, "1", suite.Cases[0].ID)
	assert.True(t, suite.Cases[0].Passed())
}

func TestBuilder_FailedTestCountsOnce(t *testing.T) {
	b := NewBuilder()

	applyAll(t, b,
		startedRun(),
		startedSuite("s"),
		startedTest("ok"),
		passedTest("1", time.Second),
		startedTest("bad"),
		failedTest("2", 2*time.Second, "boom"),
		endedSuite(),
		endedRun(),
	)

	run := b.Report()
	require.NotNil(t, run)
	assert.Equal(t, 2, run.Tests)
	assert.Equal(t, 1, run.Failures)
	assert.Equal(t, 3*time.Second, run.Time)

	suite := run.Suites[0]
	assert.Equal(t, 2, suite.Tests)
	assert.Equal(t, 1, suite.Failures)

	bad := suite.Cases[1]
	require.NotNil(t, bad.Outcome)
	assert.Equal(t, m.OutcomeFailure, bad.Outcome.Kind)
	assert.Equal(t, "boom", bad.Outcome.Message)
}

func TestBuilder_SkippedTest(t *testing.T) {
	b := NewBuilder()

	applyAll(t, b,
		startedRun(),
		startedSuite("s"),
		startedTest("later"),
		skippedTest("7", "not yet"),
		endedSuite(),
		endedRun(),
	)

	run := b.Report()
	require.NotNil(t, run)
	assert.Equal(t, 1, run.Tests)
	assert.Equal(t, time.Duration(0), run.Time)

	suite := run.Suites[0]
	assert.Equal(t, 1, suite.Skipped)
	assert.Equal(t, 1, suite.Disabled)
	assert.Equal(t, 0, suite.Failures)

	tc := suite.Cases[0]
	assert.Equal(t, "7", tc.ID)
	assert.Equal(t, time.Duration(0), tc.Time)
	require.NotNil(t, tc.Outcome)
	assert.Equal(t, m.OutcomeSkipped, tc.Outcome.Kind)
	assert.Equal(t, "not yet", tc.Outcome.Message)
	assert.Equal(t, 1, run.Counts().Skipped)
}

func TestBuilder_CapturedOutput(t *testing.T) {
	tests := []struct {
		name       string
		stdout     []byte
		stderr     []byte
		wantStdout string
		wantStderr string
	}{
		{name: "empty blobs", stdout: []byte{}, stderr: nil},
		{name: "trimmed", stdout: []byte("  hello\n"), stderr: []byte("\twarn \n"), wantStdout: "hello", wantStderr: "warn"},
		{name: "whitespace only", stdout: []byte(" \n "), wantStdout: ""},
		{name: "inner whitespace kept", stdout: []byte("a\n b\n"), wantStdout: "a\n b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			evt := passedTest("1", 0)
			evt.Output = m.TestOutput{Stdout: tt.stdout, Stderr: tt.stderr}

			applyAll(t, b, startedRun(), startedSuite("s"), startedTest("t"), evt)

			tc := b.run.Suites[0].Cases[0]
			assert.Equal(t, tt.wantStdout, tc.SystemOut)
			assert.Equal(t, tt.wantStderr, tc.SystemErr)
		})
	}
}

func TestBuilder_OutputEncoding(t *testing.T) {
	b := NewBuilder(WithOutputEncoding(charmap.ISO8859_1))
	evt := passedTest("1", 0)
	evt.Output = m.TestOutput{Stdout: []byte{'c', 'a', 'f', 0xe9}}

	applyAll(t, b, startedRun(), startedSuite("s"), startedTest("t"), evt)

	assert.Equal(t, "café", b.run.Suites[0].Cases[0].SystemOut)
}

func TestBuilder_NestedSuitesRestoreEnclosingSuite(t *testing.T) {
	b := NewBuilder()

	applyAll(t, b,
		startedRun(),
		startedSuite("outer"),
		startedTest("a"),
		passedTest("1", time.Second),
		startedSuite("outer", "inner"),
		startedTest("b"),
		passedTest("2", time.Second),
		endedSuite("outer", "inner"),
		startedTest("c"),
		failedTest("3", time.Second, "nope"),
		endedSuite("outer"),
		endedRun(),
	)

	run := b.Report()
	require.NotNil(t, run)
	require.Len(t, run.Suites, 2)

	outer, inner := run.Suites[0], run.Suites[1]
	assert.Equal(t, "outer", outer.Name)
	assert.Equal(t, 2, outer.Tests)
	assert.Equal(t, 1, outer.Failures)
	assert.Equal(t, 2*time.Second, outer.Time)

	assert.Equal(t, "outer.inner", inner.Name)
	assert.Equal(t, 1, inner.Tests)
	assert.Equal(t, time.Second, inner.Time)

	assert.Equal(t, 3, run.Tests)
	assert.Equal(t, 3*time.Second, run.Time)
}

func TestBuilder_EndedSuitePathMismatchClosesOpenSuite(t *testing.T) {
	b := NewBuilder()
	applyAll(t, b, startedRun(), startedSuite("outer"), startedSuite("outer", "inner"))

	require.NoError(t, b.Apply(endedSuite("other")))
	assert.Equal(t, StateSuiteOpen, b.State())

	applyAll(t, b, startedTest("t"), passedTest("1", time.Millisecond))

	require.NoError(t, b.Apply(endedSuite("b")))
	assert.Equal(t, StateRunOpen, b.State())

	require.NoError(t, b.Apply(endedRun()))

	run := b.Report()
	require.NotNil(t, run)
	require.Len(t, run.Suites, 2)
	assert.Empty(t, run.Suites[1].Cases)
	require.Len(t, run.Suites[0].Cases, 1, "the test belongs to the restored enclosing suite")
}

func TestBuilder_FailedFile(t *testing.T) {
	for _, prefix := range [][]m.Event{nil, {startedRun()}} {
		b := NewBuilder()
		applyAll(t, b, prefix...)

		require.NoError(t, b.Apply(m.Event{Kind: m.EventFailedFile, File: "test_x", Message: "no such file"}))
		require.True(t, b.Done())

		run := b.Report()
		require.NotNil(t, run)
		assert.Equal(t, 1, run.Tests)
		assert.Equal(t, 1, run.Failures)
		require.Len(t, run.Suites, 1)
		assert.Equal(t, "file `test_x`", run.Suites[0].Name)
		require.Len(t, run.Suites[0].Cases, 1)
		assert.Equal(t, "<file>", run.Suites[0].Cases[0].Name)
		assert.Equal(t, "no such file", run.Suites[0].Cases[0].Outcome.Message)
	}
}

func TestBuilder_UnexpectedEvents(t *testing.T) {
	tests := []struct {
		name   string
		prefix []m.Event
		evt    m.Event
		state  BuilderState
	}{
		{"test before run", nil, startedTest("t"), StateIdle},
		{"second started_run", []m.Event{startedRun()}, startedRun(), StateRunOpen},
		{"test outside suite", []m.Event{startedRun()}, startedTest("t"), StateRunOpen},
		{"ended_run with open suite", []m.Event{startedRun(), startedSuite("s")}, endedRun(), StateSuiteOpen},
		{"outcome without test", []m.Event{startedRun(), startedSuite("s")}, passedTest("1", 0), StateSuiteOpen},
		{"suite while test open", []m.Event{startedRun(), startedSuite("s"), startedTest("t")}, startedSuite("x"), StateTestOpen},
		{"ended_suite while test open", []m.Event{startedRun(), startedSuite("s"), startedTest("t")}, endedSuite(), StateTestOpen},
		{"failed_file inside suite", []m.Event{startedRun(), startedSuite("s")}, m.Event{Kind: m.EventFailedFile}, StateSuiteOpen},
		{"event after close", []m.Event{startedRun(), endedRun()}, startedRun(), StateRunClosed},
		{"unknown kind", []m.Event{startedRun()}, m.Event{Kind: m.EventUnknown}, StateRunOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			applyAll(t, b, tt.prefix...)

			err := b.Apply(tt.evt)
			require.ErrorIs(t, err, m.ErrUnexpectedEvent)

			var unexpected *m.UnexpectedEventError
			require.ErrorAs(t, err, &unexpected)
			assert.Equal(t, tt.evt.Kind, unexpected.Kind)
			assert.Equal(t, tt.state.String(), unexpected.State)
			assert.Equal(t, tt.state, b.State())
		})
	}
}

func TestBuilder_ReportNilUntilClosed(t *testing.T) {
	b := NewBuilder()
	assert.Nil(t, b.Report())

	applyAll(t, b, startedRun(), startedSuite("s"))
	assert.Nil(t, b.Report())
	assert.False(t, b.Done())
}

func TestBuilder_ObserverSeesEveryOutcome(t *testing.T) {
	var snapshots []m.Counts

	b := NewBuilder(WithObserver(func(c m.Counts) {
		snapshots = append(snapshots, c)
	}))

	applyAll(t, b,
		startedRun(),
		startedSuite("s"),
		startedTest("a"),
		passedTest("1", time.Second),
		startedTest("b"),
		failedTest("2", time.Second, "x"),
		startedTest("c"),
		skippedTest("3", "later"),
		endedSuite(),
		endedRun(),
	)

	require.Len(t, snapshots, 3)
	assert.Equal(t, m.Counts{Tests: 1, Time: time.Second}, snapshots[0])
	assert.Equal(t, m.Counts{Tests: 2, Failures: 1, Time: 2 * time.Second}, snapshots[1])
	assert.Equal(t, m.Counts{Tests: 3, Failures: 1, Skipped: 1, Time: 2 * time.Second}, snapshots[2])
}

func TestBuilder_TotalsMatchEvents(t *testing.T) {
	events := []m.Event{startedRun()}
	wantTests := 0

	var wantTime time.Duration

	for s := 0; s < 3; s++ {
		events = append(events, startedSuite("suite", string(rune('a'+s))))

		for i := 0; i < 4; i++ {
			d := time.Duration(s*10+i) * time.Millisecond
			events = append(events, startedTest("t"))
			wantTests++

			switch i % 3 {
			case 0:
				events = append(events, passedTest("", d))
				wantTime += d
			case 1:
				events = append(events, failedTest("", d, "f"))
				wantTime += d
			default:
				events = append(events, skippedTest("", "s"))
			}
		}

		events = append(events, endedSuite())
	}

	events = append(events, endedRun())

	first, second := NewBuilder(), NewBuilder()
	applyAll(t, first, events...)
	applyAll(t, second, events...)

	run := first.Report()
	assert.Equal(t, wantTests, run.Tests)
	assert.Equal(t, wantTime, run.Time)

	for _, suite := range run.Suites {
		assert.Equal(t, 4, suite.Tests)
		assert.Len(t, suite.Cases, 4)
	}

	assert.Equal(t, first.Report(), second.Report())
}
