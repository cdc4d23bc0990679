package model

import "time"

// OutcomeKind is the terminal result attached to a test that did not pass.
type OutcomeKind string

const (
	// OutcomeFailure marks a failed test.
	OutcomeFailure OutcomeKind = "failure"
	// OutcomeSkipped marks a skipped (disabled) test.
	OutcomeSkipped OutcomeKind = "skipped"
)

// Outcome carries the message of a failed or skipped test.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Run is the root of a report: one full execution of a test executable.
type Run struct {
	Tests    int
	Failures int
	Errors   int
	Time     time.Duration
	Suites   []*Suite
}

// Suite is a flattened suite node. Name is the dot-joined nesting path.
type Suite struct {
	Name     string
	Tests    int
	Failures int
	Errors   int
	Disabled int
	Skipped  int
	Time     time.Duration
	Cases    []*Test
}

// Test is a single test case. SystemOut and SystemErr are empty when no
// output was captured.
type Test struct {
	Name      string
	ID        string
	Time      time.Duration
	Outcome   *Outcome
	SystemOut string
	SystemErr string
}

// Passed reports whether the test has no failure or skip outcome.
func (t *Test) Passed() bool {
	return t.Outcome == nil
}

// Counts is a snapshot of the aggregate counters of a run.
type Counts struct {
	Tests    int
	Failures int
	Skipped  int
	Time     time.Duration
}

// Counts returns the aggregate counters of the run. Skipped is summed over
// the suites since the root element carries no skip counter.
func (r *Run) Counts() Counts {
	c := Counts{
		Tests:    r.Tests,
		Failures: r.Failures,
		Time:     r.Time,
	}

	for _, s := range r.Suites {
		c.Skipped += s.Skipped
	}

	return c
}
