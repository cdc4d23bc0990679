// Package model defines the data structures shared by the reporter: wire
// events, the report tree, per-file results and the error taxonomy.
package model

import "time"

// EventKind identifies one entry of the mettle wire vocabulary.
type EventKind int

// Known event kinds, in the order they may be observed within one run.
const (
	EventUnknown EventKind = iota
	EventStartedRun
	EventStartedSuite
	EventStartedTest
	EventPassedTest
	EventFailedTest
	EventSkippedTest
	EventEndedSuite
	EventEndedRun
	// EventFailedFile is written by the child when the test executable
	// could not be started at all.
	EventFailedFile
)

var eventKindNames = map[EventKind]string{
	EventStartedRun:   "started_run",
	EventStartedSuite: "started_suite",
	EventStartedTest:  "started_test",
	EventPassedTest:   "passed_test",
	EventFailedTest:   "failed_test",
	EventSkippedTest:  "skipped_test",
	EventEndedSuite:   "ended_suite",
	EventEndedRun:     "ended_run",
	EventFailedFile:   "failed_file",
}

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}

	return "unknown"
}

// ParseEventKind maps a wire name to its EventKind. It returns EventUnknown
// and false for names outside the vocabulary.
func ParseEventKind(name string) (EventKind, bool) {
	for kind, n := range eventKindNames {
		if n == name {
			return kind, true
		}
	}

	return EventUnknown, false
}

// TestName identifies a single test as reported by the executable.
type TestName struct {
	ID     string
	Name   string
	Suites []string
}

// TestOutput holds the raw bytes a test wrote to its standard streams.
type TestOutput struct {
	Stdout []byte
	Stderr []byte
}

// Event is one decoded frame. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Suites   []string      // started_suite, ended_suite
	Test     TestName      // started_test, passed_test, failed_test, skipped_test
	Duration time.Duration // passed_test, failed_test
	Message  string        // failed_test, skipped_test, failed_file
	Output   TestOutput    // passed_test, failed_test
	File     string        // failed_file
}

// Terminal reports whether no further events may follow this one.
func (e Event) Terminal() bool {
	return e.Kind == EventEndedRun || e.Kind == EventFailedFile
}
