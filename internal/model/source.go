package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// Base returns the last element of the path.
func (p Path) Base() string {
	return filepath.Base(string(p))
}

// ReportName returns the report file name for a test executable or a
// recorded event stream: the base name with a recording extension removed
// and ".xml" appended.
func (p Path) ReportName() string {
	return strings.TrimSuffix(p.Base(), RecordingExt) + ".xml"
}

// RecordingExt is the file extension of raw event stream recordings.
const RecordingExt = ".events"

// FileStatus summarises how one invocation ended.
type FileStatus string

const (
	// StatusPassed means the report was written and no test failed.
	StatusPassed FileStatus = "passed"
	// StatusFailed means the report was written and at least one test
	// failed, or the executable exited with a non-zero status.
	StatusFailed FileStatus = "failed"
	// StatusError means the invocation was aborted and no report was written.
	StatusError FileStatus = "error"
)

// FileResult is the outcome of running the pipeline for one input file.
type FileResult struct {
	File     Path
	Report   Path // empty when no report was written
	Counts   Counts
	ExitCode int
	Err      error
}

// Status derives the FileStatus of the result.
func (r FileResult) Status() FileStatus {
	switch {
	case IsFatal(r.Err):
		return StatusError
	case r.Err != nil, r.Counts.Failures > 0:
		return StatusFailed
	default:
		return StatusPassed
	}
}
