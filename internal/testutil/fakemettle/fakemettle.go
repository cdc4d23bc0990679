// Package fakemettle lets a test binary stand in for a mettle test
// executable. A test package calls Main from TestMain; when the scenario
// variable is set the binary writes a canned event stream to the descriptor
// passed as --<flag>=N and exits instead of running tests.
package fakemettle

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackpal/bencode-go"
)

// EnvScenario selects the canned behaviour of the fake executable.
const EnvScenario = "METTLE_JUNIT_FAKE_SCENARIO"

// Scenario names understood by Main.
const (
	// Passing writes a complete run with one passed, one failed and one
	// skipped test and exits 0.
	Passing = "passing"
	// ExitStatus writes the same run as Passing and exits 3.
	ExitStatus = "exit-status"
	// Truncated stops after started_suite and exits 0.
	Truncated = "truncated"
	// Malformed writes garbage after started_run.
	Malformed = "malformed"
	// Hang writes started_run and sleeps until killed.
	Hang = "hang"
	// FailedFile reports that the file could not be run and exits 1.
	FailedFile = "failed-file"
	// EchoArgs writes a run with one suite named after its extra arguments.
	EchoArgs = "echo-args"
	// Silent exits 0 without writing anything.
	Silent = "silent"
)

// ExitStatusCode is the exit code of the ExitStatus scenario.
const ExitStatusCode = 3

// StdoutLine is printed to the executable's own stdout by Passing.
const StdoutLine = "fake mettle stdout"

type frame = map[string]interface{}

// Main runs the selected scenario and exits. It returns when no scenario
// is set.
func Main() {
	scenario := os.Getenv(EnvScenario)
	if scenario == "" {
		return
	}

	os.Exit(run(scenario, os.Args[1:]))
}

func run(scenario string, args []string) int {
	extra, fd, ok := splitFDArg(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "fakemettle: no event descriptor argument")
		return 97
	}

	events := os.NewFile(uintptr(fd), "events")
	if events == nil {
		fmt.Fprintln(os.Stderr, "fakemettle: invalid descriptor", fd)
		return 98
	}
	defer events.Close()

	switch scenario {
	case Passing:
		fmt.Println(StdoutLine)
		write(events, PassingRun()...)

		return 0
	case ExitStatus:
		write(events, PassingRun()...)
		return ExitStatusCode
	case Truncated:
		write(events, frame{"event": "started_run"}, frame{"event": "started_suite", "suites": list("s")})
		return 0
	case Malformed:
		write(events, frame{"event": "started_run"})
		_, _ = io.WriteString(events, "not bencode")

		return 0
	case Hang:
		write(events, frame{"event": "started_run"})
		time.Sleep(10 * time.Minute)

		return 0
	case FailedFile:
		write(events, frame{"event": "failed_file", "file": "fake", "message": "cannot run"})
		return 1
	case EchoArgs:
		write(events,
			frame{"event": "started_run"},
			frame{"event": "started_suite", "suites": list(extra...)},
			frame{"event": "ended_suite", "suites": list(extra...)},
			frame{"event": "ended_run"},
		)

		return 0
	case Silent:
		return 0
	default:
		fmt.Fprintln(os.Stderr, "fakemettle: unknown scenario", scenario)
		return 99
	}
}

// PassingRun returns the frames written by the Passing scenario.
func PassingRun() []map[string]interface{} {
	return []map[string]interface{}{
		{"event": "started_run"},
		{"event": "started_suite", "suites": list("pkg", "sub")},
		{"event": "started_test", "test": test(1, "passes")},
		{"event": "passed_test", "test": test(1, "passes"), "duration": 500, "output": output("hello\n", "")},
		{"event": "started_test", "test": test(2, "fails")},
		{"event": "failed_test", "test": test(2, "fails"), "duration": 250, "message": "boom", "output": output("", "trace\n")},
		{"event": "started_test", "test": test(3, "later")},
		{"event": "skipped_test", "test": test(3, "later"), "message": "not yet"},
		{"event": "ended_suite", "suites": list("pkg", "sub")},
		{"event": "ended_run"},
	}
}

// Encode writes frames to w as consecutive bencoded dictionaries.
func Encode(w io.Writer, frames ...map[string]interface{}) error {
	for _, f := range frames {
		if err := bencode.Marshal(w, f); err != nil {
			return err
		}
	}

	return nil
}

func write(w io.Writer, frames ...map[string]interface{}) {
	if err := Encode(w, frames...); err != nil {
		fmt.Fprintln(os.Stderr, "fakemettle:", err)
		os.Exit(96)
	}
}

// splitFDArg finds the trailing --flag=N argument and returns the others.
func splitFDArg(args []string) ([]string, int, bool) {
	if len(args) == 0 {
		return nil, 0, false
	}

	last := args[len(args)-1]

	name, value, found := strings.Cut(last, "=")
	if !found || !strings.HasPrefix(name, "--") {
		return nil, 0, false
	}

	fd, err := strconv.Atoi(value)
	if err != nil {
		return nil, 0, false
	}

	return args[:len(args)-1], fd, true
}

func list(items ...string) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}

	return out
}

func test(id int, name string) map[string]interface{} {
	return map[string]interface{}{"id": id, "test": name, "suites": list("pkg", "sub")}
}

func output(stdout, stderr string) map[string]interface{} {
	return map[string]interface{}{"stdout_log": stdout, "stderr_log": stderr}
}
