package adapter

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jackpal/bencode-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

type dict = map[string]interface{}

func encodeFrames(t *testing.T, frames ...dict) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	for _, f := range frames {
		require.NoError(t, bencode.Marshal(&buf, f))
	}

	return &buf
}

func testName(id int, name string, suites ...string) dict {
	list := make([]interface{}, 0, len(suites))
	for _, s := range suites {
		list = append(list, s)
	}

	return dict{"id": id, "test": name, "suites": list}
}

func output(stdout, stderr string) dict {
	return dict{"stdout_log": stdout, "stderr_log": stderr}
}

func TestBencodeEventReader_FullStream(t *testing.T) {
	stream := encodeFrames(t,
		dict{"event": "started_run"},
		dict{"event": "started_suite", "suites": []interface{}{"pkg", "sub"}},
		dict{"event": "started_test", "test": testName(1, "t1", "pkg", "sub")},
		dict{"event": "passed_test", "test": testName(1, "t1"), "duration": 500, "output": output("out", "")},
		dict{"event": "started_test", "test": testName(2, "t2")},
		dict{"event": "failed_test", "test": testName(2, "t2"), "duration": 3, "message": "boom", "output": output("", "err")},
		dict{"event": "started_test", "test": testName(3, "t3")},
		dict{"event": "skipped_test", "test": testName(3, "t3"), "message": "later"},
		dict{"event": "ended_suite", "suites": []interface{}{"pkg", "sub"}},
		dict{"event": "ended_run"},
	)

	reader := NewBencodeEventReader(stream)

	var events []m.Event

	for {
		evt, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		events = append(events, evt)
	}

	require.Len(t, events, 10)

	assert.Equal(t, m.EventStartedRun, events[0].Kind)
	assert.Equal(t, []string{"pkg", "sub"}, events[1].Suites)

	assert.Equal(t, m.TestName{ID: "1", Name: "t1", Suites: []string{"pkg", "sub"}}, events[2].Test)

	passed := events[3]
	assert.Equal(t, m.EventPassedTest, passed.Kind)
	assert.Equal(t, 500*time.Millisecond, passed.Duration)
	assert.Equal(t, []byte("out"), passed.Output.Stdout)
	assert.Empty(t, passed.Output.Stderr)

	failed := events[5]
	assert.Equal(t, m.EventFailedTest, failed.Kind)
	assert.Equal(t, "2", failed.Test.ID)
	assert.Equal(t, 3*time.Millisecond, failed.Duration)
	assert.Equal(t, "boom", failed.Message)
	assert.Equal(t, []byte("err"), failed.Output.Stderr)

	skipped := events[7]
	assert.Equal(t, m.EventSkippedTest, skipped.Kind)
	assert.Equal(t, "3", skipped.Test.ID)
	assert.Equal(t, "later", skipped.Message)

	assert.Equal(t, m.EventEndedSuite, events[8].Kind)
	assert.True(t, events[9].Terminal())
}

func TestBencodeEventReader_OptionalFields(t *testing.T) {
	stream := encodeFrames(t,
		dict{"event": "ended_suite"},
		dict{"event": "skipped_test", "message": "disabled"},
		dict{"event": "failed_file", "file": "test_x", "message": "not found"},
	)

	reader := NewBencodeEventReader(stream)

	evt, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, m.EventEndedSuite, evt.Kind)
	assert.Nil(t, evt.Suites)

	evt, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, m.EventSkippedTest, evt.Kind)
	assert.Empty(t, evt.Test.ID)

	evt, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, m.EventFailedFile, evt.Kind)
	assert.Equal(t, "test_x", evt.File)
	assert.True(t, evt.Terminal())
}

func TestBencodeEventReader_StringDurationIsSeconds(t *testing.T) {
	stream := encodeFrames(t,
		dict{"event": "passed_test", "test": testName(1, "t"), "duration": "0.5", "output": output("", "")},
	)

	evt, err := NewBencodeEventReader(stream).Next()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, evt.Duration)
}

func TestBencodeEventReader_EmptyStream(t *testing.T) {
	_, err := NewBencodeEventReader(&bytes.Buffer{}).Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBencodeEventReader_MalformedFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame dict
	}{
		{"missing event", dict{"suites": []interface{}{}}},
		{"unknown event", dict{"event": "exploded"}},
		{"event not a string", dict{"event": 4}},
		{"suite without suites", dict{"event": "started_suite"}},
		{"suite names not strings", dict{"event": "started_suite", "suites": []interface{}{1}}},
		{"started_test without test", dict{"event": "started_test"}},
		{"passed_test without id", dict{"event": "passed_test", "test": dict{"test": "t"}, "duration": 1, "output": output("", "")}},
		{"passed_test without duration", dict{"event": "passed_test", "test": testName(1, "t"), "output": output("", "")}},
		{"negative duration", dict{"event": "passed_test", "test": testName(1, "t"), "duration": -1, "output": output("", "")}},
		{"bad string duration", dict{"event": "passed_test", "test": testName(1, "t"), "duration": "soon", "output": output("", "")}},
		{"passed_test without output", dict{"event": "passed_test", "test": testName(1, "t"), "duration": 1}},
		{"output without stderr", dict{"event": "passed_test", "test": testName(1, "t"), "duration": 1, "output": dict{"stdout_log": ""}}},
		{"failed_test without message", dict{"event": "failed_test", "test": testName(1, "t"), "duration": 1, "output": output("", "")}},
		{"skipped_test without message", dict{"event": "skipped_test"}},
		{"failed_file without file", dict{"event": "failed_file", "message": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBencodeEventReader(encodeFrames(t, tt.frame)).Next()
			require.ErrorIs(t, err, m.ErrMalformedFrame)
		})
	}
}

func TestBencodeEventReader_NotADictionary(t *testing.T) {
	_, err := NewBencodeEventReader(bytes.NewBufferString("i42e")).Next()
	require.ErrorIs(t, err, m.ErrMalformedFrame)
}

func TestBencodeEventReader_TruncatedFrame(t *testing.T) {
	full := encodeFrames(t,
		dict{"event": "started_run"},
		dict{"event": "started_suite", "suites": []interface{}{"s"}},
	).Bytes()

	reader := NewBencodeEventReader(bytes.NewReader(full[:len(full)-4]))

	evt, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, m.EventStartedRun, evt.Kind)

	_, err = reader.Next()
	require.ErrorIs(t, err, m.ErrMalformedFrame)
}

func TestBencodeEventReader_GarbageAfterValidFrame(t *testing.T) {
	stream := encodeFrames(t, dict{"event": "started_run"})
	stream.WriteString("zzz")

	reader := NewBencodeEventReader(stream)

	_, err := reader.Next()
	require.NoError(t, err)

	_, err = reader.Next()
	require.ErrorIs(t, err, m.ErrMalformedFrame)
}

func TestBencodeEventReader_OversizedStringLength(t *testing.T) {
	tests := []struct {
		name   string
		stream string
	}{
		{"huge value", "d5:event99999999999999:x"},
		{"huge key", "d99999999999:"},
		{"length overflows int64", "d5:event99999999999999999999:x"},
		{"length too long", "d5:event999999999999999999999999:x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBencodeEventReader(strings.NewReader(tt.stream)).Next()
			require.ErrorIs(t, err, m.ErrMalformedFrame)
		})
	}
}

func TestBencodeEventReader_FrameLimit(t *testing.T) {
	stream := encodeFrames(t,
		dict{"event": "passed_test", "test": testName(1, "t"), "duration": 1, "output": output(strings.Repeat("x", 200), "")},
	)

	reader := NewBencodeEventReader(stream)
	reader.maxFrame = 128

	_, err := reader.Next()
	require.ErrorIs(t, err, m.ErrMalformedFrame)
	assert.Contains(t, err.Error(), "exceeds frame limit")
}

func TestBencodeEventReader_FramesAreReadIndividually(t *testing.T) {
	stream := encodeFrames(t,
		dict{"event": "started_suite", "suites": []interface{}{"a", "b"}},
		dict{"event": "passed_test", "test": testName(7, "t"), "duration": 12, "output": output("x:y", "ie")},
	)

	reader := NewBencodeEventReader(stream)

	evt, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, evt.Suites)

	evt, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Millisecond, evt.Duration)
	assert.Equal(t, []byte("x:y"), evt.Output.Stdout)
	assert.Equal(t, []byte("ie"), evt.Output.Stderr)

	_, err = reader.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBencodeEventReader_DurationOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		duration interface{}
	}{
		{"milliseconds overflow", int64(10000000000000)},
		{"largest int", int64(math.MaxInt64)},
		{"seconds overflow", "10000000000"},
		{"infinite seconds", "+Inf"},
		{"not a number", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := encodeFrames(t,
				dict{"event": "passed_test", "test": testName(1, "t"), "duration": tt.duration, "output": output("", "")},
			)

			_, err := NewBencodeEventReader(stream).Next()
			require.ErrorIs(t, err, m.ErrMalformedFrame)
		})
	}
}

func TestBencodeEventReader_LargestDurations(t *testing.T) {
	stream := encodeFrames(t,
		dict{"event": "passed_test", "test": testName(1, "t"), "duration": maxDurationMillis, "output": output("", "")},
		dict{"event": "passed_test", "test": testName(2, "t"), "duration": "9223372035", "output": output("", "")},
	)

	reader := NewBencodeEventReader(stream)

	evt, err := reader.Next()
	require.NoError(t, err)
	assert.Positive(t, evt.Duration)

	evt, err = reader.Next()
	require.NoError(t, err)
	assert.InDelta(t, float64(9223372035*time.Second), float64(evt.Duration), float64(time.Microsecond))
}
