package adapter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/jackpal/bencode-go"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// EventReader yields decoded events from a mettle wire stream.
type EventReader interface {
	// Next returns the next event. It returns io.EOF when the stream ends
	// cleanly at a frame boundary, and an error wrapping m.ErrMalformedFrame
	// when the bytes do not form a valid event.
	Next() (m.Event, error)
}

// MaxFrameSize bounds the encoded size of a single frame. Captured test
// output is the only large field.
const MaxFrameSize = 64 << 20

// maxIntLen bounds the digits of a bencode integer or string length.
const maxIntLen = 20

// BencodeEventReader decodes one bencoded dictionary per event.
type BencodeEventReader struct {
	r        *bufio.Reader
	maxFrame int
}

// NewBencodeEventReader reads frames from r. Reads block only inside r.
func NewBencodeEventReader(r io.Reader) *BencodeEventReader {
	return &BencodeEventReader{r: bufio.NewReader(r), maxFrame: MaxFrameSize}
}

// Next implements EventReader.
func (er *BencodeEventReader) Next() (m.Event, error) {
	if _, err := er.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return m.Event{}, io.EOF
		}

		return m.Event{}, fmt.Errorf("read frame: %w", err)
	}

	raw, err := er.readFrame()
	if err != nil {
		return m.Event{}, fmt.Errorf("%w: %v", m.ErrMalformedFrame, err)
	}

	value, err := bencode.Decode(bytes.NewReader(raw))
	if err != nil {
		return m.Event{}, fmt.Errorf("%w: %v", m.ErrMalformedFrame, err)
	}

	dict, ok := value.(map[string]interface{})
	if !ok {
		return m.Event{}, fmt.Errorf("%w: frame is %T, not a dictionary", m.ErrMalformedFrame, value)
	}

	evt, err := decodeEvent(frame(dict))
	if err != nil {
		return m.Event{}, fmt.Errorf("%w: %v", m.ErrMalformedFrame, err)
	}

	return evt, nil
}

// readFrame copies the bytes of exactly one bencode value. String lengths
// are checked against the frame limit before their payload is read.
func (er *BencodeEventReader) readFrame() ([]byte, error) {
	var buf bytes.Buffer

	depth := 0

	for {
		c, err := er.r.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}

		buf.WriteByte(c)

		switch {
		case c == 'd' || c == 'l':
			depth++
		case c == 'e':
			if depth == 0 {
				return nil, errors.New("unexpected end marker")
			}

			depth--
		case c == 'i':
			if _, err := er.readToken(&buf, 'e'); err != nil {
				return nil, err
			}
		case c >= '0' && c <= '9':
			digits, err := er.readToken(&buf, ':')
			if err != nil {
				return nil, err
			}

			n, err := strconv.ParseInt(string(c)+digits, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid string length: %w", err)
			}

			if n > int64(er.maxFrame-buf.Len()) {
				return nil, fmt.Errorf("string of %d bytes exceeds frame limit of %d bytes", n, er.maxFrame)
			}

			if _, err := io.CopyN(&buf, er.r, n); err != nil {
				return nil, truncated(err)
			}
		default:
			return nil, fmt.Errorf("invalid byte %q", c)
		}

		if buf.Len() > er.maxFrame {
			return nil, fmt.Errorf("frame exceeds %d bytes", er.maxFrame)
		}

		if depth == 0 {
			return buf.Bytes(), nil
		}
	}
}

// readToken copies bytes up to and including term and returns the bytes
// before it.
func (er *BencodeEventReader) readToken(buf *bytes.Buffer, term byte) (string, error) {
	var token []byte

	for {
		c, err := er.r.ReadByte()
		if err != nil {
			return "", truncated(err)
		}

		buf.WriteByte(c)

		if c == term {
			return string(token), nil
		}

		if len(token) == maxIntLen {
			return "", fmt.Errorf("number longer than %d bytes", maxIntLen)
		}

		token = append(token, c)
	}
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("truncated frame: %w", io.ErrUnexpectedEOF)
	}

	return err
}

// frame is a decoded bencode dictionary with typed accessors.
type frame map[string]interface{}

func (f frame) str(key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not a string", key, v)
	}

	return s, nil
}

func (f frame) dict(key string) (frame, error) {
	v, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}

	d, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q is %T, not a dictionary", key, v)
	}

	return frame(d), nil
}

func (f frame) strings(key string) ([]string, error) {
	v, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}

	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q is %T, not a list", key, v)
	}

	out := make([]string, 0, len(list))

	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("field %q[%d] is %T, not a string", key, i, item)
		}

		out = append(out, s)
	}

	return out, nil
}

func (f frame) has(key string) bool {
	_, ok := f[key]
	return ok
}

// Largest durations representable as time.Duration.
const (
	maxDurationMillis  = math.MaxInt64 / int64(time.Millisecond)
	maxDurationSeconds = float64(math.MaxInt64 / int64(time.Second))
)

// duration reads a test duration. Integers are mettle's native milliseconds;
// strings are decimal seconds.
func (f frame) duration(key string) (time.Duration, error) {
	v, ok := f[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}

	switch d := v.(type) {
	case int64:
		if d < 0 {
			return 0, fmt.Errorf("field %q is negative", key)
		}

		if d > maxDurationMillis {
			return 0, fmt.Errorf("field %q is out of range: %d ms", key, d)
		}

		return time.Duration(d) * time.Millisecond, nil
	case string:
		secs, err := strconv.ParseFloat(d, 64)
		if err != nil || math.IsNaN(secs) || secs < 0 {
			return 0, fmt.Errorf("field %q is not a non-negative number of seconds: %q", key, d)
		}

		if secs >= maxDurationSeconds {
			return 0, fmt.Errorf("field %q is out of range: %q s", key, d)
		}

		return time.Duration(secs * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("field %q is %T, not a duration", key, v)
	}
}

func decodeEvent(f frame) (m.Event, error) {
	name, err := f.str("event")
	if err != nil {
		return m.Event{}, err
	}

	kind, ok := m.ParseEventKind(name)
	if !ok {
		return m.Event{}, fmt.Errorf("unknown event %q", name)
	}

	evt := m.Event{Kind: kind}

	switch kind {
	case m.EventStartedRun, m.EventEndedRun:
	case m.EventStartedSuite:
		evt.Suites, err = f.strings("suites")
	case m.EventEndedSuite:
		if f.has("suites") {
			evt.Suites, err = f.strings("suites")
		}
	case m.EventStartedTest:
		evt.Test, err = decodeTestName(f, false)
	case m.EventPassedTest:
		err = decodeTimed(f, &evt)
	case m.EventFailedTest:
		if err = decodeTimed(f, &evt); err == nil {
			evt.Message, err = f.str("message")
		}
	case m.EventSkippedTest:
		if f.has("test") {
			evt.Test, err = decodeTestName(f, false)
		}

		if err == nil {
			evt.Message, err = f.str("message")
		}
	case m.EventFailedFile:
		if evt.File, err = f.str("file"); err == nil {
			evt.Message, err = f.str("message")
		}
	}

	if err != nil {
		return m.Event{}, fmt.Errorf("%s: %w", name, err)
	}

	return evt, nil
}

// decodeTestName reads the "test" dictionary. The id is mandatory only for
// passed and failed tests.
func decodeTestName(f frame, requireID bool) (m.TestName, error) {
	test, err := f.dict("test")
	if err != nil {
		return m.TestName{}, err
	}

	var name m.TestName

	if name.Name, err = test.str("test"); err != nil {
		return m.TestName{}, fmt.Errorf("test: %w", err)
	}

	if test.has("suites") {
		if name.Suites, err = test.strings("suites"); err != nil {
			return m.TestName{}, fmt.Errorf("test: %w", err)
		}
	}

	switch id := test["id"].(type) {
	case int64:
		name.ID = strconv.FormatInt(id, 10)
	case string:
		name.ID = id
	case nil:
		if requireID {
			return m.TestName{}, fmt.Errorf("test: missing field %q", "id")
		}
	default:
		return m.TestName{}, fmt.Errorf("test: field %q is %T, not an integer", "id", id)
	}

	return name, nil
}

func decodeTimed(f frame, evt *m.Event) error {
	var err error

	if evt.Test, err = decodeTestName(f, true); err != nil {
		return err
	}

	if evt.Duration, err = f.duration("duration"); err != nil {
		return err
	}

	output, err := f.dict("output")
	if err != nil {
		return err
	}

	stdout, err := output.str("stdout_log")
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}

	stderr, err := output.str("stderr_log")
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}

	evt.Output = m.TestOutput{Stdout: []byte(stdout), Stderr: []byte(stderr)}

	return nil
}
