package junitxml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

func sampleRun() *m.Run {
	return &m.Run{
		Tests:    3,
		Failures: 1,
		Time:     1500 * time.Millisecond,
		Suites: []*m.Suite{
			{
				Name:     "pkg.sub",
				Tests:    3,
				Failures: 1,
				Disabled: 1,
				Skipped:  1,
				Time:     1500 * time.Millisecond,
				Cases: []*m.Test{
					{Name: "passes", ID: "1", Time: 500 * time.Millisecond, SystemOut: "hello"},
					{
						Name:      "fails",
						ID:        "2",
						Time:      time.Second,
						Outcome:   &m.Outcome{Kind: m.OutcomeFailure, Message: "boom"},
						SystemErr: "trace <here> & there",
					},
					{Name: "later", ID: "3", Outcome: &m.Outcome{Kind: m.OutcomeSkipped, Message: "not yet"}},
				},
			},
		},
	}
}

func TestMarshal_SingleTestScenario(t *testing.T) {
	run := &m.Run{
		Tests: 1,
		Time:  500 * time.Millisecond,
		Suites: []*m.Suite{{
			Name:  "pkg.sub",
			Tests: 1,
			Time:  500 * time.Millisecond,
			Cases: []*m.Test{{Name: "t1", ID: "1", Time: 500 * time.Millisecond}},
		}},
	}

	data, err := Marshal(run)
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<testsuites tests="1" failures="0" errors="0" time="0.5">
  <testsuite name="pkg.sub" tests="1" failures="0" errors="0" disabled="0" skipped="0" time="0.5">
    <testcase name="t1" id="1" time="0.5"></testcase>
  </testsuite>
</testsuites>
`
	assert.Equal(t, want, string(data))
}

func TestMarshal_OutcomesAndOutput(t *testing.T) {
	data, err := Marshal(sampleRun())
	require.NoError(t, err)

	doc := string(data)
	assert.Contains(t, doc, `<failure message="boom"></failure>`)
	assert.Contains(t, doc, `<skipped message="not yet"></skipped>`)
	assert.Contains(t, doc, `<system-out>hello</system-out>`)
	assert.Contains(t, doc, `<system-err>trace &lt;here&gt; &amp; there</system-err>`)
	assert.Contains(t, doc, `<testcase name="later" id="3" time="0">`)
	assert.Contains(t, doc, `disabled="1" skipped="1"`)
	assert.NotContains(t, doc, `<system-out></system-out>`)
}

func TestMarshal_MultiLineOutputKeepsLineBreaks(t *testing.T) {
	run := &m.Run{
		Tests: 1,
		Suites: []*m.Suite{{
			Name:  "s",
			Tests: 1,
			Cases: []*m.Test{{
				Name:      "chatty",
				SystemOut: "line1\nline2 <b>\nline3",
				SystemErr: "bell\x07",
			}},
		}},
	}

	data, err := Marshal(run)
	require.NoError(t, err)

	doc := string(data)
	assert.Contains(t, doc, "<system-out>line1\nline2 &lt;b&gt;\nline3</system-out>")
	assert.NotContains(t, doc, "&#xA;")
	assert.Contains(t, doc, "<system-err>bell\uFFFD</system-err>")

	parsed, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2 <b>\nline3", parsed.Suites[0].Cases[0].SystemOut)
}

func TestMarshal_OmitsEmptyID(t *testing.T) {
	run := &m.Run{
		Tests: 1,
		Suites: []*m.Suite{{
			Name:  "s",
			Tests: 1,
			Cases: []*m.Test{{Name: "anonymous"}},
		}},
	}

	data, err := Marshal(run)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testcase name="anonymous" time="0">`)
}

func TestMarshal_NilRun(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	run := sampleRun()

	data, err := Marshal(run)
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, run, parsed)
	assert.Equal(t, run.Counts(), parsed.Counts())
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not xml", "nope"},
		{"bad run time", `<testsuites time="soon"></testsuites>`},
		{"negative suite time", `<testsuites time="1"><testsuite name="s" time="-1"></testsuite></testsuites>`},
		{"bad case time", `<testsuites><testsuite name="s"><testcase name="c" time="x"></testcase></testsuite></testsuites>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0"},
		{500 * time.Millisecond, "0.5"},
		{1500 * time.Millisecond, "1.5"},
		{3 * time.Millisecond, "0.003"},
		{2 * time.Minute, "120"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.in))

			back, err := ParseTime(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}
