// Package junitxml renders report trees as JUnit XML and parses them back.
package junitxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"time"

	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// testSuites is the top level element of a JUnit report.
type testSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Errors   int          `xml:"errors,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []*testSuite `xml:"testsuite"`
}

// testSuite is one flattened suite. Disabled and skipped always carry the
// same value since the wire protocol cannot tell them apart.
type testSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Errors   int         `xml:"errors,attr"`
	Disabled int         `xml:"disabled,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []*testCase `xml:"testcase"`
}

type testCase struct {
	Name      string   `xml:"name,attr"`
	ID        string   `xml:"id,attr,omitempty"`
	Time      string   `xml:"time,attr"`
	Failure   *message `xml:"failure"`
	Skipped   *message `xml:"skipped"`
	SystemOut *text    `xml:"system-out"`
	SystemErr *text    `xml:"system-err"`
}

type message struct {
	Message string `xml:"message,attr"`
}

type text struct {
	Body string `xml:",chardata"`
}

// MarshalXML writes the body as character data with line breaks kept
// literally, so captured output stays readable in the raw report.
func (t *text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if err := e.EncodeToken(xml.CharData(t.Body)); err != nil {
		return err
	}

	return e.EncodeToken(start.End())
}

// FormatTime renders a duration as seconds in the shortest decimal form
// that parses back to the same value.
func FormatTime(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// ParseTime is the inverse of FormatTime. Values are rounded to the
// nearest nanosecond.
func ParseTime(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}

	if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	return time.Duration(math.Round(secs * float64(time.Second))), nil
}

// Marshal renders run as an indented JUnit document with an XML declaration.
func Marshal(run *m.Run) ([]byte, error) {
	if run == nil {
		return nil, fmt.Errorf("marshal report: nil run")
	}

	doc := testSuites{
		Tests:    run.Tests,
		Failures: run.Failures,
		Errors:   run.Errors,
		Time:     FormatTime(run.Time),
		Suites:   make([]*testSuite, 0, len(run.Suites)),
	}

	for _, s := range run.Suites {
		doc.Suites = append(doc.Suites, fromSuite(s))
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	buf.WriteString("\n")

	return buf.Bytes(), nil
}

func fromSuite(s *m.Suite) *testSuite {
	out := &testSuite{
		Name:     s.Name,
		Tests:    s.Tests,
		Failures: s.Failures,
		Errors:   s.Errors,
		Disabled: s.Disabled,
		Skipped:  s.Skipped,
		Time:     FormatTime(s.Time),
		Cases:    make([]*testCase, 0, len(s.Cases)),
	}

	for _, t := range s.Cases {
		tc := &testCase{
			Name: t.Name,
			ID:   t.ID,
			Time: FormatTime(t.Time),
		}

		if t.Outcome != nil {
			switch t.Outcome.Kind {
			case m.OutcomeFailure:
				tc.Failure = &message{Message: t.Outcome.Message}
			case m.OutcomeSkipped:
				tc.Skipped = &message{Message: t.Outcome.Message}
			}
		}

		if t.SystemOut != "" {
			tc.SystemOut = &text{Body: t.SystemOut}
		}

		if t.SystemErr != "" {
			tc.SystemErr = &text{Body: t.SystemErr}
		}

		out.Cases = append(out.Cases, tc)
	}

	return out
}

// Unmarshal parses a JUnit document produced by Marshal back into a report
// tree.
func Unmarshal(data []byte) (*m.Run, error) {
	var doc testSuites
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}

	runTime, err := ParseTime(doc.Time)
	if err != nil {
		return nil, fmt.Errorf("unmarshal report: testsuites: %w", err)
	}

	run := &m.Run{
		Tests:    doc.Tests,
		Failures: doc.Failures,
		Errors:   doc.Errors,
		Time:     runTime,
	}

	for _, s := range doc.Suites {
		suite, err := toSuite(s)
		if err != nil {
			return nil, fmt.Errorf("unmarshal report: testsuite %q: %w", s.Name, err)
		}

		run.Suites = append(run.Suites, suite)
	}

	return run, nil
}

func toSuite(s *testSuite) (*m.Suite, error) {
	suiteTime, err := ParseTime(s.Time)
	if err != nil {
		return nil, err
	}

	suite := &m.Suite{
		Name:     s.Name,
		Tests:    s.Tests,
		Failures: s.Failures,
		Errors:   s.Errors,
		Disabled: s.Disabled,
		Skipped:  s.Skipped,
		Time:     suiteTime,
	}

	for _, tc := range s.Cases {
		caseTime, err := ParseTime(tc.Time)
		if err != nil {
			return nil, fmt.Errorf("testcase %q: %w", tc.Name, err)
		}

		t := &m.Test{Name: tc.Name, ID: tc.ID, Time: caseTime}

		switch {
		case tc.Failure != nil:
			t.Outcome = &m.Outcome{Kind: m.OutcomeFailure, Message: tc.Failure.Message}
		case tc.Skipped != nil:
			t.Outcome = &m.Outcome{Kind: m.OutcomeSkipped, Message: tc.Skipped.Message}
		}

		if tc.SystemOut != nil {
			t.SystemOut = tc.SystemOut.Body
		}

		if tc.SystemErr != nil {
			t.SystemErr = tc.SystemErr.Body
		}

		suite.Cases = append(suite.Cases, t)
	}

	return suite, nil
}
