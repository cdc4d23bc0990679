package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mettle-junit/mettle-junit/internal/junitxml"
	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// IndexFileName is the run index written next to the reports.
const IndexFileName = "index.yaml"

// ReportStore persists reports, the run index and raw event recordings.
type ReportStore interface {
	// SaveReport writes run as JUnit XML to path. Nothing is left at path
	// if writing fails.
	SaveReport(ctx context.Context, path m.Path, run *m.Run) error
	// LoadReport parses a JUnit XML report.
	LoadReport(ctx context.Context, path m.Path) (*m.Run, error)
	// ListReports returns the XML reports in dir, sorted by name.
	ListReports(ctx context.Context, dir m.Path) ([]m.Path, error)
	// SaveIndex writes the per-file results of one invocation to dir.
	SaveIndex(ctx context.Context, dir m.Path, results []m.FileResult) error
	// LoadIndex reads the index written by SaveIndex.
	LoadIndex(ctx context.Context, dir m.Path) ([]IndexEntry, error)
	// CreateRecording opens dir/<name>.events for writing raw event bytes.
	CreateRecording(ctx context.Context, dir m.Path, name string) (io.WriteCloser, error)
	// OpenRecording opens a recorded event stream.
	OpenRecording(ctx context.Context, path m.Path) (io.ReadCloser, error)
}

// IndexEntry is one line of the run index.
type IndexEntry struct {
	File     string  `yaml:"file"`
	Report   string  `yaml:"report,omitempty"`
	Status   string  `yaml:"status"`
	Tests    int     `yaml:"tests"`
	Failures int     `yaml:"failures"`
	Skipped  int     `yaml:"skipped"`
	Time     float64 `yaml:"time"`
	ExitCode int     `yaml:"exit_code"`
	Error    string  `yaml:"error,omitempty"`
}

type index struct {
	Generated time.Time    `yaml:"generated"`
	Files     []IndexEntry `yaml:"files"`
}

// LocalReportStore stores everything on the local file system.
type LocalReportStore struct {
	now func() time.Time
}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{now: time.Now}
}

// SaveReport implements ReportStore.
func (s *LocalReportStore) SaveReport(ctx context.Context, path m.Path, run *m.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := junitxml.Marshal(run)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(string(path), data); err != nil {
		slog.Error("Failed to write report", "path", path, "error", err)
		return fmt.Errorf("write report %s: %w", path, err)
	}

	slog.Info("Wrote report", "path", path, "tests", run.Tests, "failures", run.Failures)

	return nil
}

// LoadReport implements ReportStore.
func (s *LocalReportStore) LoadReport(ctx context.Context, path m.Path) (*m.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	run, err := junitxml.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return run, nil
}

// ListReports implements ReportStore.
func (s *LocalReportStore) ListReports(ctx context.Context, dir m.Path) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(string(dir), "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	sort.Strings(matches)

	paths := make([]m.Path, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, m.Path(match))
	}

	return paths, nil
}

// SaveIndex implements ReportStore.
func (s *LocalReportStore) SaveIndex(ctx context.Context, dir m.Path, results []m.FileResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx := index{
		Generated: s.now().UTC().Truncate(time.Second),
		Files:     make([]IndexEntry, 0, len(results)),
	}

	for _, r := range results {
		entry := IndexEntry{
			File:     string(r.File),
			Report:   string(r.Report),
			Status:   string(r.Status()),
			Tests:    r.Counts.Tests,
			Failures: r.Counts.Failures,
			Skipped:  r.Counts.Skipped,
			Time:     r.Counts.Time.Seconds(),
			ExitCode: r.ExitCode,
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}

		idx.Files = append(idx.Files, entry)
	}

	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	path := filepath.Join(string(dir), IndexFileName)
	if err := writeFileAtomic(path, data); err != nil {
		slog.Error("Failed to write index", "path", path, "error", err)
		return fmt.Errorf("write index: %w", err)
	}

	return nil
}

// LoadIndex implements ReportStore.
func (s *LocalReportStore) LoadIndex(ctx context.Context, dir m.Path) ([]IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(string(dir), IndexFileName))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var idx index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}

	return idx.Files, nil
}

// CreateRecording implements ReportStore.
func (s *LocalReportStore) CreateRecording(ctx context.Context, dir m.Path, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(string(dir), 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(string(dir), name+m.RecordingExt)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}

	slog.Debug("Recording event stream", "path", path)

	return f, nil
}

// OpenRecording implements ReportStore.
func (s *LocalReportStore) OpenRecording(ctx context.Context, path m.Path) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}

	return f, nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	err = os.Rename(tmp.Name(), path)

	return err
}
