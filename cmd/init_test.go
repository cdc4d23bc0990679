package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// inTempDir runs the test from an empty working directory.
func inTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

	return dir
}

func executeInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"init"}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestInitCmd_WritesEffectiveSettings(t *testing.T) {
	dir := inTempDir(t)

	out, err := executeInit(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+configFileName)

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	require.NoError(t, err)

	var written map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &written))

	assert.Contains(t, written, outputFlagName)
	require.IsType(t, map[string]interface{}{}, written["run"])
	assert.Contains(t, written["run"], "parallel")
	assert.Contains(t, written["run"], "fd_flag")
	require.IsType(t, map[string]interface{}{}, written["capture"])
	assert.Contains(t, written["capture"], "encoding")
}

func TestInitCmd_ExistingFile(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		wantKept bool
	}{
		{name: "refuses to overwrite", wantErr: true, wantKept: true},
		{name: "force overwrites", args: []string{"--force"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := inTempDir(t)
			target := filepath.Join(dir, configFileName)
			require.NoError(t, os.WriteFile(target, []byte("existing: true\n"), 0o644))

			_, err := executeInit(t, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			data, err := os.ReadFile(target)
			require.NoError(t, err)

			if tt.wantKept {
				assert.Equal(t, "existing: true\n", string(data))
			} else {
				assert.NotContains(t, string(data), "existing")
			}
		})
	}
}

func TestInitCmd_RejectsArgs(t *testing.T) {
	inTempDir(t)

	_, err := executeInit(t, "extra")
	require.Error(t, err)
}
