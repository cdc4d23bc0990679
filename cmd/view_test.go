package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mettle-junit/mettle-junit/internal/domain"
	domainmocks "github.com/mettle-junit/mettle-junit/internal/domain/mocks"
	m "github.com/mettle-junit/mettle-junit/internal/model"
)

func executeView(t *testing.T, args ...string) error {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"view"}, args...))

	return cmd.Execute()
}

func TestViewCmd_ReportsDirectory(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want m.Path
	}{
		{name: "default", want: m.Path(defaultReportsDir)},
		{name: "long flag", args: []string{"--output", "out/junit"}, want: "out/junit"},
		{name: "short flag", args: []string{"-o", "xml"}, want: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := domainmocks.NewMockWorkflow(t)
			withWorkflow(t, wf)

			wf.On("View", mock.Anything, domain.ViewArgs{Reports: tt.want}).Return(nil).Once()

			require.NoError(t, executeView(t, tt.args...))
		})
	}
}

func TestViewCmd_WorkflowError(t *testing.T) {
	wf := domainmocks.NewMockWorkflow(t)
	withWorkflow(t, wf)

	wf.On("View", mock.Anything, mock.Anything).Return(errors.New("unreadable")).Once()

	require.EqualError(t, executeView(t), "unreadable")
}

func TestViewCmd_RejectsPositionalArgs(t *testing.T) {
	withWorkflow(t, domainmocks.NewMockWorkflow(t))

	require.Error(t, executeView(t, "reports"))
}
