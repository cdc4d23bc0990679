package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mettle-junit/mettle-junit/internal/domain"
	m "github.com/mettle-junit/mettle-junit/internal/model"
)

// convertCmd represents the convert command.
var convertCmd = newConvertCmd()

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [flags] EVENTS...",
		Short: "Rebuild JUnit reports from recorded event streams",
		Long: `Rebuild JUnit reports from event streams saved with --record.

Each EVENTS file produces <output>/<name>.xml, where <name> is the file name
without its .events extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Convert(cmd.Context(), domain.ConvertArgs{
				Files:    parsePaths(args),
				Reports:  m.Path(viper.GetString(outputFlagName)),
				Parallel: viper.GetInt(runParallelConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
