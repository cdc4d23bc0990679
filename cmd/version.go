package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const unknownVersion = "(devel)"

// buildVersion extracts the module version and VCS revision from info.
func buildVersion(info *debug.BuildInfo) (version, revision string) {
	version = unknownVersion
	if info == nil {
		return version, ""
	}

	if info.Main.Version != "" {
		version = info.Main.Version
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			revision = s.Value
		}
	}

	return version, revision
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mettle-junit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, _ := debug.ReadBuildInfo()
			version, revision := buildVersion(info)

			cmd.Println("mettle-junit", version)

			if revision != "" {
				cmd.Println("revision", revision)
			}

			if info != nil {
				cmd.Println("built with", info.GoVersion)
			}
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
