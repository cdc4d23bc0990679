// Package cmd provides the root command and CLI setup for mettle-junit.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/mettle-junit/mettle-junit/internal/adapter"
	"github.com/mettle-junit/mettle-junit/internal/controller"
	"github.com/mettle-junit/mettle-junit/internal/domain"
	m "github.com/mettle-junit/mettle-junit/internal/model"
)

var reportStore adapter.ReportStore

// workflow is wired from configuration on first use unless already set.
var workflow domain.Workflow

var reportsOutputDirFlag string
var runParallelFlag int
var runTimeoutFlag string
var runArgsFlag []string
var runFDFlag string
var runRecordFlag bool
var ignoreExitStatusFlag bool
var encodingFlag string
var logFileFlag string
var verboseFlag bool
var noTUIFlag bool

func init() {
	configureRootFlags(rootCmd)

	reportStore = adapter.NewReportStore()
}

const rootLongDescription = `mettle-junit runs mettle test executables and converts the event stream
each one writes to a private descriptor into a JUnit XML report.

Every FILE is started with --output-fd=3 appended to its arguments and
produces <output>/<name>.xml. Executables run in parallel with --parallel.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mettle-junit [flags] FILE...",
		Short: "Convert mettle test results to JUnit XML",
		Long:  rootLongDescription,
		Args:  cobra.ArbitraryArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			timeout, err := parseTimeout(viper.GetString(runTimeoutConfigKey))
			if err != nil {
				return err
			}

			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Run(cmd.Context(), domain.RunArgs{
				Files:            parsePaths(args),
				Reports:          m.Path(viper.GetString(outputFlagName)),
				Args:             viper.GetStringSlice(runArgsConfigKey),
				Parallel:         viper.GetInt(runParallelConfigKey),
				Timeout:          timeout,
				Record:           viper.GetBool(runRecordConfigKey),
				IgnoreExitStatus: viper.GetBool(ignoreExitStatusConfigKey),
			})
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for JUnit reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files processed concurrently")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.PersistentFlags().StringVar(&encodingFlag, encodingFlagName, viper.GetString(encodingConfigKey), "text encoding of captured test output")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(encodingFlagName), encodingConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().BoolVar(&noTUIFlag, noTUIFlagName, viper.GetBool(noTUIConfigKey), "disable the interactive progress view")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noTUIFlagName), noTUIConfigKey)

	cmd.Flags().StringVarP(&runTimeoutFlag, runTimeoutFlagName, "t", viper.GetString(runTimeoutConfigKey), "timeout per test executable, e.g. 90s or 2m (0 means none)")
	bindFlagToConfig(cmd.Flags().Lookup(runTimeoutFlagName), runTimeoutConfigKey)

	cmd.Flags().StringArrayVarP(&runArgsFlag, runArgFlagName, "a", viper.GetStringSlice(runArgsConfigKey), "extra argument passed to every executable (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(runArgFlagName), runArgsConfigKey)

	cmd.Flags().StringVar(&runFDFlag, runFDFlagName, viper.GetString(runFDFlagConfigKey), "option used to pass the event descriptor")
	bindFlagToConfig(cmd.Flags().Lookup(runFDFlagName), runFDFlagConfigKey)

	cmd.Flags().BoolVar(&runRecordFlag, runRecordFlagName, viper.GetBool(runRecordConfigKey), "also save raw event streams as <name>.events")
	bindFlagToConfig(cmd.Flags().Lookup(runRecordFlagName), runRecordConfigKey)

	cmd.Flags().BoolVar(&ignoreExitStatusFlag, ignoreExitStatusFlagName, viper.GetBool(ignoreExitStatusConfigKey), "do not treat a non-zero exit status as a failure")
	bindFlagToConfig(cmd.Flags().Lookup(ignoreExitStatusFlagName), ignoreExitStatusConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// currentWorkflow returns the configured workflow, wiring it from the
// current configuration when none has been set.
func currentWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	if workflow != nil {
		return workflow, nil
	}

	enc, err := lookupEncoding(viper.GetString(encodingConfigKey))
	if err != nil {
		return nil, err
	}

	tty := !viper.GetBool(noTUIConfigKey) && controller.IsTTY(cmd.OutOrStdout())
	ui := controller.NewUI(cmd, tty)

	// The progress view owns the terminal; child output would corrupt it.
	var stdout, stderr io.Writer = cmd.OutOrStdout(), cmd.ErrOrStderr()
	if tty {
		stdout, stderr = io.Discard, io.Discard
	}

	testAdapter := adapter.NewLocalTestRunnerAdapter(
		adapter.WithFDFlag(viper.GetString(runFDFlagConfigKey)),
		adapter.WithProcessOutput(stdout, stderr),
	)

	workflow = domain.NewWorkflow(reportStore, ui, domain.NewOrchestrator(testAdapter, enc))

	return workflow, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
