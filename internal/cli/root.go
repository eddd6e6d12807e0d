package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/tracing"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagDB        string
	flagConfig    string
	flagTraceFile string

	logger        *slog.Logger
	client        *Client
	traceShutdown tracing.ShutdownFunc
)

// defaultServer returns the default server URL, checking SCHEDSIM_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SCHEDSIM_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the schedsim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedsim",
		Short: "schedsim: discrete-time CPU scheduling simulator",
		Long: `schedsim simulates FCFS, RR, SRTF and SJF scheduling of a process workload
on one or more CPUs and reports per-process and per-CPU statistics.

Workloads are text files of "pid arrival burst [priority]" records or YAML
scenarios. Runs can be saved to a local history database or submitted to a
schedsim server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(logging.Options{
				Level:     logging.ParseLevel(flagLogLevel),
				Format:    flagLogFormat,
				Output:    cmd.ErrOrStderr(),
				AddSource: flagDebug,
			})
			client = NewClient(flagServer, logger)

			if flagTraceFile != "" {
				shutdown, err := tracing.Init("schedsim", config.Version, flagTraceFile)
				if err != nil {
					return fmt.Errorf("init tracing: %w", err)
				}
				traceShutdown = shutdown
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if traceShutdown == nil {
				return nil
			}
			err := traceShutdown(context.Background())
			traceShutdown = nil
			return err
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "schedsim server URL (or SCHEDSIM_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json, auto)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "Run history database path (or "+config.EnvDBPath+" env, default ~/.schedsim/schedsim.db)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML file with default simulation settings")
	root.PersistentFlags().StringVar(&flagTraceFile, "trace-file", "", "Write OpenTelemetry spans as JSON to this file")

	root.AddCommand(
		// Local simulation
		newRunCmd(),
		newCompareCmd(),
		newGenerateCmd(),
		// Run history
		newHistoryCmd(),
		newShowCmd(),
		newDeleteCmd(),
		// Remote server
		newSubmitCmd(),
		newStatusCmd(),
		newListCmd(),
	)

	return root
}
