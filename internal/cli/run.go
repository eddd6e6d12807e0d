package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/report"
	"github.com/me/schedsim/internal/scheduler"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/pkg/model"
)

func newRunCmd() *cobra.Command {
	var sf simFlags
	var save bool
	var name string

	cmd := &cobra.Command{
		Use:   "run [workload-file]",
		Short: "Simulate a workload under one algorithm",
		Long: `Run a single simulation and print the report.

A run that exceeds its tick limit prints the partial report and exits with an
error. With --save the run (including a partial one) is stored in the local
history database.`,
		Example: `  schedsim run -f procs.txt -a RR -q 3 -c 2
  schedsim run scenario.yaml -o csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, scen, err := sf.resolve(cmd, args)
			if err != nil {
				return err
			}
			schedCfg, err := cfg.SchedulerConfig()
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}

			res, runErr := scheduler.New(schedCfg, logger).Run(cmd.Context(), scen.Processes)
			if runErr != nil && !errors.Is(runErr, model.ErrDiverged) {
				return fmt.Errorf("simulate: %w", runErr)
			}

			out := cmd.OutOrStdout()
			if err := report.Write(out, res, format, reportOptions(cfg, out)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			if save {
				if name == "" {
					name = scen.Name
				}
				st, err := openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()

				run := store.NewRun(store.NewRunID(), name, schedCfg, scen.Processes, res, runErr, time.Now())
				if err := st.CreateRun(cmd.Context(), run); err != nil {
					return fmt.Errorf("save run: %w", err)
				}
				// stderr keeps machine-readable stdout clean.
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s (%s)\n", run.ID, run.Status)
			}
			return runErr
		},
	}

	sf.register(cmd, false)
	cmd.Flags().BoolVar(&save, "save", false, "Store the run in the local history database")
	cmd.Flags().StringVar(&name, "name", "", "Name for the saved run (default: workload file name)")
	return cmd
}
