package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/compare"
	"github.com/me/schedsim/internal/report"
)

func newCompareCmd() *cobra.Command {
	var sf simFlags
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "compare [workload-file]",
		Short: "Run one workload under several algorithms side by side",
		Example: `  schedsim compare procs.txt
  schedsim compare -f procs.txt -a FCFS,SRTF -c 2 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, scen, err := sf.resolve(cmd, args)
			if err != nil {
				return err
			}
			algs, err := parseAlgorithms(cfg.Algorithms)
			if err != nil {
				return err
			}
			base, err := cfg.SchedulerConfig()
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}
			if format == report.FormatCSV {
				return fmt.Errorf("compare: csv output is not supported, use text, json or yaml")
			}

			entries, err := compare.NewRunner(logger).Run(cmd.Context(), scen.Processes, compare.Options{
				Algorithms:    algs,
				Base:          base,
				MaxConcurrent: maxConcurrent,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case report.FormatJSON:
				return report.WriteJSON(out, entries)
			case report.FormatYAML:
				return report.WriteYAML(out, entries)
			}
			fmt.Fprintf(out, "Workload: %s (%d processes)\n", scen.Name, len(scen.Processes))
			return report.WriteComparison(out, entries)
		},
	}

	sf.register(cmd, true)
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Maximum simultaneous simulations (0 = unlimited)")
	return cmd
}
