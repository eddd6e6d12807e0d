package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/report"
	"github.com/me/schedsim/pkg/model"
)

func newSubmitCmd() *cobra.Command {
	var sf simFlags
	var name string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "submit [workload-file]",
		Short: "Run a simulation on the schedsim server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, scen, err := sf.resolve(cmd, args)
			if err != nil {
				return err
			}
			if name == "" {
				name = scen.Name
			}
			req := model.SimulationRequest{
				Name:          name,
				Algorithm:     cfg.Algorithm,
				CPUs:          cfg.CPUs,
				Quantum:       cfg.Quantum,
				PriorityOrder: cfg.PriorityOrder,
				MaxTicks:      cfg.MaxTicks,
				Processes:     scen.Processes,
			}

			run, err := client.CreateSimulation(cmd.Context(), req, dryRun)
			if err != nil {
				return fmt.Errorf("submit simulation: %w", err)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "Dry-run: simulation was not stored.")
			} else {
				fmt.Fprintf(out, "Simulation created: %s\n", run.ID)
			}
			printRun(out, run)
			return nil
		},
	}

	sf.register(cmd, false)
	cmd.Flags().StringVar(&name, "name", "", "Run name (default: workload file name)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate on the server without storing the run")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status <run-id>",
		Short: "Show a simulation stored on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := client.GetSimulation(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get simulation: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "" {
				printRun(out, run)
				return nil
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if run.Result == nil {
				return fmt.Errorf("simulation %s has no result", run.ID)
			}
			opts := reportOptions(config.SimConfig{Color: "never"}, out)
			opts.Title = run.Name
			return report.Write(out, run.Result, f, opts)
		},
	}

	cmd.Flags().StringVar(&format, "report", "", "Print the full report in this format (text, csv, json, yaml)")
	return cmd
}

func newListCmd() *cobra.Command {
	opts := model.DefaultListOptions()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List simulations stored on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, pg, err := client.ListSimulations(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list simulations: %w", err)
			}
			total := len(runs)
			if pg != nil {
				total = pg.Total
			}
			writeRunTable(cmd.OutOrStdout(), runs, total, "No simulations found.")
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", opts.Limit, "Maximum simulations to show (1-100)")
	cmd.Flags().IntVar(&opts.Offset, "offset", opts.Offset, "Skip this many simulations")
	cmd.Flags().StringVarP(&opts.Algorithm, "algorithm", "a", "", "Only show simulations of this algorithm")
	return cmd
}

// printRun writes a short human summary of run.
func printRun(w io.Writer, run *model.Run) {
	fmt.Fprintf(w, "Simulation: %s\n", run.ID)
	if run.Name != "" {
		fmt.Fprintf(w, "  Name:       %s\n", run.Name)
	}
	setup := fmt.Sprintf("%s on %d CPU(s)", run.Algorithm.Name(), run.CPUs)
	if run.Algorithm.UsesQuantum() {
		setup += fmt.Sprintf(", quantum %d", run.Quantum)
	}
	fmt.Fprintf(w, "  Algorithm:  %s\n", setup)
	fmt.Fprintf(w, "  Status:     %s\n", run.Status)
	if run.Error != "" {
		fmt.Fprintf(w, "  Error:      %s\n", run.Error)
	}
	s := run.Summary
	fmt.Fprintf(w, "  Ticks:      %s\n", humanize.Comma(int64(run.TotalTicks)))
	fmt.Fprintf(w, "  Completed:  %d/%d\n", s.Completed, s.Total)
	if s.Completed > 0 {
		fmt.Fprintf(w, "  Averages:   turnaround %.2f, waiting %.2f, response %.2f\n",
			s.AvgTurnaround, s.AvgWaiting, s.AvgResponse)
	}
	if !run.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Created:    %s\n", humanize.Time(run.CreatedAt))
	}
}
