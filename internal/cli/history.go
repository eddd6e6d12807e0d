package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/report"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

func newHistoryCmd() *cobra.Command {
	opts := model.DefaultListOptions()

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Algorithm != "" {
				alg, err := model.ParseAlgorithm(opts.Algorithm)
				if err != nil {
					return err
				}
				opts.Algorithm = alg.String()
			}
			opts.Clamp()

			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			runs, total, err := st.ListRuns(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			writeRunTable(cmd.OutOrStdout(), runs, total, "No saved runs.")
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", opts.Limit, "Maximum runs to show (1-100)")
	cmd.Flags().IntVar(&opts.Offset, "offset", opts.Offset, "Skip this many runs")
	cmd.Flags().StringVarP(&opts.Algorithm, "algorithm", "a", "", "Only show runs of this algorithm")
	return cmd
}

func newShowCmd() *cobra.Command {
	var format, color string
	var showWorkload bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Re-render a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			if showWorkload {
				return workload.Write(out, run.Workload)
			}
			if run.Result == nil {
				return fmt.Errorf("run %s has no stored result (status %s)", run.ID, run.Status)
			}
			opts := reportOptions(config.SimConfig{Color: color}, out)
			opts.Title = run.Name
			return report.Write(out, run.Result, f, opts)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format (text, csv, json, yaml)")
	cmd.Flags().StringVar(&color, "color", "auto", "Colour the timeline (auto, always, never)")
	cmd.Flags().BoolVar(&showWorkload, "workload", false, "Print the stored workload records instead of the report")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			err = st.DeleteRun(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("delete run: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}

// writeRunTable lists runs one per row. total is the full match count.
func writeRunTable(w io.Writer, runs []*model.Run, total int, empty string) {
	if len(runs) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Algorithm", "CPUs", "Status", "Ticks", "Avg Waiting", "Created"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.Name,
			r.Algorithm.String(),
			strconv.Itoa(r.CPUs),
			r.Status.String(),
			humanize.Comma(int64(r.TotalTicks)),
			fmt.Sprintf("%.2f", r.Summary.AvgWaiting),
			humanize.Time(r.CreatedAt),
		})
	}
	table.Render()
	if len(runs) < total {
		fmt.Fprintf(w, "\n(%d of %d shown)\n", len(runs), total)
	}
}
