package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/me/schedsim/internal/compare"
	"github.com/me/schedsim/pkg/model"
)

// WriteText renders the heading, timeline, process table, CPU table and averages.
func WriteText(w io.Writer, res *model.SimulationResult, opts Options) error {
	if res.Empty() {
		_, err := fmt.Fprintln(w, "No processes to simulate.")
		return err
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("%s on %d CPU(s)", res.Algorithm.Name(), res.CPUs)
		if res.Algorithm.UsesQuantum() {
			title += fmt.Sprintf(", quantum %d", res.Quantum)
		}
	}
	fmt.Fprintf(w, "Simulation: %s\n", title)
	fmt.Fprintf(w, "Total time: %s ticks, %d of %d processes completed\n",
		humanize.Comma(int64(res.TotalTicks)), res.Completed, len(res.Processes))

	pids := make([]int, len(res.Processes))
	for i, p := range res.Processes {
		pids[i] = p.PID
	}
	if err := WriteTimeline(w, res.Timeline, pids, opts); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nProcess Statistics:")
	processTable(w, res.Processes)

	fmt.Fprintln(w, "\nCPU Statistics:")
	cpuTable(w, res.CPUStats)

	writeAverages(w, res.Summary())
	return nil
}

func processTable(w io.Writer, procs []model.ProcessStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PID", "Arrival", "Burst", "Priority", "Start", "Finish", "Turnaround", "Waiting", "Response"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	rows := make([][]string, 0, len(procs))
	for _, p := range procs {
		rows = append(rows, []string{
			strconv.Itoa(p.PID),
			strconv.Itoa(p.Arrival),
			strconv.Itoa(p.Burst),
			strconv.Itoa(p.Priority),
			na(p.Start),
			na(p.Finish),
			na(p.Turnaround),
			na(p.Waiting),
			na(p.Response),
		})
	}
	table.AppendBulk(rows)
	table.Render()
}

func cpuTable(w io.Writer, cpus []model.CPUStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CPU", "Busy", "Idle", "Utilization"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	var busy, idle int
	for _, c := range cpus {
		busy += c.BusyTicks
		idle += c.IdleTicks
		table.Append([]string{
			strconv.Itoa(c.ID),
			strconv.Itoa(c.BusyTicks),
			strconv.Itoa(c.IdleTicks),
			fmt.Sprintf("%.2f%%", c.Utilization()),
		})
	}
	total := model.CPUStats{BusyTicks: busy, IdleTicks: idle}
	table.SetFooter([]string{"All", strconv.Itoa(busy), strconv.Itoa(idle), fmt.Sprintf("%.2f%%", total.Utilization())})
	table.Render()
}

func writeAverages(w io.Writer, s model.Summary) {
	if s.Completed == 0 {
		fmt.Fprintln(w, "\nNo processes completed. Cannot calculate average statistics.")
		return
	}
	fmt.Fprintf(w, "\nAverage Statistics (for %d completed processes):\n", s.Completed)
	fmt.Fprintf(w, "  Average Turnaround Time: %.2f\n", s.AvgTurnaround)
	fmt.Fprintf(w, "  Average Waiting Time:    %.2f\n", s.AvgWaiting)
	fmt.Fprintf(w, "  Average Response Time:   %.2f\n", s.AvgResponse)
	fmt.Fprintf(w, "  Throughput:              %.3f processes/tick\n", s.Throughput)
}

// WriteComparison renders one row of averages per algorithm.
func WriteComparison(w io.Writer, entries []model.ComparisonEntry) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Algorithm", "Status", "Completed", "Ticks", "Avg Turnaround", "Avg Waiting", "Avg Response", "Utilization"})
	for _, e := range entries {
		if e.Error != "" && e.Status != model.RunStatusDiverged {
			table.Append([]string{e.Algorithm.String(), "ERROR", "-", "-", "-", "-", "-", e.Error})
			continue
		}
		s := e.Summary
		table.Append([]string{
			e.Algorithm.String(),
			e.Status.String(),
			fmt.Sprintf("%d/%d", s.Completed, s.Total),
			strconv.Itoa(e.TotalTicks),
			fmt.Sprintf("%.2f", s.AvgTurnaround),
			fmt.Sprintf("%.2f", s.AvgWaiting),
			fmt.Sprintf("%.2f", s.AvgResponse),
			fmt.Sprintf("%.2f%%", s.Utilization),
		})
	}
	table.Render()
	if best := compare.Best(entries); best != "" {
		_, err := fmt.Fprintf(w, "Lowest average waiting time: %s\n", best)
		return err
	}
	return nil
}
