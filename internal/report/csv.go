package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/me/schedsim/pkg/model"
)

// WriteCSV emits three sections (process stats, CPU stats, averages) between
// begin and end markers. Unavailable values are written as N/A.
func WriteCSV(w io.Writer, res *model.SimulationResult) error {
	cw := csv.NewWriter(w)

	fmt.Fprintln(w, "--- CSV Output ---")
	fmt.Fprintln(w, "\nProcess Stats (CSV):")
	_ = cw.Write([]string{"PID", "Arrival", "Burst", "Priority", "Start", "Finish", "Turnaround", "Waiting", "Response"})
	for _, p := range res.Processes {
		start, response := na(p.Start), na(p.Response)
		if !p.Completed {
			start, response = "N/A", "N/A"
		}
		_ = cw.Write([]string{
			strconv.Itoa(p.PID),
			strconv.Itoa(p.Arrival),
			strconv.Itoa(p.Burst),
			strconv.Itoa(p.Priority),
			start,
			na(p.Finish),
			na(p.Turnaround),
			na(p.Waiting),
			response,
		})
	}
	cw.Flush()

	fmt.Fprintln(w, "\nCPU Stats (CSV):")
	_ = cw.Write([]string{"CPU_ID", "BusyTime", "IdleTime", "Utilization%"})
	for _, c := range res.CPUStats {
		_ = cw.Write([]string{
			strconv.Itoa(c.ID),
			strconv.Itoa(c.BusyTicks),
			strconv.Itoa(c.IdleTicks),
			fmt.Sprintf("%.2f", c.Utilization()),
		})
	}
	cw.Flush()

	fmt.Fprintln(w, "\nAverage Stats (CSV):")
	_ = cw.Write([]string{"AvgTurnaround", "AvgWaiting", "AvgResponse"})
	s := res.Summary()
	if s.Completed > 0 {
		_ = cw.Write([]string{
			fmt.Sprintf("%.2f", s.AvgTurnaround),
			fmt.Sprintf("%.2f", s.AvgWaiting),
			fmt.Sprintf("%.2f", s.AvgResponse),
		})
	} else {
		_ = cw.Write([]string{"N/A", "N/A", "N/A"})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	_, err := fmt.Fprintln(w, "--- End CSV Output ---")
	return err
}
