package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/me/schedsim/pkg/model"
)

const (
	ansiReset = "\033[0m"
	cellWidth = 5
	idleCell  = "."
)

var pidColors = []string{
	"\033[31m", // red
	"\033[32m", // green
	"\033[33m", // yellow
	"\033[34m", // blue
	"\033[35m", // magenta
	"\033[36m", // cyan
	"\033[37m", // white
}

func colorFor(pid int) string {
	if pid < 0 {
		return ansiReset
	}
	return pidColors[pid%len(pidColors)]
}

// WriteTimeline renders tl in segments of opts.TicksPerRow ticks, one line per
// CPU, preceded by a colour key when colour is enabled.
func WriteTimeline(w io.Writer, tl model.Timeline, pids []int, opts Options) error {
	perRow := opts.TicksPerRow
	if perRow <= 0 {
		perRow = DefaultTicksPerRow
	}
	var b strings.Builder
	b.WriteString("\nExecution Timeline:\n")

	if opts.Color && len(pids) > 0 {
		b.WriteString("\nColor Key:\n")
		for i, pid := range pids {
			fmt.Fprintf(&b, "%sPID %-2d%s ", colorFor(pid), pid, ansiReset)
			if (i+1)%8 == 0 && i+1 < len(pids) {
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}

	cpus := 0
	if len(tl) > 0 {
		cpus = len(tl[0])
	}
	for start := 0; start < len(tl); start += perRow {
		end := min(start+perRow, len(tl))
		fmt.Fprintf(&b, "\nTime %d to %d:\n", start, end-1)
		b.WriteString("Time: ")
		for t := start; t < end; t++ {
			fmt.Fprintf(&b, "%-*d", cellWidth, t)
		}
		b.WriteByte('\n')
		for c := 0; c < cpus; c++ {
			fmt.Fprintf(&b, "CPU%-2d ", c)
			for t := start; t < end; t++ {
				writeCell(&b, tl[t][c], opts.Color)
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCell(b *strings.Builder, pid int, color bool) {
	switch {
	case pid == model.IdleSlot:
		fmt.Fprintf(b, "%-*s", cellWidth, idleCell)
	case color:
		fmt.Fprintf(b, "%s%-*d%s", colorFor(pid), cellWidth, pid, ansiReset)
	default:
		fmt.Fprintf(b, "%-*d", cellWidth, pid)
	}
}
