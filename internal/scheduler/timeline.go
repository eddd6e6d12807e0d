package scheduler

import "github.com/me/schedsim/pkg/model"

// initialTimelineRows caps the preallocated timeline; record grows it past that.
const initialTimelineRows = 1024

// timelineRecorder appends one row per tick. The engine never reads it back.
type timelineRecorder struct {
	rows model.Timeline
}

func newTimelineRecorder(capacity int) *timelineRecorder {
	return &timelineRecorder{rows: make(model.Timeline, 0, capacity)}
}

// record snapshots every CPU's occupant PID, or model.IdleSlot, at tick now.
func (t *timelineRecorder) record(now int, cpus cpuPool, reg *Registry) {
	for len(t.rows) <= now {
		t.rows = append(t.rows, nil)
	}
	row := make([]int, len(cpus))
	for i, c := range cpus {
		if c.idle() {
			row[i] = model.IdleSlot
			continue
		}
		row[i] = reg.At(c.occupant).PID
	}
	t.rows[now] = row
}

func (t *timelineRecorder) timeline() model.Timeline {
	return t.rows
}
