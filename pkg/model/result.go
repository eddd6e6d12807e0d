package model

import "time"

// IdleSlot marks an idle CPU in a timeline row.
const IdleSlot = -1

// Timeline is the per-tick, per-CPU occupancy log: Timeline[tick][cpu] is a PID or IdleSlot.
type Timeline [][]int

// ProcessStats are the final statistics of one process. Fields that are unavailable
// for an incomplete process hold Unset.
type ProcessStats struct {
	PID          int          `json:"pid" yaml:"pid"`
	Arrival      int          `json:"arrival" yaml:"arrival"`
	Burst        int          `json:"burst" yaml:"burst"`
	Priority     int          `json:"priority" yaml:"priority"`
	State        ProcessState `json:"state" yaml:"state"`
	Completed    bool         `json:"completed" yaml:"completed"`
	Start        int          `json:"start" yaml:"start"`
	Finish       int          `json:"finish" yaml:"finish"`
	Turnaround   int          `json:"turnaround" yaml:"turnaround"`
	Waiting      int          `json:"waiting" yaml:"waiting"`
	Response     int          `json:"response" yaml:"response"`
	WaitingTicks int          `json:"waiting_ticks" yaml:"waiting_ticks"`
}

// NewProcessStats derives the reported statistics from a process's final run state.
func NewProcessStats(p Process) ProcessStats {
	st := ProcessStats{
		PID:          p.PID,
		Arrival:      p.Arrival,
		Burst:        p.Burst,
		Priority:     p.Priority,
		State:        p.State,
		Completed:    p.State == ProcessStateCompleted,
		Start:        p.StartTime,
		Finish:       Unset,
		Turnaround:   Unset,
		Waiting:      Unset,
		Response:     p.ResponseTime,
		WaitingTicks: p.WaitingTime,
	}
	if st.Completed {
		st.Finish = p.FinishTime
		st.Turnaround = p.FinishTime - p.Arrival
		st.Waiting = st.Turnaround - p.Burst
		if st.Waiting < 0 {
			st.Waiting = 0
		}
	}
	return st
}

// CPUStats are the cumulative counters of one CPU.
type CPUStats struct {
	ID        int `json:"id" yaml:"id"`
	BusyTicks int `json:"busy_ticks" yaml:"busy_ticks"`
	IdleTicks int `json:"idle_ticks" yaml:"idle_ticks"`
}

// Utilization is the busy share in percent, 0 when the CPU never ticked.
func (c CPUStats) Utilization() float64 {
	total := c.BusyTicks + c.IdleTicks
	if total == 0 {
		return 0
	}
	return 100 * float64(c.BusyTicks) / float64(total)
}

// SimulationResult is everything a run produced.
type SimulationResult struct {
	Algorithm     Algorithm      `json:"algorithm" yaml:"algorithm"`
	CPUs          int            `json:"cpus" yaml:"cpus"`
	Quantum       int            `json:"quantum,omitempty" yaml:"quantum,omitempty"`
	PriorityOrder PriorityOrder  `json:"priority_order" yaml:"priority_order"`
	Processes     []ProcessStats `json:"processes" yaml:"processes"`
	CPUStats      []CPUStats     `json:"cpu_stats" yaml:"cpu_stats"`
	Timeline      Timeline       `json:"timeline" yaml:"timeline"`
	TotalTicks    int            `json:"total_ticks" yaml:"total_ticks"`
	Completed     int            `json:"completed" yaml:"completed"`
}

// Empty reports whether there was nothing to simulate.
func (r *SimulationResult) Empty() bool {
	return r == nil || len(r.Processes) == 0
}

// Summary holds averages over completed processes.
type Summary struct {
	Completed     int     `json:"completed" yaml:"completed"`
	Total         int     `json:"total" yaml:"total"`
	AvgTurnaround float64 `json:"avg_turnaround" yaml:"avg_turnaround"`
	AvgWaiting    float64 `json:"avg_waiting" yaml:"avg_waiting"`
	AvgResponse   float64 `json:"avg_response" yaml:"avg_response"`
	Utilization   float64 `json:"utilization" yaml:"utilization"`
	Throughput    float64 `json:"throughput" yaml:"throughput"`
}

// Summary computes averages over completed processes and pool-wide utilisation.
// It only reads the result, so repeated calls return identical values.
func (r *SimulationResult) Summary() Summary {
	var s Summary
	if r == nil {
		return s
	}
	s.Total = len(r.Processes)
	var turnaround, waiting, response int
	for _, p := range r.Processes {
		if !p.Completed {
			continue
		}
		s.Completed++
		turnaround += p.Turnaround
		waiting += p.Waiting
		response += p.Response
	}
	if s.Completed > 0 {
		n := float64(s.Completed)
		s.AvgTurnaround = float64(turnaround) / n
		s.AvgWaiting = float64(waiting) / n
		s.AvgResponse = float64(response) / n
	}
	var busy, all int
	for _, c := range r.CPUStats {
		busy += c.BusyTicks
		all += c.BusyTicks + c.IdleTicks
	}
	if all > 0 {
		s.Utilization = 100 * float64(busy) / float64(all)
	}
	if r.TotalTicks > 0 {
		s.Throughput = float64(s.Completed) / float64(r.TotalTicks)
	}
	return s
}

// Run is a persisted simulation run. Workload keeps the input so the run can be
// replayed; Result is omitted from list queries.
type Run struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Algorithm     Algorithm         `json:"algorithm" yaml:"algorithm"`
	CPUs          int               `json:"cpus" yaml:"cpus"`
	Quantum       int               `json:"quantum" yaml:"quantum"`
	PriorityOrder PriorityOrder     `json:"priority_order" yaml:"priority_order"`
	MaxTicks      int               `json:"max_ticks" yaml:"max_ticks"`
	Status        RunStatus         `json:"status" yaml:"status"`
	Error         string            `json:"error,omitempty" yaml:"error,omitempty"`
	TotalTicks    int               `json:"total_ticks" yaml:"total_ticks"`
	Summary       Summary           `json:"summary" yaml:"summary"`
	Workload      []ProcessSpec     `json:"workload,omitempty" yaml:"workload,omitempty"`
	Result        *SimulationResult `json:"result,omitempty" yaml:"result,omitempty"`
	CreatedAt     time.Time         `json:"created_at" yaml:"created_at"`
}

// ComparisonEntry is one algorithm's outcome in a side-by-side comparison.
type ComparisonEntry struct {
	Algorithm  Algorithm         `json:"algorithm" yaml:"algorithm"`
	Status     RunStatus         `json:"status" yaml:"status"`
	Summary    Summary           `json:"summary" yaml:"summary"`
	TotalTicks int               `json:"total_ticks" yaml:"total_ticks"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
	Result     *SimulationResult `json:"result,omitempty" yaml:"result,omitempty"`
}
