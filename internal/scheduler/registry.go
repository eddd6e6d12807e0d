package scheduler

import (
	"log/slog"
	"math"

	"github.com/me/schedsim/pkg/model"
)

// Handle is a stable index into a Registry. The ready queue and CPU slots hold
// handles, never copies of process state.
type Handle int

// noProcess marks an idle CPU slot.
const noProcess Handle = -1

// Registry owns the processes of one simulation run.
type Registry struct {
	procs []model.Process
}

// NewRegistry builds one Process per valid spec, in input order. Invalid specs are
// skipped and returned so the caller can report them.
func NewRegistry(specs []model.ProcessSpec, logger *slog.Logger) (*Registry, []model.ProcessSpec) {
	r := &Registry{procs: make([]model.Process, 0, len(specs))}
	var rejected []model.ProcessSpec
	seen := make(map[int]bool, len(specs))

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			logger.Warn("skipping process record", "pid", spec.PID, "error", err)
			rejected = append(rejected, spec)
			continue
		}
		if seen[spec.PID] {
			logger.Warn("duplicate pid", "pid", spec.PID)
		}
		seen[spec.PID] = true
		r.procs = append(r.procs, model.NewProcess(spec))
	}
	return r, rejected
}

// Len returns the number of registered processes.
func (r *Registry) Len() int {
	return len(r.procs)
}

// At gives mutable access to the process behind h.
func (r *Registry) At(h Handle) *model.Process {
	return &r.procs[h]
}

// All returns the processes in input order.
func (r *Registry) All() []model.Process {
	return r.procs
}

// Handles returns every handle in input order.
func (r *Registry) Handles() []Handle {
	hs := make([]Handle, len(r.procs))
	for i := range hs {
		hs[i] = Handle(i)
	}
	return hs
}

// TotalBurst sums the burst time of every process, saturating at math.MaxInt.
func (r *Registry) TotalBurst() int {
	total := 0
	for _, p := range r.procs {
		if p.Burst > math.MaxInt-total {
			return math.MaxInt
		}
		total += p.Burst
	}
	return total
}

// MaxArrival returns the latest arrival time.
func (r *Registry) MaxArrival() int {
	latest := 0
	for _, p := range r.procs {
		if p.Arrival > latest {
			latest = p.Arrival
		}
	}
	return latest
}
