package scheduler

import "github.com/me/schedsim/pkg/model"

// cpu is one execution unit. occupant is noProcess when idle.
type cpu struct {
	id        int
	occupant  Handle
	busyTicks int
	idleTicks int
}

func (c *cpu) idle() bool {
	return c.occupant == noProcess
}

// cpuPool is the fixed set of CPUs created at the start of a run.
type cpuPool []*cpu

func newCPUPool(n int) cpuPool {
	pool := make(cpuPool, n)
	for i := range pool {
		pool[i] = &cpu{id: i, occupant: noProcess}
	}
	return pool
}

// holding returns the CPU running h, or nil.
func (p cpuPool) holding(h Handle) *cpu {
	for _, c := range p {
		if c.occupant == h {
			return c
		}
	}
	return nil
}

func (p cpuPool) stats() []model.CPUStats {
	out := make([]model.CPUStats, len(p))
	for i, c := range p {
		out[i] = model.CPUStats{ID: c.id, BusyTicks: c.busyTicks, IdleTicks: c.idleTicks}
	}
	return out
}
