package scheduler

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/pkg/model"
)

// Engine advances one simulation tick by tick. It owns the registry, ready queue
// and CPU pool for the whole run.
type Engine struct {
	config   Config
	policy   Policy
	reg      *Registry
	queue    *ReadyQueue
	cpus     cpuPool
	timeline *timelineRecorder
	arrivals map[int][]Handle
	now      int
	limit    int
	logger   *slog.Logger

	completed int
}

// NewEngine normalizes cfg, loads specs into a fresh registry and prepares the CPU pool.
func NewEngine(specs []model.ProcessSpec, cfg Config, logger *slog.Logger) (*Engine, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, fmt.Errorf("normalize config: %w", err)
	}
	policy, err := NewPolicy(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	reg, _ := NewRegistry(specs, logger)

	e := &Engine{
		config:   cfg,
		policy:   policy,
		reg:      reg,
		queue:    NewReadyQueue(),
		cpus:     newCPUPool(cfg.CPUs),
		arrivals: make(map[int][]Handle),
		logger:   logger,
	}
	for _, h := range reg.Handles() {
		at := reg.At(h).Arrival
		e.arrivals[at] = append(e.arrivals[at], h)
	}
	e.limit = cfg.MaxTicks
	if e.limit == 0 {
		e.limit = tickLimit(reg.MaxArrival(), reg.TotalBurst())
	}
	e.timeline = newTimelineRecorder(min(e.limit, initialTimelineRows))
	return e, nil
}

// tickLimit derives the divergence bound from the workload, saturating at
// math.MaxInt.
func tickLimit(maxArrival, totalBurst int) int {
	if totalBurst > (math.MaxInt-1-maxArrival)/DivergenceFactor {
		return math.MaxInt
	}
	return maxArrival + totalBurst*DivergenceFactor + 1
}

// Now returns the current tick.
func (e *Engine) Now() int {
	return e.now
}

// Done reports whether every process has completed.
func (e *Engine) Done() bool {
	return e.completed == e.reg.Len()
}

// Run ticks until every process completes or the tick limit is reached.
func (e *Engine) Run() (*model.SimulationResult, error) {
	for !e.Done() {
		if e.now >= e.limit {
			return e.Result(), &model.DivergenceError{Limit: e.limit, Completed: e.completed, Total: e.reg.Len()}
		}
		if err := e.Tick(); err != nil {
			return e.Result(), fmt.Errorf("tick %d: %w", e.now, err)
		}
	}
	return e.Result(), nil
}

// Tick runs a single simulation step. The phases run strictly in order because
// execution depends on the dispatch decisions made earlier in the same tick.
func (e *Engine) Tick() error {
	// Phase 1: Admit processes arriving now.
	if err := e.admitArrivals(); err != nil {
		return fmt.Errorf("phase 1 (arrivals): %w", err)
	}

	// Phase 2: Preempt running processes beaten by the queue head.
	if err := e.preempt(); err != nil {
		return fmt.Errorf("phase 2 (preempt): %w", err)
	}

	// Phase 3: Requeue processes whose quantum expired.
	if err := e.expireQuanta(); err != nil {
		return fmt.Errorf("phase 3 (quantum): %w", err)
	}

	// Phase 4: Fill idle CPUs from the ready queue.
	if err := e.dispatch(); err != nil {
		return fmt.Errorf("phase 4 (dispatch): %w", err)
	}

	// Phase 5: Snapshot CPU occupancy.
	e.timeline.record(e.now, e.cpus, e.reg)

	// Phase 6: Ready processes wait one more tick.
	e.accrueWaiting()

	// Phase 7: Run one unit of work on every occupied CPU.
	if err := e.execute(); err != nil {
		return fmt.Errorf("phase 7 (execute): %w", err)
	}

	e.now++
	return nil
}

// admitArrivals moves every process arriving at the current tick into the ready
// queue, in input order.
func (e *Engine) admitArrivals() error {
	for _, h := range e.arrivals[e.now] {
		if err := e.transition(h, model.ProcessStateReady); err != nil {
			return err
		}
		if err := e.policy.Enqueue(e.queue, e.reg, h); err != nil {
			return err
		}
		e.logger.Debug("process arrived", "tick", e.now, "pid", e.reg.At(h).PID)
	}
	delete(e.arrivals, e.now)
	return nil
}

// preempt evaluates every occupied CPU independently against the queue head.
func (e *Engine) preempt() error {
	for _, c := range e.cpus {
		if c.idle() {
			continue
		}
		if e.policy.Preempts(e.reg, c.occupant, e.queue) {
			if err := e.yield(c, "preempted"); err != nil {
				return err
			}
		}
	}
	return nil
}

// expireQuanta requeues processes that used up their time slice.
func (e *Engine) expireQuanta() error {
	for _, c := range e.cpus {
		if c.idle() {
			continue
		}
		if e.policy.QuantumExpired(e.reg.At(c.occupant)) {
			if err := e.yield(c, "quantum expired"); err != nil {
				return err
			}
		}
	}
	return nil
}

// yield returns the occupant of c to the ready queue and frees the CPU.
func (e *Engine) yield(c *cpu, reason string) error {
	h := c.occupant
	p := e.reg.At(h)
	if err := e.transition(h, model.ProcessStateReady); err != nil {
		return err
	}
	p.QuantumUsed = 0
	c.occupant = noProcess
	e.logger.Debug(reason, "tick", e.now, "cpu", c.id, "pid", p.PID, "remaining", p.Remaining)
	return e.policy.Enqueue(e.queue, e.reg, h)
}

// dispatch fills idle CPUs in ascending id order. Stale entries are discarded and
// the same CPU retries, so no CPU stays idle while eligible work is queued.
func (e *Engine) dispatch() error {
	for _, c := range e.cpus {
		for c.idle() {
			h, ok := e.queue.PopFront()
			if !ok {
				return nil
			}
			p := e.reg.At(h)
			if p.State != model.ProcessStateReady || p.Arrival > e.now {
				e.logger.Warn("discarding stale queue entry", "tick", e.now, "pid", p.PID, "state", p.State)
				continue
			}
			if err := e.transition(h, model.ProcessStateRunning); err != nil {
				return err
			}
			c.occupant = h
			if !p.Started() {
				p.StartTime = e.now
				p.ResponseTime = e.now - p.Arrival
			}
			p.QuantumUsed = 0
			e.logger.Debug("dispatched", "tick", e.now, "cpu", c.id, "pid", p.PID)
		}
	}
	return nil
}

func (e *Engine) accrueWaiting() {
	procs := e.reg.All()
	for i := range procs {
		if procs[i].State == model.ProcessStateReady {
			procs[i].WaitingTime++
		}
	}
}

// execute performs one unit of work per occupied CPU and retires finished processes.
func (e *Engine) execute() error {
	for _, c := range e.cpus {
		if c.idle() {
			c.idleTicks++
			continue
		}
		p := e.reg.At(c.occupant)
		p.Remaining--
		p.QuantumUsed++
		c.busyTicks++
		if p.Remaining > 0 {
			continue
		}
		if err := e.transition(c.occupant, model.ProcessStateCompleted); err != nil {
			return err
		}
		p.FinishTime = e.now + 1
		c.occupant = noProcess
		e.completed++
		e.logger.Debug("process completed", "tick", e.now, "cpu", c.id, "pid", p.PID, "finish", p.FinishTime)
	}
	return nil
}

func (e *Engine) transition(h Handle, next model.ProcessState) error {
	p := e.reg.At(h)
	if !p.State.CanTransitionTo(next) {
		return &model.InvalidTransitionError{
			Entity: "process",
			ID:     strconv.Itoa(p.PID),
			From:   p.State.String(),
			To:     next.String(),
		}
	}
	p.State = next
	return nil
}

// Result builds the run's result from the current state. It may be called on a
// partial run.
func (e *Engine) Result() *model.SimulationResult {
	procs := e.reg.All()
	stats := make([]model.ProcessStats, len(procs))
	for i, p := range procs {
		stats[i] = model.NewProcessStats(p)
	}
	r := &model.SimulationResult{
		Algorithm:     e.config.Algorithm,
		CPUs:          e.config.CPUs,
		PriorityOrder: e.config.PriorityOrder,
		Processes:     stats,
		CPUStats:      e.cpus.stats(),
		Timeline:      e.timeline.timeline(),
		TotalTicks:    e.now,
		Completed:     e.completed,
	}
	if e.config.Algorithm.UsesQuantum() {
		r.Quantum = e.config.Quantum
	}
	return r
}
