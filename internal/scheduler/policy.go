package scheduler

import (
	"fmt"

	"github.com/me/schedsim/pkg/model"
)

// Policy decides ready-queue ordering and when a running process must yield.
// One Policy value is chosen per run and passed to the Engine explicitly.
type Policy interface {
	Algorithm() model.Algorithm

	// Enqueue places h, which has just become Ready, into q.
	Enqueue(q *ReadyQueue, reg *Registry, h Handle) error

	// Preempts reports whether the head of q should displace the running process.
	Preempts(reg *Registry, running Handle, q *ReadyQueue) bool

	// QuantumExpired reports whether a running process has used up its time slice.
	QuantumExpired(p *model.Process) bool
}

// NewPolicy returns the policy for cfg.Algorithm. cfg must already be normalized.
func NewPolicy(cfg Config) (Policy, error) {
	switch cfg.Algorithm {
	case model.AlgorithmFCFS:
		return fcfs{}, nil
	case model.AlgorithmRR:
		return roundRobin{quantum: cfg.Quantum}, nil
	case model.AlgorithmSJF:
		return newSJF(cfg.PriorityOrder), nil
	case model.AlgorithmSRTF:
		return newSRTF(cfg.PriorityOrder), nil
	}
	return nil, fmt.Errorf("new policy: %w", &model.ConfigError{Field: "algorithm", Value: string(cfg.Algorithm), Message: "unsupported"})
}

// nonPreemptive supplies the defaults shared by every policy that never forces a yield.
type nonPreemptive struct{}

func (nonPreemptive) Preempts(*Registry, Handle, *ReadyQueue) bool { return false }
func (nonPreemptive) QuantumExpired(*model.Process) bool           { return false }

type fcfs struct{ nonPreemptive }

func (fcfs) Algorithm() model.Algorithm { return model.AlgorithmFCFS }

func (fcfs) Enqueue(q *ReadyQueue, _ *Registry, h Handle) error {
	return q.Push(h)
}

type roundRobin struct {
	nonPreemptive
	quantum int
}

func (roundRobin) Algorithm() model.Algorithm { return model.AlgorithmRR }

func (roundRobin) Enqueue(q *ReadyQueue, _ *Registry, h Handle) error {
	return q.Push(h)
}

// QuantumExpired is true once the slice is used up; a process that has just
// finished is retired by execution, never requeued.
func (rr roundRobin) QuantumExpired(p *model.Process) bool {
	return p.QuantumUsed >= rr.quantum && p.Remaining > 0
}

// shortestFirst ranks by remaining time, then by the more important priority.
type shortestFirst struct {
	order model.PriorityOrder
}

func (s shortestFirst) better(reg *Registry) func(a, b Handle) bool {
	return func(a, b Handle) bool {
		pa, pb := reg.At(a), reg.At(b)
		if pa.Remaining != pb.Remaining {
			return pa.Remaining < pb.Remaining
		}
		return s.order.MoreImportant(pa.Priority, pb.Priority)
	}
}

func (s shortestFirst) Enqueue(q *ReadyQueue, reg *Registry, h Handle) error {
	return q.InsertOrdered(h, s.better(reg))
}

type sjf struct {
	shortestFirst
	nonPreemptive
}

func (sjf) Algorithm() model.Algorithm { return model.AlgorithmSJF }

func newSJF(order model.PriorityOrder) sjf {
	return sjf{shortestFirst: shortestFirst{order: order}}
}

type srtf struct {
	shortestFirst
}

func (srtf) Algorithm() model.Algorithm { return model.AlgorithmSRTF }

// Preempts compares the queue head against the running process under the same key
// the queue is sorted by. Equal remaining time with equal priority never preempts.
func (s srtf) Preempts(reg *Registry, running Handle, q *ReadyQueue) bool {
	head, ok := q.Peek()
	if !ok {
		return false
	}
	return s.better(reg)(head, running)
}

func (srtf) QuantumExpired(*model.Process) bool { return false }

func newSRTF(order model.PriorityOrder) srtf {
	return srtf{shortestFirst: shortestFirst{order: order}}
}
