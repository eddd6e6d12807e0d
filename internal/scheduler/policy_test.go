package scheduler

import (
	"testing"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/pkg/model"
)

func newTestRegistry(t *testing.T, rows ...[4]int) *Registry {
	t.Helper()
	reg, rejected := NewRegistry(specs(rows...), logging.Discard())
	if len(rejected) > 0 {
		t.Fatalf("rejected specs: %+v", rejected)
	}
	return reg
}

func TestNewPolicy(t *testing.T) {
	for _, alg := range model.Algorithms {
		cfg, err := Config{Algorithm: alg}.Normalize()
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		p, err := NewPolicy(cfg)
		if err != nil {
			t.Fatalf("NewPolicy(%s): %v", alg, err)
		}
		if p.Algorithm() != alg {
			t.Errorf("Algorithm() = %s, want %s", p.Algorithm(), alg)
		}
	}
	if _, err := NewPolicy(Config{Algorithm: "MLFQ"}); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}

func TestRoundRobin_QuantumExpired(t *testing.T) {
	rr := roundRobin{quantum: 2}
	tests := []struct {
		used, remaining int
		want            bool
	}{
		{0, 3, false},
		{1, 3, false},
		{2, 3, true},
		{2, 0, false},
		{3, 1, true},
	}
	for _, tt := range tests {
		p := &model.Process{QuantumUsed: tt.used, Remaining: tt.remaining}
		if got := rr.QuantumExpired(p); got != tt.want {
			t.Errorf("QuantumExpired(used=%d, remaining=%d) = %v, want %v", tt.used, tt.remaining, got, tt.want)
		}
	}
}

func TestNonPreemptivePolicies(t *testing.T) {
	reg := newTestRegistry(t, [4]int{1, 0, 9, 0}, [4]int{2, 0, 1, 0})
	q := NewReadyQueue()
	_ = q.Push(1)
	for _, p := range []Policy{fcfs{}, roundRobin{quantum: 1}, newSJF(model.PriorityLowerFirst)} {
		if p.Preempts(reg, 0, q) {
			t.Errorf("%s preempted", p.Algorithm())
		}
	}
	if newSJF(model.PriorityLowerFirst).QuantumExpired(&model.Process{QuantumUsed: 100, Remaining: 1}) {
		t.Error("SJF reported an expired quantum")
	}
}

func TestSRTF_Preempts(t *testing.T) {
	tests := []struct {
		name    string
		order   model.PriorityOrder
		running [4]int
		queued  [4]int
		want    bool
	}{
		{"shorter remaining", model.PriorityLowerFirst, [4]int{1, 0, 5, 0}, [4]int{2, 0, 4, 0}, true},
		{"longer remaining", model.PriorityLowerFirst, [4]int{1, 0, 4, 0}, [4]int{2, 0, 5, 0}, false},
		{"full tie", model.PriorityLowerFirst, [4]int{1, 0, 4, 2}, [4]int{2, 0, 4, 2}, false},
		{"tie lower wins", model.PriorityLowerFirst, [4]int{1, 0, 4, 2}, [4]int{2, 0, 4, 1}, true},
		{"tie higher wins", model.PriorityHigherFirst, [4]int{1, 0, 4, 2}, [4]int{2, 0, 4, 1}, false},
		{"tie higher wins reversed", model.PriorityHigherFirst, [4]int{1, 0, 4, 1}, [4]int{2, 0, 4, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t, tt.running, tt.queued)
			q := NewReadyQueue()
			_ = q.Push(1)
			if got := newSRTF(tt.order).Preempts(reg, 0, q); got != tt.want {
				t.Errorf("Preempts = %v, want %v", got, tt.want)
			}
		})
	}

	reg := newTestRegistry(t, [4]int{1, 0, 5, 0})
	if newSRTF(model.PriorityLowerFirst).Preempts(reg, 0, NewReadyQueue()) {
		t.Error("preempted with an empty queue")
	}
}

func TestShortestFirst_EnqueueOrder(t *testing.T) {
	reg := newTestRegistry(t,
		[4]int{1, 0, 4, 3},
		[4]int{2, 0, 2, 0},
		[4]int{3, 0, 4, 1},
		[4]int{4, 0, 4, 1},
	)
	q := NewReadyQueue()
	pol := newSJF(model.PriorityLowerFirst)
	for _, h := range reg.Handles() {
		if err := pol.Enqueue(q, reg, h); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	// pid2 (shortest), then pid3 and pid4 (priority 1, FIFO), then pid1.
	want := []int{2, 3, 4, 1}
	for i, h := range q.Snapshot() {
		if pid := reg.At(h).PID; pid != want[i] {
			t.Errorf("position %d: pid %d, want %d", i, pid, want[i])
		}
	}
}

func TestConfig_Normalize(t *testing.T) {
	cfg, err := Config{Algorithm: "rr", CPUs: -1, Quantum: 0, MaxTicks: -5}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Algorithm != model.AlgorithmRR || cfg.CPUs != DefaultCPUs || cfg.Quantum != DefaultQuantum || cfg.MaxTicks != 0 {
		t.Errorf("normalized = %+v", cfg)
	}
	if cfg.PriorityOrder != model.PriorityLowerFirst {
		t.Errorf("PriorityOrder = %q, want lower", cfg.PriorityOrder)
	}
	if _, err := (Config{PriorityOrder: "sideways"}).Normalize(); err == nil {
		t.Error("expected error for bad priority order")
	}
}

func TestRegistry(t *testing.T) {
	reg, rejected := NewRegistry(specs([4]int{1, 3, 2, 0}, [4]int{2, 0, 0, 0}, [4]int{1, 5, 4, 0}), logging.Discard())
	if len(rejected) != 1 || rejected[0].PID != 2 {
		t.Errorf("rejected = %+v", rejected)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}
	if reg.TotalBurst() != 6 || reg.MaxArrival() != 5 {
		t.Errorf("TotalBurst=%d MaxArrival=%d", reg.TotalBurst(), reg.MaxArrival())
	}
	p := reg.At(1)
	if p.State != model.ProcessStateNotArrived || p.Remaining != 4 || p.StartTime != model.Unset {
		t.Errorf("new process = %+v", p)
	}
}
