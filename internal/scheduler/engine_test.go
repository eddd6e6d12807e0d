package scheduler

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/me/schedsim/pkg/model"
)

func specs(rows ...[4]int) []model.ProcessSpec {
	out := make([]model.ProcessSpec, len(rows))
	for i, r := range rows {
		out[i] = model.ProcessSpec{PID: r[0], Arrival: r[1], Burst: r[2], Priority: r[3]}
	}
	return out
}

func runSim(t *testing.T, cfg Config, in []model.ProcessSpec) *model.SimulationResult {
	t.Helper()
	res, err := Run(context.Background(), in, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func statsFor(t *testing.T, res *model.SimulationResult, pid int) model.ProcessStats {
	t.Helper()
	for _, p := range res.Processes {
		if p.PID == pid {
			return p
		}
	}
	t.Fatalf("pid %d not in result", pid)
	return model.ProcessStats{}
}

// column flattens the timeline of one CPU.
func column(tl model.Timeline, cpu int) []int {
	out := make([]int, len(tl))
	for i, row := range tl {
		out[i] = row[cpu]
	}
	return out
}

type want struct {
	pid, start, finish, waiting, response int
}

func checkStats(t *testing.T, res *model.SimulationResult, wants []want) {
	t.Helper()
	for _, w := range wants {
		got := statsFor(t, res, w.pid)
		if !got.Completed {
			t.Errorf("pid %d not completed", w.pid)
			continue
		}
		if got.Start != w.start || got.Finish != w.finish || got.Waiting != w.waiting || got.Response != w.response {
			t.Errorf("pid %d: start/finish/waiting/response = %d/%d/%d/%d, want %d/%d/%d/%d",
				w.pid, got.Start, got.Finish, got.Waiting, got.Response,
				w.start, w.finish, w.waiting, w.response)
		}
	}
}

func TestRun_FCFS(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmFCFS, CPUs: 1}
	res := runSim(t, cfg, specs([4]int{1, 0, 5, 0}, [4]int{2, 0, 3, 0}))

	checkStats(t, res, []want{
		{pid: 1, start: 0, finish: 5, waiting: 0, response: 0},
		{pid: 2, start: 5, finish: 8, waiting: 5, response: 5},
	})
	if got, want := column(res.Timeline, 0), []int{1, 1, 1, 1, 1, 2, 2, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
	if res.TotalTicks != 8 {
		t.Errorf("TotalTicks = %d, want 8", res.TotalTicks)
	}
}

func TestRun_FCFSIdleGap(t *testing.T) {
	res := runSim(t, DefaultConfig(), specs([4]int{1, 2, 2, 0}))

	if got, want := column(res.Timeline, 0), []int{model.IdleSlot, model.IdleSlot, 1, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
	checkStats(t, res, []want{{pid: 1, start: 2, finish: 4, waiting: 0, response: 0}})
	cs := res.CPUStats[0]
	if cs.BusyTicks != 2 || cs.IdleTicks != 2 {
		t.Errorf("cpu busy/idle = %d/%d, want 2/2", cs.BusyTicks, cs.IdleTicks)
	}
	if u := cs.Utilization(); u != 50 {
		t.Errorf("utilization = %v, want 50", u)
	}
}

func TestRun_RoundRobin(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmRR, CPUs: 1, Quantum: 2}
	res := runSim(t, cfg, specs([4]int{1, 0, 4, 0}, [4]int{2, 0, 4, 0}))

	if got, want := column(res.Timeline, 0), []int{1, 1, 2, 2, 1, 1, 2, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
	checkStats(t, res, []want{
		{pid: 1, start: 0, finish: 6, waiting: 2, response: 0},
		{pid: 2, start: 2, finish: 8, waiting: 4, response: 2},
	})
	if res.Quantum != 2 {
		t.Errorf("Quantum = %d, want 2", res.Quantum)
	}
}

func TestRun_RoundRobinArrivalBeforeRequeue(t *testing.T) {
	// pid 2 arrives on the tick pid 1's quantum expires and is queued first.
	cfg := Config{Algorithm: model.AlgorithmRR, CPUs: 1, Quantum: 2}
	res := runSim(t, cfg, specs([4]int{1, 0, 4, 0}, [4]int{2, 2, 2, 0}))

	if got, want := column(res.Timeline, 0), []int{1, 1, 2, 2, 1, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
	checkStats(t, res, []want{
		{pid: 1, start: 0, finish: 6, waiting: 2, response: 0},
		{pid: 2, start: 2, finish: 4, waiting: 0, response: 0},
	})
}

func TestRun_RoundRobinFinishOnQuantumBoundary(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmRR, CPUs: 1, Quantum: 2}
	res := runSim(t, cfg, specs([4]int{1, 0, 2, 0}, [4]int{2, 0, 1, 0}))

	if got, want := column(res.Timeline, 0), []int{1, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
}

func TestRun_SRTF(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmSRTF, CPUs: 1}
	res := runSim(t, cfg, specs([4]int{1, 0, 8, 0}, [4]int{2, 1, 4, 0}))

	checkStats(t, res, []want{
		{pid: 1, start: 0, finish: 12, waiting: 4, response: 0},
		{pid: 2, start: 1, finish: 5, waiting: 0, response: 0},
	})
	tl := column(res.Timeline, 0)
	if tl[0] != 1 || tl[1] != 2 || tl[4] != 2 || tl[5] != 1 {
		t.Errorf("timeline = %v", tl)
	}
}

func TestRun_SRTFTies(t *testing.T) {
	tests := []struct {
		name  string
		order model.PriorityOrder
		in    []model.ProcessSpec
		want  []int
	}{
		{
			name:  "equal remaining equal priority keeps running",
			order: model.PriorityLowerFirst,
			in:    specs([4]int{1, 0, 4, 0}, [4]int{2, 1, 3, 0}),
			want:  []int{1, 1, 1, 1, 2, 2, 2},
		},
		{
			name:  "higher value wins tie when higher first",
			order: model.PriorityHigherFirst,
			in:    specs([4]int{1, 0, 4, 1}, [4]int{2, 1, 3, 5}),
			want:  []int{1, 2, 2, 2, 1, 1, 1},
		},
		{
			name:  "higher value loses tie when lower first",
			order: model.PriorityLowerFirst,
			in:    specs([4]int{1, 0, 4, 1}, [4]int{2, 1, 3, 5}),
			want:  []int{1, 1, 1, 1, 2, 2, 2},
		},
		{
			name:  "lower value wins tie when lower first",
			order: model.PriorityLowerFirst,
			in:    specs([4]int{1, 0, 4, 5}, [4]int{2, 1, 3, 1}),
			want:  []int{1, 2, 2, 2, 1, 1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Algorithm: model.AlgorithmSRTF, CPUs: 1, PriorityOrder: tt.order}
			res := runSim(t, cfg, tt.in)
			if got := column(res.Timeline, 0); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("timeline = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_SJF(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmSJF, CPUs: 1}
	res := runSim(t, cfg, specs([4]int{1, 0, 5, 0}, [4]int{2, 2, 3, 0}, [4]int{3, 4, 2, 0}))

	checkStats(t, res, []want{
		{pid: 1, start: 0, finish: 5, waiting: 0, response: 0},
		{pid: 2, start: 7, finish: 10, waiting: 5, response: 5},
		{pid: 3, start: 5, finish: 7, waiting: 1, response: 1},
	})
}

func TestRun_SJFNeverPreempts(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmSJF, CPUs: 1}
	res := runSim(t, cfg, specs([4]int{1, 0, 6, 0}, [4]int{2, 1, 1, 0}))

	if got, want := column(res.Timeline, 0), []int{1, 1, 1, 1, 1, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
}

func TestRun_SJFStableOrder(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmSJF, CPUs: 1}
	res := runSim(t, cfg, specs([4]int{1, 0, 1, 0}, [4]int{2, 1, 2, 0}, [4]int{3, 1, 2, 0}, [4]int{4, 1, 2, 0}))

	if got, want := column(res.Timeline, 0), []int{1, 2, 2, 3, 3, 4, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
}

func TestRun_MultiCPU(t *testing.T) {
	t.Run("one job per cpu", func(t *testing.T) {
		for _, alg := range model.Algorithms {
			cfg := Config{Algorithm: alg, CPUs: 3, Quantum: 1}
			res := runSim(t, cfg, specs([4]int{1, 0, 3, 0}, [4]int{2, 0, 3, 0}, [4]int{3, 0, 3, 0}))
			for _, p := range res.Processes {
				if p.Finish != 3 || p.Waiting != 0 {
					t.Errorf("%s pid %d: finish/waiting = %d/%d, want 3/0", alg, p.PID, p.Finish, p.Waiting)
				}
			}
		}
	})

	t.Run("third job waits for lowest free cpu", func(t *testing.T) {
		cfg := Config{Algorithm: model.AlgorithmFCFS, CPUs: 2}
		res := runSim(t, cfg, specs([4]int{1, 0, 2, 0}, [4]int{2, 0, 2, 0}, [4]int{3, 0, 2, 0}))

		if got, want := column(res.Timeline, 0), []int{1, 1, 3, 3}; !reflect.DeepEqual(got, want) {
			t.Errorf("cpu0 = %v, want %v", got, want)
		}
		if got, want := column(res.Timeline, 1), []int{2, 2, model.IdleSlot, model.IdleSlot}; !reflect.DeepEqual(got, want) {
			t.Errorf("cpu1 = %v, want %v", got, want)
		}
		if res.CPUStats[1].BusyTicks != 2 || res.CPUStats[1].IdleTicks != 2 {
			t.Errorf("cpu1 stats = %+v", res.CPUStats[1])
		}
		checkStats(t, res, []want{{pid: 3, start: 2, finish: 4, waiting: 2, response: 2}})
	})
}

func TestRun_Empty(t *testing.T) {
	res, err := Run(context.Background(), nil, DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Empty() {
		t.Errorf("expected empty result, got %+v", res)
	}
	if res.TotalTicks != 0 {
		t.Errorf("TotalTicks = %d, want 0", res.TotalTicks)
	}
}

func TestRun_SkipsInvalidRecords(t *testing.T) {
	in := specs([4]int{1, 0, 2, 0}, [4]int{2, 0, 0, 0}, [4]int{-3, 0, 2, 0}, [4]int{4, -1, 2, 0})
	res := runSim(t, DefaultConfig(), in)
	if len(res.Processes) != 1 || res.Processes[0].PID != 1 {
		t.Errorf("processes = %+v, want only pid 1", res.Processes)
	}
}

func TestRun_Divergence(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmFCFS, CPUs: 1, MaxTicks: 3}
	res, err := Run(context.Background(), specs([4]int{1, 0, 5, 0}, [4]int{2, 0, 1, 0}), cfg)

	var de *model.DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("expected DivergenceError, got %v", err)
	}
	if !errors.Is(err, model.ErrDiverged) {
		t.Error("errors.Is(err, ErrDiverged) = false")
	}
	if de.Limit != 3 || de.Completed != 0 || de.Total != 2 {
		t.Errorf("DivergenceError = %+v", de)
	}
	if res == nil || res.TotalTicks != 3 || len(res.Timeline) != 3 {
		t.Fatalf("partial result = %+v", res)
	}
	if p := statsFor(t, res, 1); p.Completed || p.Finish != model.Unset || p.State != model.ProcessStateRunning {
		t.Errorf("pid 1 = %+v", p)
	}
}

func TestRun_FarArrivalStopsAtTickLimit(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmFCFS, CPUs: 1, MaxTicks: 5}
	res, err := Run(context.Background(), specs([4]int{1, math.MaxInt / 2, 1, 0}), cfg)

	var de *model.DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("expected DivergenceError, got %v", err)
	}
	if de.Limit != 5 || de.Completed != 0 || de.Total != 1 {
		t.Errorf("DivergenceError = %+v", de)
	}
	if res == nil || res.TotalTicks != 5 || len(res.Timeline) != 5 {
		t.Fatalf("partial result = %+v", res)
	}
	for tick, row := range res.Timeline {
		if row[0] != model.IdleSlot {
			t.Errorf("tick %d = %d, want idle", tick, row[0])
		}
	}
}

func TestRun_UnknownAlgorithm(t *testing.T) {
	_, err := Run(context.Background(), specs([4]int{1, 0, 1, 0}), Config{Algorithm: "LOTTERY"})
	var ce *model.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ce.Field != "algorithm" {
		t.Errorf("Field = %q", ce.Field)
	}
}

func TestRun_Deterministic(t *testing.T) {
	in := randomSpecs(rand.New(rand.NewSource(7)), 12)
	for _, alg := range model.Algorithms {
		cfg := Config{Algorithm: alg, CPUs: 2, Quantum: 3}
		a := runSim(t, cfg, in)
		b := runSim(t, cfg, in)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: repeated runs differ", alg)
		}
	}
}

func randomSpecs(r *rand.Rand, n int) []model.ProcessSpec {
	out := make([]model.ProcessSpec, n)
	for i := range out {
		out[i] = model.ProcessSpec{
			PID:      i + 1,
			Arrival:  r.Intn(15),
			Burst:    1 + r.Intn(8),
			Priority: r.Intn(4),
		}
	}
	return out
}

// TestRun_Invariants checks conservation properties over random workloads.
func TestRun_Invariants(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 40; trial++ {
		in := randomSpecs(r, 1+r.Intn(10))
		for _, alg := range model.Algorithms {
			for cpus := 1; cpus <= 3; cpus++ {
				for _, order := range []model.PriorityOrder{model.PriorityLowerFirst, model.PriorityHigherFirst} {
					cfg := Config{Algorithm: alg, CPUs: cpus, Quantum: 1 + r.Intn(3), PriorityOrder: order}
					res := runSim(t, cfg, in)
					checkInvariants(t, cfg, in, res)
				}
			}
		}
	}
}

func checkInvariants(t *testing.T, cfg Config, in []model.ProcessSpec, res *model.SimulationResult) {
	t.Helper()
	if res.Completed != len(in) {
		t.Fatalf("%+v: completed %d of %d", cfg, res.Completed, len(in))
	}

	totalBurst := 0
	ran := make(map[int]int)
	for _, s := range in {
		totalBurst += s.Burst
	}
	for tick, row := range res.Timeline {
		seen := make(map[int]bool)
		for _, pid := range row {
			if pid == model.IdleSlot {
				continue
			}
			if seen[pid] {
				t.Fatalf("%+v: pid %d on two cpus at tick %d", cfg, pid, tick)
			}
			seen[pid] = true
			ran[pid]++
		}
	}

	busy := 0
	for _, c := range res.CPUStats {
		busy += c.BusyTicks
		if c.BusyTicks+c.IdleTicks != res.TotalTicks {
			t.Errorf("%+v: cpu %d busy+idle = %d, want %d", cfg, c.ID, c.BusyTicks+c.IdleTicks, res.TotalTicks)
		}
	}
	if busy != totalBurst {
		t.Errorf("%+v: busy ticks %d, total burst %d", cfg, busy, totalBurst)
	}

	for _, p := range res.Processes {
		if ran[p.PID] != p.Burst {
			t.Errorf("%+v: pid %d ran %d ticks, burst %d", cfg, p.PID, ran[p.PID], p.Burst)
		}
		if p.Start < p.Arrival || p.Finish < p.Arrival+p.Burst {
			t.Errorf("%+v: pid %d start/finish out of range: %+v", cfg, p.PID, p)
		}
		if p.Response != p.Start-p.Arrival {
			t.Errorf("%+v: pid %d response %d, start-arrival %d", cfg, p.PID, p.Response, p.Start-p.Arrival)
		}
		if p.Waiting != p.WaitingTicks {
			t.Errorf("%+v: pid %d waiting %d, ready ticks %d", cfg, p.PID, p.Waiting, p.WaitingTicks)
		}
	}
}

func TestEngine_TickByTick(t *testing.T) {
	cfg := Config{Algorithm: model.AlgorithmRR, CPUs: 2, Quantum: 1}
	e, err := NewEngine(specs([4]int{1, 0, 2, 0}, [4]int{2, 0, 2, 0}, [4]int{3, 1, 1, 0}), cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if err := e.Tick(); err != nil {
		t.Fatalf("tick 0: %v", err)
	}
	if e.Now() != 1 || e.Done() {
		t.Fatalf("after tick 0: now=%d done=%v", e.Now(), e.Done())
	}
	if c := e.cpus.holding(Handle(0)); c == nil || c.id != 0 {
		t.Errorf("pid 1 should hold cpu 0, got %+v", c)
	}
	if c := e.cpus.holding(Handle(1)); c == nil || c.id != 1 {
		t.Errorf("pid 2 should hold cpu 1, got %+v", c)
	}

	// Both quanta expire; pid 3 arrived first so it takes cpu 0.
	if err := e.Tick(); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if e.completed != 2 {
		t.Errorf("completed = %d, want 2", e.completed)
	}
	if got := e.queue.Snapshot(); !reflect.DeepEqual(got, []Handle{1}) {
		t.Errorf("queue = %v, want [1]", got)
	}

	if err := e.Tick(); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if !e.Done() {
		t.Fatal("expected all processes done")
	}

	res := e.Result()
	want := model.Timeline{{1, 2}, {3, 1}, {2, model.IdleSlot}}
	if !reflect.DeepEqual(res.Timeline, want) {
		t.Errorf("timeline = %v, want %v", res.Timeline, want)
	}
}

func TestEngine_DispatchSkipsStaleEntries(t *testing.T) {
	e, err := NewEngine(specs([4]int{1, 0, 1, 0}, [4]int{2, 0, 1, 0}), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	// A completed process left in the queue must be dropped, not dispatched.
	e.reg.At(0).State = model.ProcessStateCompleted
	e.reg.At(1).State = model.ProcessStateReady
	_ = e.queue.Push(0)
	_ = e.queue.Push(1)
	delete(e.arrivals, 0)

	if err := e.dispatch(); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if e.cpus[0].occupant != 1 {
		t.Errorf("cpu 0 occupant = %d, want handle 1", e.cpus[0].occupant)
	}
	if !e.queue.IsEmpty() {
		t.Errorf("queue not drained: %v", e.queue.Snapshot())
	}
}

func TestEngine_InvalidTransition(t *testing.T) {
	e, err := NewEngine(specs([4]int{1, 0, 1, 0}), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	err = e.transition(0, model.ProcessStateCompleted)
	var te *model.InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if te.From != "NOT_ARRIVED" || te.To != "COMPLETED" || te.ID != "1" {
		t.Errorf("error = %+v", te)
	}
}

func TestEngine_DefaultLimit(t *testing.T) {
	e, err := NewEngine(specs([4]int{1, 4, 3, 0}, [4]int{2, 0, 2, 0}), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if want := 4 + 5*DivergenceFactor + 1; e.limit != want {
		t.Errorf("limit = %d, want %d", e.limit, want)
	}
}

func TestEngine_DefaultLimitSaturates(t *testing.T) {
	half := math.MaxInt / 2
	e, err := NewEngine(specs([4]int{1, 0, half, 0}, [4]int{2, 0, half, 0}, [4]int{3, 0, half, 0}), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if got := e.reg.TotalBurst(); got != math.MaxInt {
		t.Errorf("TotalBurst = %d, want MaxInt", got)
	}
	if e.limit != math.MaxInt {
		t.Errorf("limit = %d, want MaxInt", e.limit)
	}
	if c := cap(e.timeline.rows); c != initialTimelineRows {
		t.Errorf("timeline capacity = %d, want %d", c, initialTimelineRows)
	}
}

func TestTickLimit(t *testing.T) {
	tests := []struct {
		maxArrival, totalBurst, want int
	}{
		{0, 1, DivergenceFactor + 1},
		{4, 5, 4 + 5*DivergenceFactor + 1},
		{0, math.MaxInt / DivergenceFactor, math.MaxInt/DivergenceFactor*DivergenceFactor + 1},
		{0, math.MaxInt/DivergenceFactor + 1, math.MaxInt},
		{math.MaxInt, 1, math.MaxInt},
		{math.MaxInt / 2, math.MaxInt / 2, math.MaxInt},
	}
	for _, tt := range tests {
		if got := tickLimit(tt.maxArrival, tt.totalBurst); got != tt.want {
			t.Errorf("tickLimit(%d, %d) = %d, want %d", tt.maxArrival, tt.totalBurst, got, tt.want)
		}
	}
}
