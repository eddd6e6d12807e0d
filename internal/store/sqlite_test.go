package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/me/schedsim/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string, alg model.Algorithm, created time.Time) *model.Run {
	return &model.Run{
		ID:            id,
		Name:          "convoy",
		Algorithm:     alg,
		CPUs:          2,
		Quantum:       3,
		PriorityOrder: model.PriorityLowerFirst,
		MaxTicks:      100,
		Status:        model.RunStatusCompleted,
		TotalTicks:    8,
		Summary:       model.Summary{Completed: 2, Total: 2, AvgTurnaround: 6.5, AvgWaiting: 2.5, Utilization: 100, Throughput: 0.25},
		Workload: []model.ProcessSpec{
			{PID: 1, Arrival: 0, Burst: 5, Priority: 1},
			{PID: 2, Arrival: 0, Burst: 3},
		},
		Result: &model.SimulationResult{
			Algorithm:  alg,
			CPUs:       2,
			Timeline:   model.Timeline{{1, 2}, {1, model.IdleSlot}},
			TotalTicks: 8,
			Completed:  2,
		},
		CreatedAt: created,
	}
}

func TestCreateAndGetRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	run := sampleRun("sim_1", model.AlgorithmRR, now)
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := st.GetRun(ctx, "sim_1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil")
	}
	if got.Algorithm != model.AlgorithmRR || got.CPUs != 2 || got.Quantum != 3 || got.MaxTicks != 100 {
		t.Errorf("run = %+v", got)
	}
	if got.Summary != run.Summary {
		t.Errorf("summary = %+v, want %+v", got.Summary, run.Summary)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
	if len(got.Workload) != 2 || got.Workload[0].Priority != 1 || got.Workload[1].Burst != 3 {
		t.Errorf("workload = %+v", got.Workload)
	}
	if got.Result == nil || len(got.Result.Timeline) != 2 || got.Result.Timeline[1][1] != model.IdleSlot {
		t.Errorf("result = %+v", got.Result)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	st := testStore(t)
	got, err := st.GetRun(context.Background(), "sim_missing")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestCreateRun_DuplicateID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	run := sampleRun("sim_dup", model.AlgorithmFCFS, time.Now().UTC())
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.CreateRun(ctx, run); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestCreateRun_NoResult(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	run := sampleRun("sim_bare", model.AlgorithmFCFS, time.Now().UTC())
	run.Result = nil
	run.Workload = nil
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	got, _ := st.GetRun(ctx, "sim_bare")
	if got.Result != nil || len(got.Workload) != 0 {
		t.Errorf("run = %+v", got)
	}
}

func TestListRuns(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	algs := []model.Algorithm{model.AlgorithmFCFS, model.AlgorithmRR, model.AlgorithmRR, model.AlgorithmSJF, model.AlgorithmRR}
	for i, alg := range algs {
		run := sampleRun(fmt.Sprintf("sim_%d", i), alg, base.Add(time.Duration(i)*time.Minute))
		if err := st.CreateRun(ctx, run); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	runs, total, err := st.ListRuns(ctx, model.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 5 || len(runs) != 2 {
		t.Fatalf("total=%d len=%d, want 5/2", total, len(runs))
	}
	if runs[0].ID != "sim_4" || runs[1].ID != "sim_3" {
		t.Errorf("order = %s, %s; want newest first", runs[0].ID, runs[1].ID)
	}
	if runs[0].Result != nil || runs[0].Workload != nil {
		t.Error("list should not load result or workload")
	}
	if runs[0].Summary.AvgWaiting != 2.5 {
		t.Errorf("summary not loaded: %+v", runs[0].Summary)
	}

	runs, total, err = st.ListRuns(ctx, model.ListOptions{Limit: 10, Offset: 1, Algorithm: "RR"})
	if err != nil {
		t.Fatalf("ListRuns filtered: %v", err)
	}
	if total != 3 || len(runs) != 2 {
		t.Errorf("filtered total=%d len=%d, want 3/2", total, len(runs))
	}
	for _, r := range runs {
		if r.Algorithm != model.AlgorithmRR {
			t.Errorf("filter leaked %s", r.Algorithm)
		}
	}
}

func TestDeleteRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.CreateRun(ctx, sampleRun("sim_del", model.AlgorithmSRTF, time.Now().UTC())); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.DeleteRun(ctx, "sim_del"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if got, _ := st.GetRun(ctx, "sim_del"); got != nil {
		t.Error("run still present after delete")
	}

	var n int
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_processes WHERE run_id = ?`, "sim_del").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("%d process rows survived the cascade", n)
	}

	if err := st.DeleteRun(ctx, "sim_del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	for i := 0; i < 2; i++ {
		st, err := NewSQLiteStore(path, logger)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := st.Migrate(context.Background()); err != nil {
			t.Fatalf("migrate %d: %v", i, err)
		}
		st.Close()
	}
}
