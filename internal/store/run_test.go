package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/schedsim/internal/scheduler"
	"github.com/me/schedsim/pkg/model"
)

func TestNewRun(t *testing.T) {
	specs := []model.ProcessSpec{
		{PID: 1, Arrival: 0, Burst: 5},
		{PID: 2, Arrival: 1, Burst: 3},
	}
	cfg, err := scheduler.Config{Algorithm: model.AlgorithmFCFS}.Normalize()
	require.NoError(t, err)
	res, err := scheduler.Run(context.Background(), specs, cfg)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := NewRun("sim_1", "pair", cfg, specs, res, nil, now)

	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, 8, run.TotalTicks)
	assert.Equal(t, 0, run.Quantum, "quantum only recorded for RR")
	assert.Equal(t, 2, run.Summary.Completed)
	assert.Empty(t, run.Error)
	assert.Equal(t, now, run.CreatedAt)

	st := testStore(t)
	require.NoError(t, st.CreateRun(context.Background(), run))
	got, err := st.GetRun(context.Background(), "sim_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, specs, got.Workload)
	assert.Equal(t, res.TotalTicks, got.Result.TotalTicks)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.True(t, strings.HasPrefix(a, "sim_"), a)
	assert.NotEqual(t, a, b)
}

func TestNewRun_Diverged(t *testing.T) {
	specs := []model.ProcessSpec{{PID: 1, Arrival: 0, Burst: 10}}
	cfg, err := scheduler.Config{Algorithm: model.AlgorithmRR, MaxTicks: 4}.Normalize()
	require.NoError(t, err)
	res, runErr := scheduler.Run(context.Background(), specs, cfg)
	require.ErrorIs(t, runErr, model.ErrDiverged)

	run := NewRun("sim_2", "", cfg, specs, res, runErr, time.Now())
	assert.Equal(t, model.RunStatusDiverged, run.Status)
	assert.Equal(t, scheduler.DefaultQuantum, run.Quantum)
	assert.Equal(t, 4, run.TotalTicks)
	assert.NotEmpty(t, run.Error)
}
