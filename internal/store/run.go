package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/me/schedsim/internal/compare"
	"github.com/me/schedsim/internal/scheduler"
	"github.com/me/schedsim/pkg/model"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "sim_" + uuid.New().String()
}

// NewRun builds the history record for a finished scheduler run. cfg should be
// normalized so the stored settings are the ones actually simulated. runErr may be
// a divergence, in which case the partial result is kept.
func NewRun(id, name string, cfg scheduler.Config, specs []model.ProcessSpec, res *model.SimulationResult, runErr error, now time.Time) *model.Run {
	run := &model.Run{
		ID:            id,
		Name:          name,
		Algorithm:     cfg.Algorithm,
		CPUs:          cfg.CPUs,
		PriorityOrder: cfg.PriorityOrder,
		MaxTicks:      cfg.MaxTicks,
		Status:        compare.Status(res, runErr),
		Workload:      specs,
		Result:        res,
		CreatedAt:     now.UTC(),
	}
	if cfg.Algorithm.UsesQuantum() {
		run.Quantum = cfg.Quantum
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if res != nil {
		run.TotalTicks = res.TotalTicks
		run.Summary = res.Summary()
	}
	return run
}
