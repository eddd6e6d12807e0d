package scheduler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/tracing"
	"github.com/me/schedsim/pkg/model"
)

const (
	DefaultCPUs    = 1
	DefaultQuantum = 2

	// DivergenceFactor scales total burst time into the default tick limit.
	DivergenceFactor = 10
)

// Config holds the parameters of one simulation run.
type Config struct {
	Algorithm     model.Algorithm
	CPUs          int
	Quantum       int
	PriorityOrder model.PriorityOrder
	// MaxTicks bounds the run; 0 derives the bound from the workload.
	MaxTicks int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Algorithm:     model.AlgorithmFCFS,
		CPUs:          DefaultCPUs,
		Quantum:       DefaultQuantum,
		PriorityOrder: model.PriorityLowerFirst,
	}
}

// Normalize replaces non-positive counts with defaults and rejects unknown names.
func (c Config) Normalize() (Config, error) {
	if c.Algorithm == "" {
		c.Algorithm = model.AlgorithmFCFS
	}
	alg, err := model.ParseAlgorithm(string(c.Algorithm))
	if err != nil {
		return c, err
	}
	c.Algorithm = alg
	order, err := model.ParsePriorityOrder(string(c.PriorityOrder))
	if err != nil {
		return c, err
	}
	c.PriorityOrder = order
	if c.CPUs <= 0 {
		c.CPUs = DefaultCPUs
	}
	if c.Quantum <= 0 {
		c.Quantum = DefaultQuantum
	}
	if c.MaxTicks < 0 {
		c.MaxTicks = 0
	}
	return c, nil
}

// Simulator runs complete simulations with a fixed configuration.
type Simulator struct {
	config Config
	logger *slog.Logger
}

// New creates a Simulator. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) *Simulator {
	return &Simulator{
		config: cfg,
		logger: logging.Component(logger, "scheduler"),
	}
}

// Run simulates specs to completion. Each call builds its own registry, so specs
// may be shared between concurrent runs. On divergence the partial result is
// returned together with a *model.DivergenceError.
func (s *Simulator) Run(ctx context.Context, specs []model.ProcessSpec) (result *model.SimulationResult, err error) {
	_, span := tracing.StartSpan(ctx, "scheduler.run", "")
	defer func() {
		span.SetStatus(err)
		span.OnDone()
	}()

	engine, err := NewEngine(specs, s.config, s.logger)
	if err != nil {
		return nil, err
	}
	cfg := engine.config
	span.WithAttributes(map[string]string{
		"algorithm": cfg.Algorithm.String(),
		"cpus":      strconv.Itoa(cfg.CPUs),
		"processes": strconv.Itoa(engine.reg.Len()),
	})

	if engine.reg.Len() == 0 {
		s.logger.Info("nothing to simulate")
		return engine.Result(), nil
	}

	s.logger.Info("simulation started",
		"algorithm", cfg.Algorithm,
		"cpus", cfg.CPUs,
		"quantum", cfg.Quantum,
		"priority_order", cfg.PriorityOrder,
		"processes", engine.reg.Len(),
		"tick_limit", engine.limit,
	)
	result, err = engine.Run()
	if err != nil {
		s.logger.Error("simulation failed", "ticks", engine.now, "completed", engine.completed, "error", err)
		return result, err
	}
	s.logger.Info("simulation finished", "ticks", result.TotalTicks)
	return result, nil
}

// Run is a convenience wrapper around New(cfg, nil).Run.
func Run(ctx context.Context, specs []model.ProcessSpec, cfg Config) (*model.SimulationResult, error) {
	return New(cfg, nil).Run(ctx, specs)
}
