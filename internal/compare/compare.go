// Package compare runs one workload under several algorithms concurrently.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/scheduler"
	"github.com/me/schedsim/internal/tracing"
	"github.com/me/schedsim/pkg/model"
)

// Options configures a comparison.
type Options struct {
	// Algorithms to run, in report order; empty means all.
	Algorithms []model.Algorithm
	// Base supplies CPUs, quantum, priority order and tick limit; its
	// Algorithm is replaced per run.
	Base scheduler.Config
	// MaxConcurrent bounds simultaneous runs; 0 is unlimited.
	MaxConcurrent int
	// KeepResults attaches each full result to its entry.
	KeepResults bool
}

// Runner executes comparisons.
type Runner struct {
	logger *slog.Logger
	// simulate runs one algorithm; replaced in tests to observe scheduling.
	simulate func(ctx context.Context, specs []model.ProcessSpec, alg model.Algorithm, opts Options) model.ComparisonEntry
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(logger *slog.Logger) *Runner {
	r := &Runner{logger: logging.Component(logger, "compare")}
	r.simulate = r.runOne
	return r
}

// Run simulates specs once per algorithm. Every run builds its own process
// registry from the shared, read-only specs. Entries come back in the order of
// opts.Algorithms regardless of completion order. A failed or diverged run is
// reported in its entry; only cancellation fails the whole comparison.
func (r *Runner) Run(ctx context.Context, specs []model.ProcessSpec, opts Options) (entries []model.ComparisonEntry, err error) {
	algs := opts.Algorithms
	if len(algs) == 0 {
		algs = model.Algorithms
	}

	ctx, span := tracing.StartSpan(ctx, "compare.run", "")
	defer func() {
		span.SetStatus(err)
		span.OnDone()
	}()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = a.String()
	}
	span.WithAttributes(map[string]string{
		"algorithms": strings.Join(names, ","),
		"processes":  strconv.Itoa(len(specs)),
	})

	workers := workerCount(opts.MaxConcurrent, len(algs))
	entries = make([]model.ComparisonEntry, len(algs))
	pending := make(chan int)
	var wg sync.WaitGroup

	r.logger.Info("comparison started", "algorithms", names, "processes", len(specs), "workers", workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range pending {
				entries[i] = r.simulate(ctx, specs, algs[i], opts)
			}
		}()
	}
feed:
	for i := range algs {
		select {
		case pending <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(pending)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("comparison cancelled: %w", err)
	}
	r.logger.Info("comparison finished", "algorithms", len(entries))
	return entries, nil
}

// workerCount sizes the pool: one worker per algorithm unless limit is lower.
// A limit of 0 or less means unlimited.
func workerCount(limit, algorithms int) int {
	if limit <= 0 || limit > algorithms {
		return algorithms
	}
	return limit
}

func (r *Runner) runOne(ctx context.Context, specs []model.ProcessSpec, alg model.Algorithm, opts Options) model.ComparisonEntry {
	cfg := opts.Base
	cfg.Algorithm = alg
	entry := model.ComparisonEntry{Algorithm: alg}

	res, err := scheduler.New(cfg, r.logger).Run(ctx, specs)
	entry.Status = Status(res, err)
	if err != nil {
		entry.Error = err.Error()
		r.logger.Warn("algorithm run failed", "algorithm", alg, "error", err)
	}
	if res != nil {
		entry.Summary = res.Summary()
		entry.TotalTicks = res.TotalTicks
		if opts.KeepResults {
			entry.Result = res
		}
	}
	return entry
}

// Status classifies the outcome of a scheduler run.
func Status(res *model.SimulationResult, err error) model.RunStatus {
	switch {
	case errors.Is(err, model.ErrDiverged):
		return model.RunStatusDiverged
	case err != nil:
		return model.RunStatusFailed
	case res.Empty():
		return model.RunStatusEmpty
	}
	return model.RunStatusCompleted
}

// Best picks the completed entry with the lowest average waiting time; the first
// listed wins a tie. It returns "" when no entry completed.
func Best(entries []model.ComparisonEntry) model.Algorithm {
	var best model.Algorithm
	bestWait := 0.0
	for _, e := range entries {
		if e.Status != model.RunStatusCompleted {
			continue
		}
		if best == "" || e.Summary.AvgWaiting < bestWait {
			best, bestWait = e.Algorithm, e.Summary.AvgWaiting
		}
	}
	return best
}
