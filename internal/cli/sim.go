package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/report"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

// simFlags are the simulation settings shared by run, compare and submit.
// Precedence is defaults, then --config, then the scenario file, then flags.
type simFlags struct {
	file          string
	algorithm     string
	algorithms    string
	cpus          int
	quantum       int
	priorityOrder string
	maxTicks      int
	format        string
	color         string
}

func (f *simFlags) register(cmd *cobra.Command, multi bool) {
	d := config.DefaultSimConfig()
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", `Workload file ("-" for stdin)`)
	if multi {
		fl.StringVarP(&f.algorithms, "algorithms", "a", "", "Comma-separated algorithms to compare (default all)")
	} else {
		fl.StringVarP(&f.algorithm, "algorithm", "a", d.Algorithm, "Scheduling algorithm (FCFS, RR, SRTF, SJF)")
	}
	fl.IntVarP(&f.cpus, "cpus", "c", d.CPUs, "Number of CPUs")
	fl.IntVarP(&f.quantum, "quantum", "q", d.Quantum, "Round-robin time quantum")
	fl.StringVar(&f.priorityOrder, "priority-order", d.PriorityOrder, "Which priority value wins ties (lower, higher)")
	fl.IntVar(&f.maxTicks, "max-ticks", 0, "Abort after this many ticks (0 derives a bound from the workload)")
	fl.StringVarP(&f.format, "output", "o", d.Format, "Output format (text, csv, json, yaml)")
	fl.StringVar(&f.color, "color", d.Color, "Colour the timeline (auto, always, never)")
}

// resolve merges the settings sources and loads the workload. An input with no
// valid records yields an empty scenario, not an error.
func (f *simFlags) resolve(cmd *cobra.Command, args []string) (config.SimConfig, *workload.Scenario, error) {
	cfg := config.DefaultSimConfig()
	if flagConfig != "" {
		loaded, err := config.LoadSimConfig(flagConfig)
		if err != nil {
			return cfg, nil, err
		}
		cfg = loaded
	}

	input := cfg.Input
	if f.file != "" {
		input = f.file
	}
	if len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return cfg, nil, errors.New("no workload given: pass a file argument or -f <file>")
	}

	scen, err := workload.LoadFile(input, logger)
	switch {
	case errors.Is(err, workload.ErrEmpty):
		logger.Warn("workload has no valid process records", "input", input)
		scen = &workload.Scenario{Name: input}
	case err != nil:
		return cfg, nil, fmt.Errorf("load workload: %w", err)
	}
	applyScenario(&cfg, scen)

	fl := cmd.Flags()
	if fl.Changed("algorithm") {
		cfg.Algorithm = f.algorithm
	}
	if fl.Changed("algorithms") {
		cfg.Algorithms = strings.Split(f.algorithms, ",")
	}
	if fl.Changed("cpus") {
		cfg.CPUs = f.cpus
	}
	if fl.Changed("quantum") {
		cfg.Quantum = f.quantum
	}
	if fl.Changed("priority-order") {
		cfg.PriorityOrder = f.priorityOrder
	}
	if fl.Changed("max-ticks") {
		cfg.MaxTicks = f.maxTicks
	}
	if fl.Changed("output") {
		cfg.Format = f.format
	}
	if fl.Changed("color") {
		cfg.Color = f.color
	}
	cfg.Input = input

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, scen, nil
}

func applyScenario(cfg *config.SimConfig, s *workload.Scenario) {
	if s.Algorithm != "" {
		cfg.Algorithm = s.Algorithm
	}
	if s.CPUs > 0 {
		cfg.CPUs = s.CPUs
	}
	if s.Quantum > 0 {
		cfg.Quantum = s.Quantum
	}
	if s.PriorityOrder != "" {
		cfg.PriorityOrder = s.PriorityOrder
	}
}

// reportOptions decides colouring for w. "auto" colours only terminals.
func reportOptions(cfg config.SimConfig, w io.Writer) report.Options {
	opts := report.Options{TicksPerRow: report.DefaultTicksPerRow}
	switch strings.ToLower(cfg.Color) {
	case "always":
		opts.Color = true
	case "never":
	default:
		opts.Color = logging.IsTerminal(w)
	}
	return opts
}

// openStore opens and migrates the local run history database.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	dbPath, err := config.ResolveDBPath(flagDB)
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	logger.Debug("opening run history", "path", dbPath)
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	return st, nil
}

func parseAlgorithms(names []string) ([]model.Algorithm, error) {
	return model.ParseAlgorithms(strings.Join(names, ","))
}
