package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/schedsim/internal/scheduler"
	"github.com/me/schedsim/pkg/model"
)

// EnvDBPath overrides the default run history database path.
const EnvDBPath = "SCHEDSIM_DB"

// SimConfig holds the settings of a command-line simulation. Zero values fall
// back to defaults; flags override values loaded from a file.
type SimConfig struct {
	Algorithm     string   `yaml:"algorithm"`
	Algorithms    []string `yaml:"algorithms"` // compare only; empty means all
	CPUs          int      `yaml:"cpus"`
	Quantum       int      `yaml:"quantum"`
	PriorityOrder string   `yaml:"priority_order"`
	MaxTicks      int      `yaml:"max_ticks"`
	Input         string   `yaml:"input"`  // workload file, "-" for stdin
	Format        string   `yaml:"format"` // text, csv, json, yaml
	Color         string   `yaml:"color"`  // auto, always, never
}

// DefaultSimConfig returns sensible defaults.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Algorithm:     string(model.AlgorithmFCFS),
		CPUs:          scheduler.DefaultCPUs,
		Quantum:       scheduler.DefaultQuantum,
		PriorityOrder: string(model.PriorityLowerFirst),
		Format:        "text",
		Color:         "auto",
	}
}

// LoadSimConfig reads a YAML file over the defaults.
func LoadSimConfig(path string) (SimConfig, error) {
	cfg := DefaultSimConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values that cannot be normalized.
func (c SimConfig) Validate() error {
	if _, err := c.SchedulerConfig(); err != nil {
		return err
	}
	if _, err := model.ParseAlgorithms(strings.Join(c.Algorithms, ",")); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "", "text", "csv", "json", "yaml":
	default:
		return &model.ConfigError{Field: "format", Value: c.Format, Message: "want text, csv, json or yaml"}
	}
	switch strings.ToLower(c.Color) {
	case "", "auto", "always", "never":
	default:
		return &model.ConfigError{Field: "color", Value: c.Color, Message: "want auto, always or never"}
	}
	return nil
}

// SchedulerConfig converts c into a normalized scheduler.Config.
func (c SimConfig) SchedulerConfig() (scheduler.Config, error) {
	return scheduler.Config{
		Algorithm:     model.Algorithm(c.Algorithm),
		CPUs:          c.CPUs,
		Quantum:       c.Quantum,
		PriorityOrder: model.PriorityOrder(c.PriorityOrder),
		MaxTicks:      c.MaxTicks,
	}.Normalize()
}

// ServerConfig holds configuration for the simulation API server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json, auto
	DBPath    string // SQLite database path (default ~/.schedsim/schedsim.db, ":memory:" for testing)
	// MaxConcurrent bounds simultaneous simulations in a comparison; 0 is unlimited.
	MaxConcurrent int
	// MaxTicks caps max_ticks, any arrival and the total burst of one request; 0 is unlimited.
	MaxTicks int
	// MaxCPUs caps the cpus of one request; 0 is unlimited.
	MaxCPUs int
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":8080",
		LogLevel:      "info",
		LogFormat:     "text",
		MaxConcurrent: 4,
		MaxTicks:      1_000_000,
		MaxCPUs:       64,
	}
}

// ResolveDBPath returns path if set, then $SCHEDSIM_DB, then
// ~/.schedsim/schedsim.db, creating the directory for the last.
func ResolveDBPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv(EnvDBPath); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".schedsim")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return filepath.Join(dir, "schedsim.db"), nil
}

// Version is reported by the health endpoint and attached to traces.
const Version = "0.1.0"
