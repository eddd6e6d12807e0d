// Package workload loads process lists from text records or YAML scenarios and
// generates random workloads.
package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/pkg/model"
)

// ErrEmpty is returned when a source holds no valid process record.
var ErrEmpty = errors.New("no valid process records")

// Scenario is a workload plus optional run settings. Text files produce a
// scenario with only Processes set.
type Scenario struct {
	Name          string              `yaml:"name,omitempty" json:"name,omitempty"`
	Description   string              `yaml:"description,omitempty" json:"description,omitempty"`
	Algorithm     string              `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
	CPUs          int                 `yaml:"cpus,omitempty" json:"cpus,omitempty"`
	Quantum       int                 `yaml:"quantum,omitempty" json:"quantum,omitempty"`
	PriorityOrder string              `yaml:"priority_order,omitempty" json:"priority_order,omitempty"`
	Processes     []model.ProcessSpec `yaml:"processes" json:"processes"`
}

// Parse reads `pid arrival burst [priority]` records. Blank lines and lines
// starting with # are ignored. Malformed or invalid records are logged and
// skipped. A missing or non-numeric fourth column means priority 0.
func Parse(r io.Reader, logger *slog.Logger) ([]model.ProcessSpec, error) {
	logger = logging.Component(logger, "workload")
	var out []model.ProcessSpec
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		spec, err := parseRecord(line)
		if err == nil {
			err = spec.Validate()
		}
		if err != nil {
			logger.Warn("skipping process record", "line", lineNo, "text", line, "error", err)
			continue
		}
		out = append(out, spec)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read records: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func parseRecord(line string) (model.ProcessSpec, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return model.ProcessSpec{}, fmt.Errorf("want at least 3 fields, got %d", len(fields))
	}
	var vals [3]int
	for i := range vals {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return model.ProcessSpec{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	spec := model.ProcessSpec{PID: vals[0], Arrival: vals[1], Burst: vals[2]}
	if len(fields) > 3 {
		if p, err := strconv.Atoi(fields[3]); err == nil {
			spec.Priority = p
		}
	}
	return spec, nil
}

// ParseScenario decodes a YAML scenario. Invalid processes are dropped with a
// warning, as in text input.
func ParseScenario(data []byte, logger *slog.Logger) (*Scenario, error) {
	logger = logging.Component(logger, "workload")
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	valid := s.Processes[:0]
	for i, p := range s.Processes {
		if err := p.Validate(); err != nil {
			logger.Warn("skipping process record", "index", i, "pid", p.PID, "error", err)
			continue
		}
		valid = append(valid, p)
	}
	s.Processes = valid
	if len(s.Processes) == 0 {
		return nil, ErrEmpty
	}
	return &s, nil
}

// Load reads a workload from r. YAML is chosen when name ends in .yaml or .yml.
func Load(r io.Reader, name string, logger *slog.Logger) (*Scenario, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return ParseScenario(data, logger)
	}
	specs, err := Parse(r, logger)
	if err != nil {
		return nil, err
	}
	return &Scenario{Name: filepath.Base(name), Processes: specs}, nil
}

// LoadFile opens path and loads it. "-" reads standard input as text records.
func LoadFile(path string, logger *slog.Logger) (*Scenario, error) {
	if path == "-" {
		return Load(os.Stdin, "stdin", logger)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workload: %w", err)
	}
	defer f.Close()
	s, err := Load(f, path, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return s, nil
}

// Write emits specs in the text record format.
func Write(w io.Writer, specs []model.ProcessSpec) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# pid arrival burst priority")
	for _, s := range specs {
		fmt.Fprintf(bw, "%d %d %d %d\n", s.PID, s.Arrival, s.Burst, s.Priority)
	}
	return bw.Flush()
}
