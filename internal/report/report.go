// Package report renders simulation results as text, CSV, JSON or YAML.
// Rendering only reads the result, so a result may be rendered any number of times.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/schedsim/pkg/model"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name case-insensitively; empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", &model.ConfigError{Field: "format", Value: s, Message: "want text, csv, json or yaml"}
}

// DefaultTicksPerRow is how many ticks one timeline segment shows.
const DefaultTicksPerRow = 15

// Options tunes text rendering.
type Options struct {
	Color       bool
	TicksPerRow int
	// Title replaces the default "<algorithm> on N CPU(s)" heading.
	Title string
}

// Document is the machine-readable form of one result.
type Document struct {
	Result  *model.SimulationResult `json:"result" yaml:"result"`
	Summary model.Summary           `json:"summary" yaml:"summary"`
}

// Write renders res in the requested format.
func Write(w io.Writer, res *model.SimulationResult, format Format, opts Options) error {
	switch format {
	case FormatText, "":
		return WriteText(w, res, opts)
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatJSON:
		return WriteJSON(w, Document{Result: res, Summary: res.Summary()})
	case FormatYAML:
		return WriteYAML(w, Document{Result: res, Summary: res.Summary()})
	}
	return fmt.Errorf("write report: unsupported format %q", format)
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteYAML encodes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// na renders Unset tick values.
func na(v int) string {
	if v == model.Unset {
		return "N/A"
	}
	return fmt.Sprint(v)
}
