package model

import (
	"fmt"
	"strings"
)

// Algorithm identifies a dispatch policy.
type Algorithm string

const (
	AlgorithmFCFS Algorithm = "FCFS"
	AlgorithmRR   Algorithm = "RR"
	AlgorithmSRTF Algorithm = "SRTF"
	AlgorithmSJF  Algorithm = "SJF"
)

// Algorithms lists every supported algorithm in display order.
var Algorithms = []Algorithm{AlgorithmFCFS, AlgorithmRR, AlgorithmSRTF, AlgorithmSJF}

// String returns the short name of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// Name returns the long display name.
func (a Algorithm) Name() string {
	switch a {
	case AlgorithmFCFS:
		return "First-Come, First-Served"
	case AlgorithmRR:
		return "Round Robin"
	case AlgorithmSRTF:
		return "Shortest Remaining Time First"
	case AlgorithmSJF:
		return "Shortest Job First"
	}
	return "Unknown Algorithm"
}

// UsesQuantum is true for time-sliced algorithms.
func (a Algorithm) UsesQuantum() bool {
	return a == AlgorithmRR
}

// ParseAlgorithm accepts short names case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FCFS":
		return AlgorithmFCFS, nil
	case "RR":
		return AlgorithmRR, nil
	case "SRTF":
		return AlgorithmSRTF, nil
	case "SJF":
		return AlgorithmSJF, nil
	}
	return "", &ConfigError{Field: "algorithm", Value: s, Message: "want one of FCFS, RR, SRTF, SJF"}
}

// PriorityOrder declares which priority value is more important.
type PriorityOrder string

const (
	// PriorityLowerFirst treats a lower priority value as more important.
	PriorityLowerFirst PriorityOrder = "lower"
	// PriorityHigherFirst treats a higher priority value as more important.
	PriorityHigherFirst PriorityOrder = "higher"
)

// String returns the string representation of the priority order.
func (o PriorityOrder) String() string {
	return string(o)
}

// MoreImportant reports whether priority a strictly outranks priority b.
func (o PriorityOrder) MoreImportant(a, b int) bool {
	if o == PriorityHigherFirst {
		return a > b
	}
	return a < b
}

// ParsePriorityOrder accepts "lower" or "higher"; empty means lower.
func ParsePriorityOrder(s string) (PriorityOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lower", "low":
		return PriorityLowerFirst, nil
	case "higher", "high":
		return PriorityHigherFirst, nil
	}
	return "", &ConfigError{Field: "priority_order", Value: s, Message: "want lower or higher"}
}

// ParseAlgorithms parses a comma-separated list; empty means all algorithms.
func ParseAlgorithms(s string) ([]Algorithm, error) {
	if strings.TrimSpace(s) == "" {
		return append([]Algorithm(nil), Algorithms...), nil
	}
	var out []Algorithm
	seen := make(map[Algorithm]bool)
	for _, part := range strings.Split(s, ",") {
		a, err := ParseAlgorithm(part)
		if err != nil {
			return nil, fmt.Errorf("parse algorithms: %w", err)
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out, nil
}
