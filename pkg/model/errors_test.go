package model

import (
	"errors"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrNotFound, Message: "Simulation 'sim_123' not found"}
	want := "NOT_FOUND: Simulation 'sim_123' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("Simulation", "sim_abc")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Message != "Simulation 'sim_abc' not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Simulation 'sim_abc' not found")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("Invalid request",
		FieldError{Field: "processes[0].burst", Message: "must be > 0"},
		FieldError{Field: "cpus", Message: "expected int"},
	)
	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if len(err.Details) != 2 {
		t.Errorf("Details length = %d, want 2", len(err.Details))
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{
		Entity: "process",
		ID:     "7",
		From:   "COMPLETED",
		To:     "READY",
	}
	want := "invalid process state transition: COMPLETED -> READY (entity 7)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDivergenceError_Unwrap(t *testing.T) {
	var err error = &DivergenceError{Limit: 10, Completed: 1, Total: 3}
	if !errors.Is(err, ErrDiverged) {
		t.Error("errors.Is(err, ErrDiverged) = false, want true")
	}
	want := "simulation diverged: 1 of 3 processes completed within 10 ticks"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConfigError(t *testing.T) {
	_, err := ParseAlgorithm("LOTTERY")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ParseAlgorithm error = %v, want *ConfigError", err)
	}
	if cfgErr.Field != "algorithm" {
		t.Errorf("Field = %q, want algorithm", cfgErr.Field)
	}
}

func TestProcessSpec_Validate(t *testing.T) {
	tests := []struct {
		spec  ProcessSpec
		valid bool
	}{
		{ProcessSpec{PID: 1, Arrival: 0, Burst: 1}, true},
		{ProcessSpec{PID: 0, Arrival: 3, Burst: 5, Priority: -2}, true},
		{ProcessSpec{PID: -1, Arrival: 0, Burst: 1}, false},
		{ProcessSpec{PID: 1, Arrival: -1, Burst: 1}, false},
		{ProcessSpec{PID: 1, Arrival: 0, Burst: 0}, false},
	}
	for _, tt := range tests {
		err := tt.spec.Validate()
		if (err == nil) != tt.valid {
			t.Errorf("Validate(%+v) = %v, want valid=%v", tt.spec, err, tt.valid)
		}
	}
}
