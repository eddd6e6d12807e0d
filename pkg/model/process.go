package model

// Unset marks a tick-valued field that has no value yet (not started, not finished).
const Unset = -1

// ProcessSpec is one input record: `pid arrival burst [priority]`.
// Specs are immutable; every simulation run builds its own Process values from them.
type ProcessSpec struct {
	PID      int `json:"pid" yaml:"pid"`
	Arrival  int `json:"arrival" yaml:"arrival"`
	Burst    int `json:"burst" yaml:"burst"`
	Priority int `json:"priority" yaml:"priority"`
}

// Validate reports why a spec cannot be simulated, or nil.
// PIDs must be non-negative because the timeline uses IdleSlot (-1) for idle CPUs.
func (s ProcessSpec) Validate() error {
	var details []FieldError
	if s.PID < 0 {
		details = append(details, FieldError{Field: "pid", Message: "must be >= 0"})
	}
	if s.Arrival < 0 {
		details = append(details, FieldError{Field: "arrival", Message: "must be >= 0"})
	}
	if s.Burst <= 0 {
		details = append(details, FieldError{Field: "burst", Message: "must be > 0"})
	}
	if len(details) > 0 {
		return NewValidationError("invalid process record", details...)
	}
	return nil
}

// Process is the mutable run state of one simulated process.
type Process struct {
	PID          int          `json:"pid"`
	Arrival      int          `json:"arrival"`
	Burst        int          `json:"burst"`
	Priority     int          `json:"priority"`
	Remaining    int          `json:"remaining"`
	State        ProcessState `json:"state"`
	StartTime    int          `json:"start_time"`
	FinishTime   int          `json:"finish_time"`
	ResponseTime int          `json:"response_time"`
	WaitingTime  int          `json:"waiting_time"`
	QuantumUsed  int          `json:"quantum_used"`
}

// NewProcess returns a process in the NOT_ARRIVED state with full remaining work.
func NewProcess(spec ProcessSpec) Process {
	return Process{
		PID:          spec.PID,
		Arrival:      spec.Arrival,
		Burst:        spec.Burst,
		Priority:     spec.Priority,
		Remaining:    spec.Burst,
		State:        ProcessStateNotArrived,
		StartTime:    Unset,
		FinishTime:   Unset,
		ResponseTime: Unset,
	}
}

// Started reports whether the process has been dispatched at least once.
func (p *Process) Started() bool {
	return p.StartTime != Unset
}
