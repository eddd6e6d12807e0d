package model

// ProcessState represents the lifecycle state of a simulated Process.
type ProcessState string

const (
	ProcessStateNotArrived ProcessState = "NOT_ARRIVED"
	ProcessStateReady      ProcessState = "READY"
	ProcessStateRunning    ProcessState = "RUNNING"
	ProcessStateCompleted  ProcessState = "COMPLETED"
)

// String returns the string representation of the process state.
func (s ProcessState) String() string {
	return string(s)
}

// IsTerminal returns true if the process can no longer change state.
func (s ProcessState) IsTerminal() bool {
	return s == ProcessStateCompleted
}

// ValidProcessTransitions defines the allowed state transitions for Processes.
var ValidProcessTransitions = map[ProcessState][]ProcessState{
	ProcessStateNotArrived: {ProcessStateReady},
	ProcessStateReady:      {ProcessStateRunning},
	ProcessStateRunning:    {ProcessStateReady, ProcessStateCompleted},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s ProcessState) CanTransitionTo(next ProcessState) bool {
	for _, allowed := range ValidProcessTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RunStatus is the outcome of a persisted simulation run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusDiverged  RunStatus = "DIVERGED"
	RunStatusEmpty     RunStatus = "EMPTY"
	RunStatusFailed    RunStatus = "FAILED"
)

// String returns the string representation of the run status.
func (s RunStatus) String() string {
	return string(s)
}
