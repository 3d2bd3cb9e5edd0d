package fmi

import "fmt"

// Status is returned by every runtime entry point. The numeric values match
// the C headers of both standard revisions.
type Status int

const (
	OK Status = iota
	Warning
	Discard
	Error
	Fatal
	Pending
)

var statusNames = [...]string{"OK", "Warning", "Discard", "Error", "Fatal", "Pending"}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Valid reports whether s is one of the six defined values.
func (s Status) Valid() bool { return s >= OK && s <= Pending }

// State is the position of a component in the call sequence.
type State int

const (
	Instantiated State = iota
	InitializationMode
	StepCompleted
	StepFailed
	StepInProgress
	ErrorState
	FatalState
)

var stateNames = [...]string{
	"instantiated",
	"initializationMode",
	"stepCompleted",
	"stepFailed",
	"stepInProgress",
	"error",
	"fatal",
}

func (s State) String() string {
	if s < Instantiated || s > FatalState {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool { return s == ErrorState || s == FatalState }

// EventInfo is filled by a model during discrete-state updates.
type EventInfo struct {
	NewDiscreteStatesNeeded           bool
	TerminateSimulation               bool
	NominalsOfContinuousStatesChanged bool
	ValuesOfContinuousStatesChanged   bool
	NextEventTimeDefined              bool
	NextEventTime                     float64
}
