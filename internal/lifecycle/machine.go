// Package lifecycle tracks the call-sequence state of one component
// instance and runs the pre- and post-step callbacks around each step.
package lifecycle

import (
	"fmt"

	"github.com/san-kum/fmukit/internal/fmi"
)

// Hook is a component-specific implementation of one lifecycle call.
type Hook func() fmi.Status

// Callback runs before or after every step. Callbacks are not isolated from
// each other: a panicking callback is not recovered.
type Callback func()

type Machine struct {
	state fmi.State
	pre   []Callback
	post  []Callback
}

func New() *Machine {
	return &Machine{state: fmi.Instantiated}
}

func (m *Machine) State() fmi.State { return m.state }

func (m *Machine) OnPreStep(cb Callback)  { m.pre = append(m.pre, cb) }
func (m *Machine) OnPostStep(cb Callback) { m.post = append(m.post, cb) }

// RunPreStep invokes the pre-step callbacks in registration order.
func (m *Machine) RunPreStep() {
	for _, cb := range m.pre {
		cb()
	}
}

// RunPostStep invokes the post-step callbacks in registration order.
func (m *Machine) RunPostStep() {
	for _, cb := range m.post {
		cb()
	}
}

// EnterInitializationMode moves an instantiated machine to
// initializationMode and returns the hook's status unchanged.
func (m *Machine) EnterInitializationMode(hook Hook) (fmi.Status, error) {
	if m.state != fmi.Instantiated {
		return fmi.Error, m.illegal("enter initialization mode")
	}
	m.state = fmi.InitializationMode
	return call(hook), nil
}

// ExitInitializationMode runs the hook and moves to stepCompleted whatever
// the hook returns.
func (m *Machine) ExitInitializationMode(hook Hook) (fmi.Status, error) {
	if m.state != fmi.InitializationMode {
		return fmi.Error, m.illegal("exit initialization mode")
	}
	status := call(hook)
	m.state = fmi.StepCompleted
	return status, nil
}

// Step runs the pre-step callbacks, the hook and the post-step callbacks,
// then derives the next state from the hook's status. It is accepted after
// a completed, failed or pending step. A status outside the known range puts
// the machine in the fatal state and returns ErrInternal.
func (m *Machine) Step(hook Hook) (fmi.Status, error) {
	switch m.state {
	case fmi.StepCompleted, fmi.StepFailed, fmi.StepInProgress:
	default:
		return fmi.Error, m.illegal("do step")
	}

	m.RunPreStep()
	status := call(hook)
	m.RunPostStep()

	switch status {
	case fmi.OK, fmi.Warning:
		m.state = fmi.StepCompleted
	case fmi.Discard:
		m.state = fmi.StepFailed
	case fmi.Error:
		m.state = fmi.ErrorState
	case fmi.Fatal:
		m.state = fmi.FatalState
	case fmi.Pending:
		m.state = fmi.StepInProgress
	default:
		m.state = fmi.FatalState
		return fmi.Fatal, fmi.NewError(fmi.ErrInternal, "do step", "",
			fmt.Sprintf("unexpected status %d from step hook", int(status)))
	}
	return status, nil
}

// Reset returns the machine to the instantiated state. Callbacks are kept.
func (m *Machine) Reset() {
	m.state = fmi.Instantiated
}

func (m *Machine) illegal(op string) error {
	return fmi.NewError(fmi.ErrIllegalCall, op, "", fmt.Sprintf("not allowed in state %s", m.state))
}

func call(hook Hook) fmi.Status {
	if hook == nil {
		return fmi.OK
	}
	return hook()
}
