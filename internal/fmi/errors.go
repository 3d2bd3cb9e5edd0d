package fmi

import (
	"errors"
	"strings"
)

// Configuration and runtime error kinds.
var (
	// ErrDuplicateName indicates a second declaration under an existing name.
	ErrDuplicateName = errors.New("fmi: duplicate name")

	// ErrUnknownUnit indicates a unit that is neither registered nor common.
	ErrUnknownUnit = errors.New("fmi: unknown unit")

	// ErrUnknownVariable indicates a name that no registered variable carries.
	ErrUnknownVariable = errors.New("fmi: unknown variable")

	// ErrMissingDependency indicates a variable whose role requires a
	// dependency declaration that was never made.
	ErrMissingDependency = errors.New("fmi: missing dependency")

	// ErrUnknownReference indicates a (value reference, type) pair with no variable.
	ErrUnknownReference = errors.New("fmi: unknown value reference")

	// ErrUnsupportedMode indicates an instantiation request for a mode the
	// component does not provide.
	ErrUnsupportedMode = errors.New("fmi: unsupported mode")

	// ErrTypeMismatch indicates a binding whose Go type differs from the
	// declared scalar type.
	ErrTypeMismatch = errors.New("fmi: type mismatch")

	// ErrIllegalCall indicates an entry point invoked from a state that does
	// not allow it.
	ErrIllegalCall = errors.New("fmi: illegal call sequence")

	// ErrInternal indicates a developer error inside a component, such as a
	// step hook returning an unrecognized status.
	ErrInternal = errors.New("fmi: internal error")
)

// OpError carries the kind of failure plus the operation and subject it
// concerns. errors.Is matches it against its Kind.
type OpError struct {
	Kind    error
	Op      string
	Subject string
	Detail  string
}

func NewError(kind error, op, subject, detail string) *OpError {
	return &OpError{Kind: kind, Op: op, Subject: subject, Detail: detail}
}

func (e *OpError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("fmi: error")
	}
	if e.Subject != "" {
		b.WriteString(" \"")
		b.WriteString(e.Subject)
		b.WriteString("\"")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *OpError) Unwrap() error {
	return e.Kind
}
