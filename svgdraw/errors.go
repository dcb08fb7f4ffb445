package svgdraw

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDocument is returned when no root element is given.
	ErrInvalidDocument = errors.New("svgdraw: invalid document")

	// ErrCyclicReference is logged (never returned) when a reference
	// chain loops back on itself; the reference is then ignored.
	ErrCyclicReference = errors.New("svgdraw: cyclic reference")
)

// BackendError wraps a failure of the rendering backend.
// It aborts the whole build.
type BackendError struct {
	Op  string // the failed allocation: "path", "paint" or "image"
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("svgdraw: backend %s allocation failed: %s", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// PanicError is the error recovered from a panic while
// resolving one element. The element is then not drawn.
type PanicError struct {
	Element string
	Value   interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("svgdraw: panic while building %s: %v", e.Element, e.Value)
}
