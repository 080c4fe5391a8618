package planner

import "errors"

// ErrOutOfMemory means an internal allocation failed while planning;
// the caller receives no partial result.
var ErrOutOfMemory = errors.New("planner: out of memory")

// ErrInfeasible means no valid copy schedule exists for this input
// under the given free space.
var ErrInfeasible = errors.New("planner: no feasible move schedule")

// ErrInvalidInput means ifrags failed upfront validation. The returned
// error wraps ErrInvalidInput and lists every violation found (collected
// with github.com/hashicorp/go-multierror) in its message text.
var ErrInvalidInput = errors.New("planner: invalid input")
