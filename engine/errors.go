package engine

import (
	"fmt"

	"github.com/denseforge/denseforge/kernel"
)

// PolicyError reports a strict-deployment-mode rejection: an op not in the
// lowered-op whitelist, or a vector kernel requested but unavailable with
// no fallback permitted.
type PolicyError struct {
	Node   int
	Detail string
	Err    error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("engine: policy error at node %d: %s", e.Node, e.Detail)
}

func (e *PolicyError) Unwrap() error { return e.Err }

// KernelFailure reports that a kernel returned a non-success status.
type KernelFailure struct {
	Node   int
	Status kernel.Status
	Detail string
	Err    error
}

func (e *KernelFailure) Error() string {
	return fmt.Sprintf("engine: kernel failure at node %d: %s (%s)", e.Node, e.Status, e.Detail)
}

func (e *KernelFailure) Unwrap() error { return e.Err }

// ResourceError reports that the arena failed to satisfy an allocation
// request.
type ResourceError struct {
	Node   int
	Detail string
	Err    error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("engine: resource error at node %d: %s", e.Node, e.Detail)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// UsageError reports that an engine method was invoked in the wrong state
// (e.g. execute before compile).
type UsageError struct {
	Detail string
	Err    error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("engine: usage error: %s", e.Detail)
}

func (e *UsageError) Unwrap() error { return e.Err }
