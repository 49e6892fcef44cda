package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTopology        = errors.New("invalid cluster topology")
	ErrUnknownModel           = errors.New("unknown gpu model")
	ErrNodeNotFound           = errors.New("node not found")
	ErrNodeIDRequired         = errors.New("node id is required")
	ErrFaultInjectionDisabled = errors.New("fault injection is disabled")
	ErrInvalidModelSpec       = errors.New("invalid gpu model spec")
	ErrUnknownAction          = errors.New("unknown lifecycle action")
	ErrInvalidTickInterval    = errors.New("tick interval must be positive")
	ErrInvalidNodeID          = errors.New("invalid node id")
)

type UnknownModelError struct {
	Model string
}

// Error returns the error message.
func (e UnknownModelError) Error() string {
	return fmt.Sprintf("gpu model %q is not registered", e.Model)
}

// Is lets errors.Is match the ErrUnknownModel sentinel.
func (e UnknownModelError) Is(target error) bool {
	return target == ErrUnknownModel
}

func NewUnknownModel(model string) error {
	return UnknownModelError{Model: model}
}

type NodeNotFoundError struct {
	ID string
}

// Error returns the error message.
func (e NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %s not found", e.ID)
}

func (e NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}

func NewNodeNotFound(id string) error {
	return NodeNotFoundError{ID: id}
}

// IsNodeNotFound reports whether err is, or wraps, a node not found error.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// NewInvalidTopology wraps ErrInvalidTopology with the reason the topology was rejected.
func NewInvalidTopology(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTopology, fmt.Sprintf(format, args...))
}
