package engine

import (
	"fmt"
)

// UnavailableError occurs when no usable decode engine can be produced,
// e.g. the configured bundle is missing or its module lacks a required
// export. This is a runtime condition callers can recover from.
type UnavailableError struct {
	Name string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("decode engine '%s' unavailable: %v", e.Name, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// CallError occurs when a guest call fails or reports failure.
type CallError struct {
	Function string
	Err      error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine call '%s' failed: %v", e.Function, e.Err)
	}
	return fmt.Sprintf("engine call '%s' reported failure", e.Function)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// MalformedConfigError occurs when the engine's serialized mesh config
// cannot be parsed.
type MalformedConfigError struct {
	Reason string
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed engine mesh config: %s", e.Reason)
}
