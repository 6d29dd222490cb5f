package draco

import (
	"fmt"
)

// UnknownDataTypeError occurs when an engine reports a type code outside
// the closed enumeration.
type UnknownDataTypeError struct {
	Code uint32
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("unknown attribute data type code %d (valid: 0..6)", e.Code)
}

// ModeViolationError occurs when an insertion method is called on a config
// built with the other construction mode.
type ModeViolationError struct {
	Op   string
	Mode string
}

func (e *ModeViolationError) Error() string {
	return fmt.Sprintf("%s is not allowed on a %s config", e.Op, e.Mode)
}

// LayoutError occurs when a config fails the contiguity check.
type LayoutError struct {
	Index   int
	Message string
}

func (e *LayoutError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid buffer layout at attribute %d: %s", e.Index, e.Message)
	}
	return fmt.Sprintf("invalid buffer layout: %s", e.Message)
}
