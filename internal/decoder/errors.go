package decoder

import (
	"fmt"
)

// Decode stages reported by typed errors so callers can tell where a
// decode failed.
const (
	StageInput       = "input"
	StageCreateMesh  = "create-mesh"
	StageConfig      = "config"
	StageDecode      = "decode-buffer"
	StagePointCloud  = "point-cloud"
	StageWorkerRound = "worker-round-trip"
)

// InputError occurs when the encoded blob cannot be decoded: the engine
// refused a handle, wrote zero bytes, or produced an ill-formed point
// cloud. Always recoverable; the host process must never crash on
// malformed or adversarial input.
type InputError struct {
	Stage string
	Err   error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid decode input (stage: %s): %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("invalid decode input (stage: %s)", e.Stage)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ConfigError occurs when the engine's layout metadata cannot be obtained
// or interpreted, including unknown attribute data type codes.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mesh config computation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError occurs when a worker round trip fails: the worker is
// shut down, the engine failed to load, or the decode panicked. The caller
// gets no result and may retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("worker decode round trip failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
