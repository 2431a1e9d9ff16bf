package errcode

import "errors"

// Code is a stable error identifier shared by drivers, the scheduler and logs.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Busy          Code = "busy"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"

	// Single-wire protocol.
	Timeout          Code = "timeout"
	ChecksumMismatch Code = "checksum_mismatch"

	// Shared bus.
	BusError Code = "bus_error"

	// Scheduler.
	SpawnCapacityExceeded Code = "spawn_capacity_exceeded"
	TierStarted           Code = "tier_started"
	UnknownTier           Code = "unknown_tier"

	// Sensors.
	SensorInitFailure Code = "sensor_init_failure"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.Timeout) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap builds an *E for op with the given code and cause.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	// Outermost code wins.
	for e := err; e != nil; e = errors.Unwrap(e) {
		if c, ok := e.(Code); ok {
			return c
		}
		if x, ok := e.(coder); ok {
			return x.Code()
		}
	}
	return Error
}

// MapDriverErr maps low-level bus driver errors to a Code. Anything that
// does not already carry a code is treated as a failed bus transaction.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	return BusError
}
