// Package errs collects the sentinel errors fatal to a run. They propagate
// as plain wrapped errors; the CLI boundary (cmd/juliatsacore) prints any
// error that reaches it and exits with code 99 without inspecting which
// sentinel it wraps.
package errs

import "errors"

var (
	// ErrPrecisionExhausted names the error kind of a multiply/square whose
	// cross-terms leave a nonzero remainder past the lowest limb. Package
	// fixedpoint reports that condition with its own
	// fixedpoint.ErrPrecisionExhausted, which does not wrap this one.
	ErrPrecisionExhausted = errors.New("precision exhausted")

	// ErrOverflow names the error kind of an integer part exceeding the
	// representable range. Package fixedpoint reports that condition with
	// its own fixedpoint.ErrOverflow, which does not wrap this one.
	ErrOverflow = errors.New("fixed-point overflow")

	// ErrArenaExhausted names the error kind of a bump allocator reaching
	// its fixed cap. arena.Bump.Alloc reports that condition with a plain
	// formatted error that does not wrap this one.
	ErrArenaExhausted = errors.New("arena exhausted")

	// ErrIO wraps failures reading or writing raw-state and worklist files.
	ErrIO = errors.New("i/o error")

	// ErrConfigOutOfRange is returned for CLI parameters outside their
	// documented clamp range after clamping still can't produce a usable
	// configuration (e.g. LEN missing entirely).
	ErrConfigOutOfRange = errors.New("configuration parameter out of range")

	// ErrCapacityCap is returned by the periodicity analyzer when the
	// number of cycles or Fatou components exceeds its hard cap.
	ErrCapacityCap = errors.New("capacity cap exceeded")

	// ErrInconsistentState flags an invariant violation detected at
	// runtime (e.g. a monotone transition that would regress a color).
	ErrInconsistentState = errors.New("inconsistent internal state")
)

// Fatal wraps any of the above sentinels with context; nothing in the
// program branches on its concrete type.
type Fatal struct {
	Err error
	Msg string
}

func (f *Fatal) Error() string {
	if f.Msg == "" {
		return f.Err.Error()
	}
	return f.Msg + ": " + f.Err.Error()
}

func (f *Fatal) Unwrap() error { return f.Err }

// Wrap produces a *Fatal carrying msg and the underlying sentinel.
func Wrap(err error, msg string) *Fatal {
	return &Fatal{Err: err, Msg: msg}
}
