package digitize

import "fmt"

// Kind classifies pipeline failures. Kinds are errors themselves, so
// errors.Is(err, AxisNotFound) matches any *Error of that kind.
type Kind int

const (
	// MalformedInput is an inconsistent pixel buffer.
	MalformedInput Kind = iota + 1
	// AxisNotFound means no x or no y axis could be located.
	AxisNotFound
	// InvalidCalibration is insufficient or degenerate calibration input.
	InvalidCalibration
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case AxisNotFound:
		return "axis not found"
	case InvalidCalibration:
		return "invalid calibration"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string {
	return k.String()
}

// Error is the single tagged error returned by the pipeline. Err wraps the
// sentinel of the failing package, e.g. detection.ErrAxisNotFound.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Pipeline stage names reported in Error.Stage.
const (
	StageInput       = "input"
	StageCalibration = "calibration"
	StagePreprocess  = "preprocess"
	StageAxes        = "axes"
	StageMap         = "map"
)

func fail(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}
