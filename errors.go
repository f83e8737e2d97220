package tempora

import "errors"

// Contract-violation errors. Data absence (a field missing on a point, an
// unknown measurement, empty aggregate input) is never an error; these cover
// programming mistakes at the call site.
var (
	// ErrEmptyMeasurement reports a point constructed without a measurement
	// name.
	ErrEmptyMeasurement = errors.New("measurement name is required")

	// ErrUnsupportedOp reports a field predicate built with an unknown
	// comparison operator.
	ErrUnsupportedOp = errors.New("unsupported comparison operator")

	// ErrIncomparable reports an ordering predicate over values whose types
	// define no common order (e.g., a string against a number).
	ErrIncomparable = errors.New("incomparable field values")
)
