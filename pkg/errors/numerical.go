package errors

import (
	"math"
	"strconv"
)

// CheckNumericalStability returns an InvalidInputError if values contain NaN
// or Inf.
func CheckNumericalStability(operation string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewInvalidInputError(operation,
				"non-finite value at position "+strconv.Itoa(i))
		}
	}
	return nil
}

// CheckScalar returns an InvalidInputError if value is NaN or Inf.
func CheckScalar(operation string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewInvalidInputError(operation, "non-finite scalar")
	}
	return nil
}

// StabilizeLog computes log with protection against log(0).
// Returns log(max(value, epsilon)) where epsilon is a small positive number.
func StabilizeLog(value float64) float64 {
	const epsilon = 1e-10
	if value < epsilon {
		return math.Log(epsilon)
	}
	return math.Log(value)
}
