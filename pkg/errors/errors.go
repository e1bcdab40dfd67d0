// Package errors provides the error handling and warning system used across
// the library. Every estimation failure is reported as a typed error carrying
// enough structure to log and branch on, with a stack trace attached at the
// point of creation.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("vimpgo-warning: %v\n", w)
	}
)

// SetWarningHandler sets the library-wide warning handler. Warnings are
// advisory (for example a sample too small for the normal approximation) and
// never abort an estimation.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // silence warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn raises a warning through the configured handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if warningHandler != nil {
		warningHandler(w)
	}
}

// SmallSampleWarning is raised when an influence-curve-based standard error
// is computed from fewer observations than the normal approximation can be
// trusted with.
type SmallSampleWarning struct {
	Op      string
	Samples int
	Minimum int
}

func (w *SmallSampleWarning) Error() string {
	return fmt.Sprintf("%s: only %d observations contribute to the influence curve; normal-approximation inference is unreliable below %d", w.Op, w.Samples, w.Minimum)
}

// MarshalZerologObject adds structured warning information to a zerolog event.
func (w *SmallSampleWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Int("samples", w.Samples).
		Int("minimum", w.Minimum).
		Str("type", "SmallSampleWarning")
}

// NewSmallSampleWarning creates a new SmallSampleWarning.
func NewSmallSampleWarning(op string, samples, minimum int) *SmallSampleWarning {
	return &SmallSampleWarning{Op: op, Samples: samples, Minimum: minimum}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// InvalidInputError reports inputs the estimator cannot work with: NaN or Inf
// values when missing values are not being removed, negative weights, empty
// vectors, malformed feature sets.
type InvalidInputError struct {
	Op     string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("vimpgo: %s: invalid input: %s", e.Op, e.Reason)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *InvalidInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "InvalidInputError")
}

// NewInvalidInputError creates a new InvalidInputError with a stack trace.
func NewInvalidInputError(op, reason string) error {
	err := &InvalidInputError{Op: op, Reason: reason}
	return errors.WithStack(err)
}

// LengthMismatchError reports vectors that do not align by position, either
// as supplied or after missing-value removal.
type LengthMismatchError struct {
	Op       string
	Expected int
	Got      int
	Name     string // which vector disagreed
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("vimpgo: %s: %s has length %d, want %d", e.Op, e.Name, e.Got, e.Expected)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *LengthMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("vector", e.Name).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "LengthMismatchError")
}

// NewLengthMismatchError creates a new LengthMismatchError with a stack trace.
func NewLengthMismatchError(op, name string, expected, got int) error {
	err := &LengthMismatchError{Op: op, Name: name, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// DegenerateModelError reports a ratio measure whose denominator functional is
// (numerically) zero: an outcome with no variance for R-squared, a marginal
// distribution with no entropy for deviance, a sample with a single outcome
// class for AUC. No importance is defined in these cases.
type DegenerateModelError struct {
	Measure     string
	Denominator float64
}

func (e *DegenerateModelError) Error() string {
	return fmt.Sprintf("vimpgo: %s: degenerate denominator %g; importance is undefined for this sample", e.Measure, e.Denominator)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DegenerateModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("measure", e.Measure).
		Float64("denominator", e.Denominator).
		Str("type", "DegenerateModelError")
}

// NewDegenerateModelError creates a new DegenerateModelError with a stack trace.
func NewDegenerateModelError(measure string, denominator float64) error {
	err := &DegenerateModelError{Measure: measure, Denominator: denominator}
	return errors.WithStack(err)
}

// MissingWeightsError reports a coarsened sample (the observation indicator
// contains zeros) for which the inverse-probability weights, or the AIPW
// augmentation values, were not supplied.
type MissingWeightsError struct {
	Op        string
	Coarsened int    // number of unobserved entries
	What      string // which input is missing
}

func (e *MissingWeightsError) Error() string {
	return fmt.Sprintf("vimpgo: %s: %d observations are coarsened but no %s were supplied", e.Op, e.Coarsened, e.What)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *MissingWeightsError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("coarsened", e.Coarsened).
		Str("missing", e.What).
		Str("type", "MissingWeightsError")
}

// NewMissingWeightsError creates a new MissingWeightsError with a stack trace.
func NewMissingWeightsError(op, what string, coarsened int) error {
	err := &MissingWeightsError{Op: op, What: what, Coarsened: coarsened}
	return errors.WithStack(err)
}

// InvalidScaleError reports an interval or p-value request that the chosen
// scale cannot honor, e.g. a logit-scale interval around an estimate of
// exactly 0 or 1, or a logit scale on an unbounded measure.
type InvalidScaleError struct {
	Scale    string
	Estimate float64
	Reason   string
}

func (e *InvalidScaleError) Error() string {
	return fmt.Sprintf("vimpgo: scale %q cannot be applied at estimate %g: %s", e.Scale, e.Estimate, e.Reason)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *InvalidScaleError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("scale", e.Scale).
		Float64("estimate", e.Estimate).
		Str("reason", e.Reason).
		Str("type", "InvalidScaleError")
}

// NewInvalidScaleError creates a new InvalidScaleError with a stack trace.
func NewInvalidScaleError(scale string, estimate float64, reason string) error {
	err := &InvalidScaleError{Scale: scale, Estimate: estimate, Reason: reason}
	return errors.WithStack(err)
}

// RegressionFailureError reports a Learner that failed to fit or predict for
// some fold. A cross-fitted estimate fails as a whole; folds are never
// silently dropped.
type RegressionFailureError struct {
	Half  int // 0: full-regression half, 1: reduced-regression half
	Fold  int
	Cause error
}

func (e *RegressionFailureError) Error() string {
	return fmt.Sprintf("vimpgo: learner failed on half %d, fold %d: %v", e.Half, e.Fold, e.Cause)
}

// Unwrap exposes the learner's own error for errors.Is/As.
func (e *RegressionFailureError) Unwrap() error {
	return e.Cause
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *RegressionFailureError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("half", e.Half).
		Int("fold", e.Fold).
		AnErr("cause", e.Cause).
		Str("type", "RegressionFailureError")
}

// NewRegressionFailureError creates a new RegressionFailureError with a stack trace.
func NewRegressionFailureError(half, fold int, cause error) error {
	err := &RegressionFailureError{Half: half, Fold: fold, Cause: cause}
	return errors.WithStack(err)
}
