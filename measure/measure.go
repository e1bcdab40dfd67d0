// Package measure implements the performance measures that define variable
// importance, together with their efficient influence curves.
//
// Each measure reports the predictiveness V(f) of a vector of fitted values f
// as a plug-in estimate plus per-observation influence-curve contributions.
// Importance of a covariate group is the difference in predictiveness between
// the regression using every covariate (full) and the regression withholding
// the group (reduced); the influence curve of the difference drives the
// one-step correction and the standard error in package estimator.
package measure

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// Type identifies a performance measure.
type Type int

const (
	// RSquared is one minus the ratio of mean squared error to outcome variance.
	RSquared Type = iota
	// Deviance is one minus the ratio of binomial deviance to marginal entropy.
	Deviance
	// Accuracy is the weighted proportion classified correctly at threshold 0.5.
	Accuracy
	// AUC is the area under the ROC curve (probability a case outranks a control).
	AUC
	// AverageValue is the mean outcome under the plug-in treatment rule.
	AverageValue
)

// String returns the snake_case name of the measure type.
func (t Type) String() string {
	switch t {
	case RSquared:
		return "r_squared"
	case Deviance:
		return "deviance"
	case Accuracy:
		return "accuracy"
	case AUC:
		return "auc"
	case AverageValue:
		return "average_value"
	default:
		return "unknown"
	}
}

// Measure is a performance measure with a known efficient influence curve.
type Measure interface {
	// Type identifies the measure.
	Type() Type

	// Bounded reports whether predictiveness lies in [0, 1]. Only bounded
	// measures admit logit-scale intervals.
	Bounded() bool

	// NullValue is the importance value under no association.
	NullValue() float64

	// Predictiveness returns the plug-in estimate of V(pred) and the
	// per-observation influence-curve contributions. Weights may be nil for
	// an unweighted sample; otherwise they are rescaled to mean one.
	Predictiveness(y, pred, w []float64) (float64, []float64, error)
}

// ForType returns the measure implementation for t.
func ForType(t Type) (Measure, error) {
	switch t {
	case RSquared:
		return NewRSquared(), nil
	case Deviance:
		return NewDeviance(), nil
	case Accuracy:
		return NewAccuracy(), nil
	case AUC:
		return NewAUC(), nil
	case AverageValue:
		return NewAverageValue(), nil
	default:
		return nil, errors.NewInvalidInputError("measure.ForType", "unknown measure type")
	}
}

// Importance returns the plug-in importance of the full regression over the
// reduced regression, the difference of their predictiveness values, and the
// influence-curve contributions of the difference, evaluated on one sample.
func Importance(m Measure, y, full, reduced, w []float64) (float64, []float64, error) {
	vFull, icFull, err := m.Predictiveness(y, full, w)
	if err != nil {
		return 0, nil, err
	}
	vReduced, icReduced, err := m.Predictiveness(y, reduced, w)
	if err != nil {
		return 0, nil, err
	}

	ic := make([]float64, len(icFull))
	for i := range ic {
		ic[i] = icFull[i] - icReduced[i]
	}
	return vFull - vReduced, ic, nil
}

// degenerateEps is the tolerance below which a denominator functional is
// treated as zero.
const degenerateEps = 1e-10

// checkInputs validates outcome, predictions and weights for a measure and
// returns the weights rescaled to mean one (uniform when w is nil).
func checkInputs(op string, y, pred, w []float64) ([]float64, error) {
	n := len(y)
	if n == 0 {
		return nil, errors.NewInvalidInputError(op, "empty outcome vector")
	}
	if len(pred) != n {
		return nil, errors.NewLengthMismatchError(op, "predictions", n, len(pred))
	}
	if err := errors.CheckNumericalStability(op, y); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability(op, pred); err != nil {
		return nil, err
	}

	norm := make([]float64, n)
	if w == nil {
		for i := range norm {
			norm[i] = 1
		}
		return norm, nil
	}
	if len(w) != n {
		return nil, errors.NewLengthMismatchError(op, "weights", n, len(w))
	}

	var sum float64
	for i, wi := range w {
		if math.IsNaN(wi) || math.IsInf(wi, 0) || wi < 0 {
			return nil, errors.NewInvalidInputError(op, "weights must be finite and non-negative")
		}
		sum += wi
		norm[i] = wi
	}
	if sum <= 0 {
		return nil, errors.NewInvalidInputError(op, "weights sum to zero")
	}
	scale := float64(n) / sum
	for i := range norm {
		norm[i] *= scale
	}
	return norm, nil
}

// checkBinary verifies that y contains only 0/1 labels.
func checkBinary(op string, y []float64) error {
	for _, yi := range y {
		if yi != 0 && yi != 1 {
			return errors.NewInvalidInputError(op, "outcome must be binary (0/1)")
		}
	}
	return nil
}

// weightedMean is stat.Mean with the package's normalized-weight convention.
func weightedMean(x, w []float64) float64 {
	return stat.Mean(x, w)
}
