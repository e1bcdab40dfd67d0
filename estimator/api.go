package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vimpgo/measure"
)

// The package-level wrappers parameterize the shared estimation core per
// performance measure. The plain form consumes externally fitted values on
// one sample; the CV form cross-fits a Learner over a nested fold assignment.

// RSquared estimates R-squared importance from externally fitted values.
func RSquared(y, full, reduced []float64, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewRSquared(), opts...).EstimateOneFold(y, full, reduced, features)
}

// RSquaredCV estimates cross-fitted R-squared importance, fitting the
// regressions with the configured Learner.
func RSquaredCV(y []float64, X mat.Matrix, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewRSquared(), opts...).EstimateCrossFit(y, X, features)
}

// Deviance estimates deviance importance from externally fitted values.
func Deviance(y, full, reduced []float64, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewDeviance(), opts...).EstimateOneFold(y, full, reduced, features)
}

// DevianceCV estimates cross-fitted deviance importance.
func DevianceCV(y []float64, X mat.Matrix, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewDeviance(), opts...).EstimateCrossFit(y, X, features)
}

// Accuracy estimates classification-accuracy importance from externally
// fitted values.
func Accuracy(y, full, reduced []float64, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewAccuracy(), opts...).EstimateOneFold(y, full, reduced, features)
}

// AccuracyCV estimates cross-fitted classification-accuracy importance.
func AccuracyCV(y []float64, X mat.Matrix, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewAccuracy(), opts...).EstimateCrossFit(y, X, features)
}

// AUC estimates AUC importance from externally fitted values.
func AUC(y, full, reduced []float64, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewAUC(), opts...).EstimateOneFold(y, full, reduced, features)
}

// AUCCV estimates cross-fitted AUC importance.
func AUCCV(y []float64, X mat.Matrix, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewAUC(), opts...).EstimateCrossFit(y, X, features)
}

// AverageValue estimates average-value importance from externally fitted
// values.
func AverageValue(y, full, reduced []float64, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewAverageValue(), opts...).EstimateOneFold(y, full, reduced, features)
}

// AverageValueCV estimates cross-fitted average-value importance.
func AverageValueCV(y []float64, X mat.Matrix, features []int, opts ...Option) (*Estimate, error) {
	return New(measure.NewAverageValue(), opts...).EstimateCrossFit(y, X, features)
}
