package estimator

import (
	"log/slog"

	"github.com/YuminosukeSato/vimpgo/core/model"
	"github.com/YuminosukeSato/vimpgo/folds"
)

// Option is a function that configures an Estimator.
type Option func(*Estimator)

// WithAlpha sets the significance level; intervals are reported at level
// 1 − alpha. Default 0.05.
func WithAlpha(alpha float64) Option {
	return func(e *Estimator) {
		e.alpha = alpha
	}
}

// WithDelta sets the null threshold and requests a one-sided test of
// importance exceeding it.
func WithDelta(delta float64) Option {
	return func(e *Estimator) {
		e.delta = delta
		e.testDelta = true
	}
}

// WithScale sets the scale for interval construction. Default ScaleIdentity.
func WithScale(scale Scale) Option {
	return func(e *Estimator) {
		e.scale = scale
	}
}

// WithFolds sets the number of inner cross-fitting folds per half. Default 5.
func WithFolds(v int) Option {
	return func(e *Estimator) {
		e.v = v
	}
}

// WithStratified stratifies fold generation by the outcome class.
func WithStratified(stratified bool) Option {
	return func(e *Estimator) {
		e.stratified = stratified
	}
}

// WithNaRM drops observations with a missing outcome or prediction instead
// of failing on them.
func WithNaRM(naRM bool) Option {
	return func(e *Estimator) {
		e.naRM = naRM
	}
}

// WithWeights sets per-observation sampling weights.
func WithWeights(w []float64) Option {
	return func(e *Estimator) {
		e.weights = w
	}
}

// WithIPC enables the inverse-probability-of-coarsening correction.
func WithIPC(cfg IPCConfig) Option {
	return func(e *Estimator) {
		e.ipc = &cfg
	}
}

// WithLearner sets the regression backend for the cross-fitted path. Default
// is the package linear ordinary-least-squares learner.
func WithLearner(factory model.LearnerFactory) Option {
	return func(e *Estimator) {
		e.factory = factory
	}
}

// WithSeed seeds fold generation. Estimation never draws from global
// randomness; the same seed and inputs reproduce the estimate exactly.
func WithSeed(seed uint64) Option {
	return func(e *Estimator) {
		e.seed = seed
	}
}

// WithNested supplies a pre-drawn nested fold assignment, overriding fold
// generation.
func WithNested(nested *folds.Nested) Option {
	return func(e *Estimator) {
		e.nested = nested
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		e.logger = logger
	}
}
