// Package estimator computes influence-curve-based estimates of variable
// importance: the drop in predictive performance when a covariate group is
// withheld from the regression.
//
// Two estimation paths are provided. EstimateOneFold consumes externally
// fitted values and performs the one-step correction and inference on a
// single sample. EstimateCrossFit additionally drives a Learner across a
// nested fold assignment (outer sample split, inner V-fold cross-fitting) so
// that model fitting and inference never reuse the same observations.
package estimator

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/vimpgo/core/model"
	"github.com/YuminosukeSato/vimpgo/folds"
	"github.com/YuminosukeSato/vimpgo/measure"
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
	vimlog "github.com/YuminosukeSato/vimpgo/pkg/log"
)

// smallSampleMin is the sample size below which a SmallSampleWarning is
// raised for normal-approximation inference.
const smallSampleMin = 30

// Estimator computes importance estimates for one performance measure under
// one inference configuration. It holds no mutable state across calls; each
// call is a pure function of its inputs.
type Estimator struct {
	measure    measure.Measure
	alpha      float64
	delta      float64
	testDelta  bool
	scale      Scale
	v          int
	stratified bool
	naRM       bool
	weights    []float64
	ipc        *IPCConfig
	factory    model.LearnerFactory
	seed       uint64
	nested     *folds.Nested
	logger     *slog.Logger
}

// New creates an Estimator for the given measure.
func New(m measure.Measure, opts ...Option) *Estimator {
	e := &Estimator{
		measure: m,
		alpha:   0.05,
		scale:   ScaleIdentity,
		v:       5,
		seed:    1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// checkConfig validates option values common to both paths.
func (e *Estimator) checkConfig(op string) error {
	if e.measure == nil {
		return errors.NewInvalidInputError(op, "no measure configured")
	}
	if e.alpha <= 0 || e.alpha >= 1 {
		return errors.NewInvalidInputError(op, "alpha must be strictly between 0 and 1")
	}
	return nil
}

// checkFeatures validates a covariate group. p is the number of covariate
// columns when known, or a negative value when fitted values were supplied
// externally and the full covariate set is not visible to the estimator.
func checkFeatures(op string, features []int, p int) error {
	if len(features) == 0 {
		return errors.NewInvalidInputError(op, "feature set must not be empty")
	}
	if !sort.IntsAreSorted(features) {
		return errors.NewInvalidInputError(op, "feature set must be sorted ascending")
	}
	for i, f := range features {
		if f < 0 {
			return errors.NewInvalidInputError(op, "feature indices must be non-negative")
		}
		if i > 0 && features[i-1] == f {
			return errors.NewInvalidInputError(op, "feature set must not contain duplicates")
		}
		if p >= 0 && f >= p {
			return errors.NewInvalidInputError(op, "feature index exceeds the covariate count")
		}
	}
	if p >= 0 && len(features) >= p {
		return errors.NewInvalidInputError(op, "feature set must be a strict subset of the covariates")
	}
	return nil
}

// EstimateOneFold computes importance from externally fitted values on a
// single sample: the full and reduced regressions were fit elsewhere and
// their held-out predictions are supplied directly.
func (e *Estimator) EstimateOneFold(y, full, reduced []float64, features []int) (*Estimate, error) {
	const op = "estimator.EstimateOneFold"

	if err := e.checkConfig(op); err != nil {
		return nil, err
	}
	if err := checkFeatures(op, features, -1); err != nil {
		return nil, err
	}

	n := len(y)
	if len(full) != n {
		return nil, errors.NewLengthMismatchError(op, "full predictions", n, len(full))
	}
	if len(reduced) != n {
		return nil, errors.NewLengthMismatchError(op, "reduced predictions", n, len(reduced))
	}
	if e.weights != nil && len(e.weights) != n {
		return nil, errors.NewLengthMismatchError(op, "weights", n, len(e.weights))
	}
	if e.ipc != nil {
		if err := e.ipc.validate(op, n); err != nil {
			return nil, err
		}
	}

	yk, fullK, reducedK, wk, keep, err := e.clean(op, y, full, reduced)
	if err != nil {
		return nil, err
	}
	// The influence-curve variance needs at least two contributors.
	if len(yk) < 2 {
		return nil, errors.NewInvalidInputError(op, "at least two observations must contribute to the influence curve")
	}

	plugin, ic, err := measure.Importance(e.measure, yk, fullK, reducedK, wk)
	if err != nil {
		return nil, err
	}

	ic, err = applyIPC(op, ic, e.ipc, keep)
	if err != nil {
		return nil, err
	}

	kept := len(yk)
	est := plugin + stat.Mean(ic, nil)
	se := math.Sqrt(stat.Variance(ic, nil) / float64(kept))

	if kept < smallSampleMin {
		errors.Warn(errors.NewSmallSampleWarning(op, kept, smallSampleMin))
	}

	result, err := e.finish(features, est, plugin, ic, se, fullK, reducedK, nil, kept)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("one-fold importance estimated",
		vimlog.OperationKey, "estimate_one_fold",
		vimlog.MeasureKey, e.measure.Type().String(),
		vimlog.FeaturesKey, features,
		vimlog.SamplesKey, kept,
		vimlog.ScaleKey, e.scale.String(),
		vimlog.EstimateKey, est,
		vimlog.StandardErrorKey, se,
	)
	return result, nil
}

// clean aligns the vectors and applies missing-value handling. It returns
// the retained vectors, the (possibly nil) retained weights, and the map
// from retained position to original observation index.
func (e *Estimator) clean(op string, y, full, reduced []float64) ([]float64, []float64, []float64, []float64, []int, error) {
	n := len(y)

	if !e.naRM {
		if err := errors.CheckNumericalStability(op, y); err != nil {
			return nil, nil, nil, nil, nil, err
		}
		if err := errors.CheckNumericalStability(op, full); err != nil {
			return nil, nil, nil, nil, nil, err
		}
		if err := errors.CheckNumericalStability(op, reduced); err != nil {
			return nil, nil, nil, nil, nil, err
		}
		keep := make([]int, n)
		for i := range keep {
			keep[i] = i
		}
		return y, full, reduced, e.weights, keep, nil
	}

	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) || math.IsNaN(full[i]) || math.IsNaN(reduced[i]) {
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == 0 {
		return nil, nil, nil, nil, nil, errors.NewInvalidInputError(op, "no observations remain after missing-value removal")
	}

	yk := make([]float64, len(keep))
	fullK := make([]float64, len(keep))
	reducedK := make([]float64, len(keep))
	var wk []float64
	if e.weights != nil {
		wk = make([]float64, len(keep))
	}
	for pos, idx := range keep {
		yk[pos] = y[idx]
		fullK[pos] = full[idx]
		reducedK[pos] = reduced[idx]
		if wk != nil {
			wk[pos] = e.weights[idx]
		}
	}

	// Removal must leave the retained vectors finite; Inf is never dropped.
	if err := errors.CheckNumericalStability(op, yk); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if err := errors.CheckNumericalStability(op, fullK); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if err := errors.CheckNumericalStability(op, reducedK); err != nil {
		return nil, nil, nil, nil, nil, err
	}

	return yk, fullK, reducedK, wk, keep, nil
}

// finish performs the shared inference steps and assembles the Estimate.
func (e *Estimator) finish(features []int, est, naive float64, ic []float64, se float64, fullFits, reducedFits []float64, nested *folds.Nested, n int) (*Estimate, error) {
	ci, err := confidenceInterval(est, se, e.alpha, e.scale, e.measure.Bounded())
	if err != nil {
		return nil, err
	}

	var p *float64
	if e.testDelta {
		pv, err := pValue(est, se, e.delta, e.scale, e.measure.Bounded())
		if err != nil {
			return nil, err
		}
		p = &pv
	}

	featureCopy := make([]int, len(features))
	copy(featureCopy, features)
	icCopy := make([]float64, len(ic))
	copy(icCopy, ic)
	fullCopy := make([]float64, len(fullFits))
	copy(fullCopy, fullFits)
	reducedCopy := make([]float64, len(reducedFits))
	copy(reducedCopy, reducedFits)

	return &Estimate{
		featureSet:     featureCopy,
		pointEstimate:  est,
		naiveEstimate:  naive,
		influenceCurve: icCopy,
		standardError:  se,
		ci:             ci,
		pValue:         p,
		fullFits:       fullCopy,
		reducedFits:    reducedCopy,
		measureType:    e.measure.Type(),
		foldAssignment: nested,
		n:              n,
		scale:          e.scale,
	}, nil
}
