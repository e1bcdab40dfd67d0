package estimator

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/vimpgo/core/model"
	"github.com/YuminosukeSato/vimpgo/core/parallel"
	"github.com/YuminosukeSato/vimpgo/folds"
	"github.com/YuminosukeSato/vimpgo/linear"
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
	vimlog "github.com/YuminosukeSato/vimpgo/pkg/log"
)

// EstimateCrossFit computes cross-fitted importance by driving the Learner
// over a nested fold assignment: the full regression is cross-fitted on one
// outer half, the reduced regression (features withheld) on the other, and
// every prediction used for estimation comes from a model that never saw the
// observation it predicts.
func (e *Estimator) EstimateCrossFit(y []float64, X mat.Matrix, features []int) (*Estimate, error) {
	const op = "estimator.EstimateCrossFit"
	start := time.Now()

	if err := e.checkConfig(op); err != nil {
		return nil, err
	}
	if e.v < 2 {
		return nil, errors.NewInvalidInputError(op, "fold count must be at least 2")
	}

	rows, cols := X.Dims()
	if len(y) != rows {
		return nil, errors.NewLengthMismatchError(op, "outcome", rows, len(y))
	}
	if err := checkFeatures(op, features, cols); err != nil {
		return nil, err
	}
	if e.weights != nil && len(e.weights) != len(y) {
		return nil, errors.NewLengthMismatchError(op, "weights", len(y), len(e.weights))
	}
	if e.ipc != nil {
		if err := e.ipc.validate(op, len(y)); err != nil {
			return nil, err
		}
	}

	yk, Xk, keep, err := e.cleanRows(op, y, X)
	if err != nil {
		return nil, err
	}

	nested := e.nested
	if nested == nil {
		nested, err = folds.NewNested(yk, e.v, e.stratified, rand.NewPCG(e.seed, e.seed))
		if err != nil {
			return nil, err
		}
	} else if nested.N() != len(yk) {
		return nil, errors.NewLengthMismatchError(op, "fold assignment", len(yk), nested.N())
	}

	factory := e.factory
	if factory == nil {
		factory = func() model.Learner { return linear.NewLeastSquares() }
	}

	v := nested.V()
	designs := [2]mat.Matrix{Xk, withholdColumns(Xk, features)}
	fits := [2][][]float64{
		make([][]float64, v),
		make([][]float64, v),
	}

	// 2V independent fits; parallel.Map surfaces the lowest failing task.
	err = parallel.Map(2*v, func(task int) error {
		h := task / v
		fold := task % v
		preds, fitErr := fitFold(factory, designs[h], yk, nested, h, fold)
		if fitErr != nil {
			return errors.NewRegressionFailureError(h, fold, fitErr)
		}
		fits[h][fold] = preds
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := e.aggregate(op, yk, fits[0], fits[1], nested, keep, features)
	if err != nil {
		return nil, err
	}

	e.logger.Info("cross-fitted importance estimated",
		vimlog.OperationKey, "estimate_cross_fit",
		vimlog.MeasureKey, e.measure.Type().String(),
		vimlog.FeaturesKey, features,
		vimlog.SamplesKey, len(yk),
		vimlog.CovariatesKey, cols,
		vimlog.OuterFoldsKey, 2,
		vimlog.InnerFoldsKey, v,
		vimlog.StratifiedKey, e.stratified,
		vimlog.SeedKey, e.seed,
		vimlog.ScaleKey, e.scale.String(),
		vimlog.EstimateKey, result.PointEstimate(),
		vimlog.StandardErrorKey, result.StandardError(),
		vimlog.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// EstimateCrossFitFromFits computes cross-fitted importance from externally
// supplied per-fold fitted values: fullFits[v] holds held-out predictions for
// inner fold v of the first outer half, reducedFits[v] for the second. The
// Learner is never invoked on this path. Missing-value removal is not
// available here: dropping observations would desynchronize the supplied
// fitted values from the fold assignment, so WithNaRM is rejected and NaN
// outcomes fail.
func (e *Estimator) EstimateCrossFitFromFits(y []float64, fullFits, reducedFits [][]float64, nested *folds.Nested, features []int) (*Estimate, error) {
	const op = "estimator.EstimateCrossFitFromFits"

	if err := e.checkConfig(op); err != nil {
		return nil, err
	}
	if e.naRM {
		return nil, errors.NewInvalidInputError(op, "missing-value removal cannot be combined with supplied fitted values")
	}
	if err := checkFeatures(op, features, -1); err != nil {
		return nil, err
	}
	if nested == nil {
		return nil, errors.NewInvalidInputError(op, "a nested fold assignment is required with supplied fitted values")
	}
	if nested.N() != len(y) {
		return nil, errors.NewLengthMismatchError(op, "fold assignment", len(y), nested.N())
	}
	if err := errors.CheckNumericalStability(op, y); err != nil {
		return nil, err
	}
	if e.weights != nil && len(e.weights) != len(y) {
		return nil, errors.NewLengthMismatchError(op, "weights", len(y), len(e.weights))
	}
	if e.ipc != nil {
		if err := e.ipc.validate(op, len(y)); err != nil {
			return nil, err
		}
	}

	keep := make([]int, len(y))
	for i := range keep {
		keep[i] = i
	}
	return e.aggregate(op, y, fullFits, reducedFits, nested, keep, features)
}

// aggregate combines per-fold predictions into the overall estimate. Fold
// contributions are weighted by fold size; the two halves contribute
// independent influence curves, so the variance is the sum of the per-half
// variances scaled by the per-half sample sizes.
func (e *Estimator) aggregate(op string, y []float64, fullFits, reducedFits [][]float64, nested *folds.Nested, keep []int, features []int) (*Estimate, error) {
	halves := [2][][]float64{fullFits, reducedFits}

	var vHalf [2]float64
	var icHalf [2][]float64
	var fitsFlat [2][]float64

	for h := 0; h < 2; h++ {
		inner := nested.Inner(h)
		fits := halves[h]
		if len(fits) != inner.V() {
			return nil, errors.NewLengthMismatchError(op, "per-fold fitted values", inner.V(), len(fits))
		}

		nH := nested.HalfSize(h)
		order := make([]int, 0, nH)
		ic := make([]float64, 0, nH)
		flat := make([]float64, 0, nH)
		var estH float64

		for v := 0; v < inner.V(); v++ {
			foldIdx := inner.Fold(v)
			preds := fits[v]
			if len(preds) != len(foldIdx) {
				return nil, errors.NewLengthMismatchError(op, "fold predictions", len(foldIdx), len(preds))
			}

			yv := make([]float64, len(foldIdx))
			var wv []float64
			if e.weights != nil {
				wv = make([]float64, len(foldIdx))
			}
			for i, idx := range foldIdx {
				yv[i] = y[idx]
				if wv != nil {
					wv[i] = e.weights[keep[idx]]
				}
			}

			estV, icV, err := e.measure.Predictiveness(yv, preds, wv)
			if err != nil {
				return nil, err
			}

			estH += float64(len(foldIdx)) / float64(nH) * estV
			ic = append(ic, icV...)
			flat = append(flat, preds...)
			order = append(order, foldIdx...)
		}

		// Map fold order through keep so IPC inputs stay aligned to the
		// original observation indices.
		orig := make([]int, len(order))
		for i, idx := range order {
			orig[i] = keep[idx]
		}
		corrected, err := applyIPC(op, ic, e.ipc, orig)
		if err != nil {
			return nil, err
		}

		vHalf[h] = estH
		icHalf[h] = corrected
		fitsFlat[h] = flat
	}

	n0 := nested.HalfSize(0)
	n1 := nested.HalfSize(1)
	plugin := vHalf[0] - vHalf[1]
	est := plugin + stat.Mean(icHalf[0], nil) - stat.Mean(icHalf[1], nil)
	se := math.Sqrt(stat.Variance(icHalf[0], nil)/float64(n0) + stat.Variance(icHalf[1], nil)/float64(n1))

	// The stored influence curve keeps the per-observation correspondence:
	// full-half contributions first, reduced-half contributions negated.
	ic := make([]float64, 0, n0+n1)
	ic = append(ic, icHalf[0]...)
	for _, v := range icHalf[1] {
		ic = append(ic, -v)
	}

	if n0+n1 < smallSampleMin {
		errors.Warn(errors.NewSmallSampleWarning(op, n0+n1, smallSampleMin))
	}

	return e.finish(features, est, plugin, ic, se, fitsFlat[0], fitsFlat[1], nested, n0+n1)
}

// cleanRows applies missing-value handling to the outcome and design matrix.
func (e *Estimator) cleanRows(op string, y []float64, X mat.Matrix) ([]float64, mat.Matrix, []int, error) {
	n, p := X.Dims()

	if !e.naRM {
		if err := errors.CheckNumericalStability(op, y); err != nil {
			return nil, nil, nil, err
		}
		for i := 0; i < n; i++ {
			for j := 0; j < p; j++ {
				if err := errors.CheckScalar(op, X.At(i, j)); err != nil {
					return nil, nil, nil, err
				}
			}
		}
		keep := make([]int, n)
		for i := range keep {
			keep[i] = i
		}
		return y, X, keep, nil
	}

	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		hasNaN := false
		for j := 0; j < p; j++ {
			if math.IsNaN(X.At(i, j)) {
				hasNaN = true
				break
			}
		}
		if !hasNaN {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, nil, nil, errors.NewInvalidInputError(op, "no observations remain after missing-value removal")
	}

	yk := make([]float64, len(keep))
	Xk := mat.NewDense(len(keep), p, nil)
	for pos, idx := range keep {
		yk[pos] = y[idx]
		for j := 0; j < p; j++ {
			Xk.Set(pos, j, X.At(idx, j))
		}
	}
	return yk, Xk, keep, nil
}

// fitFold trains a fresh learner on the held-in rows of the fold and returns
// predictions for the held-out rows. Panics in third-party learners are
// recovered into errors.
func fitFold(factory model.LearnerFactory, design mat.Matrix, y []float64, nested *folds.Nested, h, fold int) ([]float64, error) {
	inner := nested.Inner(h)
	test := inner.Fold(fold)

	testSet := make(map[int]bool, len(test))
	for _, idx := range test {
		testSet[idx] = true
	}
	train := make([]int, 0, nested.HalfSize(h)-len(test))
	for _, idx := range nested.Half(h) {
		if !testSet[idx] {
			train = append(train, idx)
		}
	}

	var preds []float64
	err := errors.SafeExecute("estimator.fitFold", func() error {
		learner := factory()
		if err := learner.Fit(takeRows(design, train), takeColumn(y, train)); err != nil {
			return err
		}

		out, err := learner.Predict(takeRows(design, test))
		if err != nil {
			return err
		}
		r, c := out.Dims()
		if r != len(test) || c != 1 {
			return errors.NewLengthMismatchError("estimator.fitFold", "learner predictions", len(test), r*c)
		}

		preds = make([]float64, r)
		for i := 0; i < r; i++ {
			preds[i] = out.At(i, 0)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}

// takeRows extracts the given rows of X into a dense matrix.
func takeRows(X mat.Matrix, idx []int) *mat.Dense {
	_, p := X.Dims()
	out := mat.NewDense(len(idx), p, nil)
	for pos, i := range idx {
		for j := 0; j < p; j++ {
			out.Set(pos, j, X.At(i, j))
		}
	}
	return out
}

// takeColumn extracts the given entries of y as an n x 1 matrix.
func takeColumn(y []float64, idx []int) *mat.Dense {
	out := mat.NewDense(len(idx), 1, nil)
	for pos, i := range idx {
		out.Set(pos, 0, y[i])
	}
	return out
}

// withholdColumns copies X without the given feature columns.
func withholdColumns(X mat.Matrix, features []int) *mat.Dense {
	n, p := X.Dims()
	drop := make(map[int]bool, len(features))
	for _, f := range features {
		drop[f] = true
	}

	out := mat.NewDense(n, p-len(features), nil)
	for i := 0; i < n; i++ {
		col := 0
		for j := 0; j < p; j++ {
			if drop[j] {
				continue
			}
			out.Set(i, col, X.At(i, j))
			col++
		}
	}
	return out
}
