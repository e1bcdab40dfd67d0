// Package linear provides an ordinary least squares learner. It is the
// default regression backend for the cross-fitted estimator and a reference
// implementation of the core/model.Learner contract; any external backend can
// replace it.
package linear

import (
	cockroacherrors "github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vimpgo/core/model"
	"github.com/YuminosukeSato/vimpgo/core/parallel"
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// LeastSquares is an ordinary least squares regression fitted by the normal
// equations w = (XᵀX)⁻¹ Xᵀy with an intercept term.
type LeastSquares struct {
	model.BaseEstimator
	weights   *mat.VecDense
	intercept float64
	nFeatures int
}

var _ model.Learner = (*LeastSquares)(nil)

// NewLeastSquares creates an unfitted least squares learner.
func NewLeastSquares() *LeastSquares {
	return &LeastSquares{}
}

// parallelThreshold is the row count below which the design matrix is built
// sequentially.
const parallelThreshold = 1000

// Fit solves the normal equations for X (n x p) and y (n x 1).
func (ls *LeastSquares) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewInvalidInputError("LeastSquares.Fit", "empty data")
	}
	if ry != r {
		return errors.NewLengthMismatchError("LeastSquares.Fit", "outcome", r, ry)
	}
	if cy != 1 {
		return errors.NewInvalidInputError("LeastSquares.Fit", "y must be a column vector")
	}

	ls.nFeatures = c

	// Augment X with a leading column of ones for the intercept.
	augmented := mat.NewDense(r, c+1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			augmented.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				augmented.Set(i, j+1, X.At(i, j))
			}
		}
	})

	var xt mat.Dense
	xt.CloneFrom(augmented.T())

	var xtx mat.Dense
	xtx.Mul(&xt, augmented)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return cockroacherrors.Wrap(err, "least squares: singular normal matrix")
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var xty mat.VecDense
	xty.MulVec(&xt, yVec)

	solved := mat.NewVecDense(c+1, nil)
	solved.MulVec(&xtxInv, &xty)

	ls.intercept = solved.AtVec(0)
	ls.weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		ls.weights.SetVec(i, solved.AtVec(i+1))
	}

	ls.SetFitted()
	return nil
}

// Predict returns fitted values for X as an n x 1 matrix.
func (ls *LeastSquares) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !ls.IsFitted() {
		return nil, errors.NewInvalidInputError("LeastSquares.Predict", "model is not fitted; call Fit first")
	}

	r, c := X.Dims()
	if c != ls.nFeatures {
		return nil, errors.NewLengthMismatchError("LeastSquares.Predict", "feature columns", ls.nFeatures, c)
	}

	predictions := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			sum := ls.intercept
			for j := 0; j < c; j++ {
				sum += X.At(i, j) * ls.weights.AtVec(j)
			}
			predictions.Set(i, 0, sum)
		}
	})

	return predictions, nil
}

// Weights returns the fitted coefficients, excluding the intercept.
func (ls *LeastSquares) Weights() []float64 {
	if ls.weights == nil {
		return nil
	}
	out := make([]float64, ls.weights.Len())
	for i := range out {
		out[i] = ls.weights.AtVec(i)
	}
	return out
}

// Intercept returns the fitted intercept.
func (ls *LeastSquares) Intercept() float64 {
	return ls.intercept
}
