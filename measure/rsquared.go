package measure

import (
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// rSquared measures predictiveness as 1 − MSE(pred)/Var(y). Its influence
// curve is the delta-method combination of the influence curves of the two
// mean-squared functionals in the ratio.
type rSquared struct{}

// NewRSquared returns the R-squared measure.
func NewRSquared() Measure { return rSquared{} }

func (rSquared) Type() Type         { return RSquared }
func (rSquared) Bounded() bool      { return true }
func (rSquared) NullValue() float64 { return 0 }

func (rSquared) Predictiveness(y, pred, w []float64) (float64, []float64, error) {
	const op = "measure.RSquared"
	wn, err := checkInputs(op, y, pred, w)
	if err != nil {
		return 0, nil, err
	}

	n := len(y)
	yBar := weightedMean(y, wn)

	sqErr := make([]float64, n)
	sqDev := make([]float64, n)
	for i := range y {
		r := y[i] - pred[i]
		d := y[i] - yBar
		sqErr[i] = r * r
		sqDev[i] = d * d
	}
	mse := weightedMean(sqErr, wn)
	variance := weightedMean(sqDev, wn)

	if variance <= degenerateEps {
		return 0, nil, errors.NewDegenerateModelError("r_squared", variance)
	}

	est := 1 - mse/variance

	// Delta method on 1 − num/den: gradient (−1/den, num/den²) applied to
	// the centered contributions of the two functionals.
	ic := make([]float64, n)
	for i := range ic {
		icNum := sqErr[i] - mse
		icDen := sqDev[i] - variance
		ic[i] = wn[i] * (-icNum/variance + mse*icDen/(variance*variance))
	}

	return est, ic, nil
}
