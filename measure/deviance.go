package measure

import (
	"math"

	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// deviance measures predictiveness as 1 − CE(pred)/H(ȳ), the binomial
// cross-entropy of the predictions against the entropy of the marginal
// outcome distribution. Same ratio-functional influence-curve structure as
// R-squared with deviance in place of squared error.
type deviance struct{}

// NewDeviance returns the deviance measure for binary outcomes.
func NewDeviance() Measure { return deviance{} }

func (deviance) Type() Type         { return Deviance }
func (deviance) Bounded() bool      { return true }
func (deviance) NullValue() float64 { return 0 }

func (deviance) Predictiveness(y, pred, w []float64) (float64, []float64, error) {
	const op = "measure.Deviance"
	wn, err := checkInputs(op, y, pred, w)
	if err != nil {
		return 0, nil, err
	}
	if err := checkBinary(op, y); err != nil {
		return 0, nil, err
	}

	n := len(y)
	pBar := weightedMean(y, wn)

	// Marginal entropy denominator; zero when the sample holds one class.
	denom := -2 * (pBar*errors.StabilizeLog(pBar) + (1-pBar)*errors.StabilizeLog(1-pBar))
	if pBar <= degenerateEps || pBar >= 1-degenerateEps || denom <= degenerateEps {
		return 0, nil, errors.NewDegenerateModelError("deviance", denom)
	}

	nll := make([]float64, n)
	for i := range y {
		nll[i] = -2 * (y[i]*errors.StabilizeLog(pred[i]) + (1-y[i])*errors.StabilizeLog(1-pred[i]))
	}
	ce := weightedMean(nll, wn)

	est := 1 - ce/denom

	// d/dp of −2(p log p + (1−p) log(1−p)) is −2 logit(p); the denominator's
	// influence contribution is that derivative times the centered outcome.
	dDenom := -2 * math.Log(pBar/(1-pBar))

	ic := make([]float64, n)
	for i := range ic {
		icNum := nll[i] - ce
		icDen := dDenom * (y[i] - pBar)
		ic[i] = wn[i] * (-icNum/denom + ce*icDen/(denom*denom))
	}

	return est, ic, nil
}
