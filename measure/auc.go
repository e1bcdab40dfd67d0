package measure

import (
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// auc measures predictiveness as the area under the ROC curve: the
// probability that a randomly drawn case receives a higher prediction than a
// randomly drawn control, ties counting one half. The influence curve is the
// two-sample U-statistic projection: cases contribute through the control
// placement of their score, controls through the case placement of theirs.
type auc struct{}

// NewAUC returns the AUC measure for binary outcomes.
func NewAUC() Measure { return auc{} }

func (auc) Type() Type         { return AUC }
func (auc) Bounded() bool      { return true }
func (auc) NullValue() float64 { return 0 }

func (auc) Predictiveness(y, pred, w []float64) (float64, []float64, error) {
	const op = "measure.AUC"
	wn, err := checkInputs(op, y, pred, w)
	if err != nil {
		return 0, nil, err
	}
	if err := checkBinary(op, y); err != nil {
		return 0, nil, err
	}

	n := len(y)
	var sumCase, sumControl float64
	for i := range y {
		if y[i] == 1 {
			sumCase += wn[i]
		} else {
			sumControl += wn[i]
		}
	}
	if sumCase <= degenerateEps || sumControl <= degenerateEps {
		return 0, nil, errors.NewDegenerateModelError("auc", 0)
	}

	// placeInControls[i]: weighted fraction of controls scored below case i.
	// placeInCases[j]: weighted fraction of cases scored above control j.
	placeInControls := make([]float64, n)
	placeInCases := make([]float64, n)
	for i := range y {
		if y[i] != 1 {
			continue
		}
		var below float64
		for j := range y {
			if y[j] != 0 {
				continue
			}
			switch {
			case pred[j] < pred[i]:
				below += wn[j]
			case pred[j] == pred[i]:
				below += 0.5 * wn[j]
			}
			switch {
			case pred[i] > pred[j]:
				placeInCases[j] += wn[i]
			case pred[i] == pred[j]:
				placeInCases[j] += 0.5 * wn[i]
			}
		}
		placeInControls[i] = below / sumControl
	}
	for j := range y {
		if y[j] == 0 {
			placeInCases[j] /= sumCase
		}
	}

	var est float64
	for i := range y {
		if y[i] == 1 {
			est += wn[i] * placeInControls[i]
		}
	}
	est /= sumCase

	total := sumCase + sumControl
	pCase := sumCase / total
	pControl := sumControl / total

	ic := make([]float64, n)
	for i := range ic {
		if y[i] == 1 {
			ic[i] = wn[i] * (placeInControls[i] - est) / pCase
		} else {
			ic[i] = wn[i] * (placeInCases[i] - est) / pControl
		}
	}

	return est, ic, nil
}
