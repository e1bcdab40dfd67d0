package measure

// accuracy measures predictiveness as the weighted proportion of outcomes
// classified correctly when predictions are thresholded at 0.5. The
// functional is a mean, so the influence curve is the centered indicator.
type accuracy struct{}

// NewAccuracy returns the classification-accuracy measure for binary outcomes.
func NewAccuracy() Measure { return accuracy{} }

func (accuracy) Type() Type         { return Accuracy }
func (accuracy) Bounded() bool      { return true }
func (accuracy) NullValue() float64 { return 0 }

func (accuracy) Predictiveness(y, pred, w []float64) (float64, []float64, error) {
	const op = "measure.Accuracy"
	wn, err := checkInputs(op, y, pred, w)
	if err != nil {
		return 0, nil, err
	}
	if err := checkBinary(op, y); err != nil {
		return 0, nil, err
	}

	n := len(y)
	correct := make([]float64, n)
	for i := range y {
		class := 0.0
		if pred[i] > 0.5 {
			class = 1.0
		}
		if class == y[i] {
			correct[i] = 1
		}
	}
	est := weightedMean(correct, wn)

	ic := make([]float64, n)
	for i := range ic {
		ic[i] = wn[i] * (correct[i] - est)
	}

	return est, ic, nil
}
