package measure

// averageValue measures predictiveness as the mean outcome harvested under
// the plug-in rule that selects observations whose prediction exceeds 0.5.
// The functional is a mean, so the influence curve is the centered term.
type averageValue struct{}

// NewAverageValue returns the average-value-under-rule measure.
func NewAverageValue() Measure { return averageValue{} }

func (averageValue) Type() Type         { return AverageValue }
func (averageValue) Bounded() bool      { return true }
func (averageValue) NullValue() float64 { return 0 }

func (averageValue) Predictiveness(y, pred, w []float64) (float64, []float64, error) {
	const op = "measure.AverageValue"
	wn, err := checkInputs(op, y, pred, w)
	if err != nil {
		return 0, nil, err
	}
	if err := checkBinary(op, y); err != nil {
		return 0, nil, err
	}

	n := len(y)
	harvested := make([]float64, n)
	for i := range y {
		if pred[i] > 0.5 {
			harvested[i] = y[i]
		}
	}
	est := weightedMean(harvested, wn)

	ic := make([]float64, n)
	for i := range ic {
		ic[i] = wn[i] * (harvested[i] - est)
	}

	return est, ic, nil
}
