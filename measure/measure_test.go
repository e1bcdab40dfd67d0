package measure

import (
	"math"
	"testing"

	cockroacherrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

func TestForTypeDispatch(t *testing.T) {
	for _, typ := range []Type{RSquared, Deviance, Accuracy, AUC, AverageValue} {
		m, err := ForType(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, m.Type())
		assert.True(t, m.Bounded())
		assert.Equal(t, 0.0, m.NullValue())
	}

	_, err := ForType(Type(99))
	assert.Error(t, err)
}

func TestRSquaredPredictiveness(t *testing.T) {
	tests := []struct {
		name string
		y    []float64
		pred []float64
		want float64
	}{
		{
			name: "perfect predictions",
			y:    []float64{1, 2, 3, 4},
			pred: []float64{1, 2, 3, 4},
			want: 1.0,
		},
		{
			name: "partial fit",
			y:    []float64{0, 1, 2, 3},
			pred: []float64{0.5, 1.5, 1.5, 2.5},
			// mse = 0.25, var = 1.25
			want: 0.8,
		},
		{
			name: "marginal mean prediction",
			y:    []float64{0, 1, 2, 3},
			pred: []float64{1.5, 1.5, 1.5, 1.5},
			want: 0.0,
		},
	}

	m := NewRSquared()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, ic, err := m.Predictiveness(tt.y, tt.pred, nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, est, 1e-12)
			require.Len(t, ic, len(tt.y))

			var mean float64
			for _, v := range ic {
				mean += v
			}
			mean /= float64(len(ic))
			assert.InDelta(t, 0, mean, 1e-12, "plug-in influence contributions are centered")
		})
	}
}

func TestRSquaredDegenerateOutcome(t *testing.T) {
	m := NewRSquared()
	_, _, err := m.Predictiveness([]float64{2, 2, 2, 2}, []float64{2, 2, 2, 2}, nil)
	require.Error(t, err)

	var degenerate *errors.DegenerateModelError
	assert.True(t, cockroacherrors.As(err, &degenerate))
}

func TestRSquaredWeightsMatchDuplication(t *testing.T) {
	m := NewRSquared()

	// Weight 2 on the first observation equals duplicating it.
	estW, _, err := m.Predictiveness(
		[]float64{0, 1, 3},
		[]float64{0.5, 1.5, 2.5},
		[]float64{2, 1, 1},
	)
	require.NoError(t, err)

	estDup, _, err := m.Predictiveness(
		[]float64{0, 0, 1, 3},
		[]float64{0.5, 0.5, 1.5, 2.5},
		nil,
	)
	require.NoError(t, err)

	assert.InDelta(t, estDup, estW, 1e-12)
}

func TestDeviancePredictiveness(t *testing.T) {
	m := NewDeviance()

	est, ic, err := m.Predictiveness(
		[]float64{0, 1, 0, 1},
		[]float64{0.2, 0.8, 0.4, 0.6},
		nil,
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.47055, est, 1e-4)
	require.Len(t, ic, 4)

	// One-class samples have zero marginal entropy.
	_, _, err = m.Predictiveness([]float64{1, 1, 1}, []float64{0.9, 0.8, 0.7}, nil)
	require.Error(t, err)
	var degenerate *errors.DegenerateModelError
	assert.True(t, cockroacherrors.As(err, &degenerate))

	// Non-binary outcomes are rejected.
	_, _, err = m.Predictiveness([]float64{0, 0.5, 1}, []float64{0.1, 0.5, 0.9}, nil)
	assert.Error(t, err)
}

func TestAccuracyPredictiveness(t *testing.T) {
	m := NewAccuracy()

	est, ic, err := m.Predictiveness(
		[]float64{0, 1, 1, 0},
		[]float64{0.4, 0.6, 0.2, 0.7},
		nil,
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, est, 1e-12)
	assert.InDelta(t, 0.5, ic[0], 1e-12)
	assert.InDelta(t, -0.5, ic[2], 1e-12)
}

func TestAUCPredictiveness(t *testing.T) {
	m := NewAUC()

	tests := []struct {
		name string
		y    []float64
		pred []float64
		want float64
	}{
		{
			name: "perfect separation",
			y:    []float64{1, 1, 0, 0},
			pred: []float64{0.9, 0.8, 0.3, 0.1},
			want: 1.0,
		},
		{
			name: "one discordant pair",
			y:    []float64{1, 1, 0, 0},
			pred: []float64{0.9, 0.2, 0.3, 0.1},
			want: 0.75,
		},
		{
			name: "ties count half",
			y:    []float64{1, 0},
			pred: []float64{0.5, 0.5},
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, ic, err := m.Predictiveness(tt.y, tt.pred, nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, est, 1e-12)

			var mean float64
			for _, v := range ic {
				mean += v
			}
			assert.InDelta(t, 0, mean/float64(len(ic)), 1e-12)
		})
	}

	_, _, err := m.Predictiveness([]float64{0, 0, 0}, []float64{0.1, 0.2, 0.3}, nil)
	require.Error(t, err)
	var degenerate *errors.DegenerateModelError
	assert.True(t, cockroacherrors.As(err, &degenerate))
}

func TestAverageValuePredictiveness(t *testing.T) {
	m := NewAverageValue()

	est, _, err := m.Predictiveness(
		[]float64{1, 0, 1, 0},
		[]float64{0.9, 0.8, 0.2, 0.1},
		nil,
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, est, 1e-12)
}

func TestImportanceZeroWhenPredictionsMatch(t *testing.T) {
	y := []float64{0, 1, 1, 0, 1, 0, 1, 1}
	pred := []float64{0.2, 0.7, 0.9, 0.3, 0.6, 0.4, 0.8, 0.55}

	for _, typ := range []Type{RSquared, Deviance, Accuracy, AUC, AverageValue} {
		t.Run(typ.String(), func(t *testing.T) {
			m, err := ForType(typ)
			require.NoError(t, err)

			plugin, ic, err := Importance(m, y, pred, pred, nil)
			require.NoError(t, err)
			assert.InDelta(t, 0, plugin, 1e-12)
			for _, v := range ic {
				assert.InDelta(t, 0, v, 1e-12)
			}
		})
	}
}

func TestCheckInputsRejectsBadVectors(t *testing.T) {
	m := NewRSquared()

	_, _, err := m.Predictiveness(nil, nil, nil)
	assert.Error(t, err)

	_, _, err = m.Predictiveness([]float64{1, 2}, []float64{1}, nil)
	assert.Error(t, err)

	_, _, err = m.Predictiveness([]float64{1, math.NaN()}, []float64{1, 2}, nil)
	assert.Error(t, err)

	_, _, err = m.Predictiveness([]float64{1, 2}, []float64{1, 2}, []float64{1, -1})
	assert.Error(t, err)
}
