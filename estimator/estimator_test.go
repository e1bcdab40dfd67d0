package estimator

import (
	"math"
	"testing"

	cockroacherrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/vimpgo/measure"
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// onefoldData builds a deterministic regression sample: full predictions
// track the outcome closely, reduced predictions only coarsely.
func onefoldData(n int) (y, full, reduced []float64) {
	y = make([]float64, n)
	full = make([]float64, n)
	reduced = make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = float64(i%13) + 0.5*float64(i%7)
		full[i] = y[i] + 0.3*math.Sin(float64(i))
		reduced[i] = 0.5*y[i] + 3
	}
	return y, full, reduced
}

func TestEstimateOneFoldRSquared(t *testing.T) {
	y, full, reduced := onefoldData(60)

	est, err := RSquared(y, full, reduced, []int{2})
	require.NoError(t, err)

	assert.Equal(t, []int{2}, est.FeatureSet())
	assert.Equal(t, measure.RSquared, est.MeasureType())
	assert.Equal(t, 60, est.N())
	assert.Len(t, est.InfluenceCurve(), 60)
	assert.Nil(t, est.FoldAssignment())

	assert.Greater(t, est.PointEstimate(), 0.0, "full model should beat reduced model")
	assert.GreaterOrEqual(t, est.StandardError(), 0.0)

	ci := est.ConfidenceInterval()
	assert.LessOrEqual(t, ci.Lower, est.PointEstimate())
	assert.GreaterOrEqual(t, ci.Upper, est.PointEstimate())
	assert.InDelta(t, 0.95, ci.Level, 1e-12)

	_, requested := est.PValue()
	assert.False(t, requested, "no p-value without a delta test")
}

func TestEstimateOneFoldIdempotent(t *testing.T) {
	y, full, reduced := onefoldData(50)

	a, err := RSquared(y, full, reduced, []int{0}, WithAlpha(0.1))
	require.NoError(t, err)
	b, err := RSquared(y, full, reduced, []int{0}, WithAlpha(0.1))
	require.NoError(t, err)

	assert.Equal(t, a.PointEstimate(), b.PointEstimate())
	assert.Equal(t, a.NaiveEstimate(), b.NaiveEstimate())
	assert.Equal(t, a.StandardError(), b.StandardError())
	assert.Equal(t, a.ConfidenceInterval(), b.ConfidenceInterval())
	assert.Equal(t, a.InfluenceCurve(), b.InfluenceCurve())
}

func TestEstimateOneFoldZeroWhenPredictionsEqual(t *testing.T) {
	y, full, _ := onefoldData(40)

	est, err := RSquared(y, full, full, []int{1})
	require.NoError(t, err)

	assert.InDelta(t, 0, est.PointEstimate(), 1e-12)
	assert.InDelta(t, 0, est.NaiveEstimate(), 1e-12)
	assert.InDelta(t, 0, est.StandardError(), 1e-12)
}

func TestEstimateOneFoldLogitScaleAtZeroFails(t *testing.T) {
	y, full, _ := onefoldData(40)

	// Identical predictions put the estimate at exactly 0; the logit scale
	// must refuse while identity succeeds.
	_, err := RSquared(y, full, full, []int{1}, WithScale(ScaleLogit))
	require.Error(t, err)
	var scaleErr *errors.InvalidScaleError
	assert.True(t, cockroacherrors.As(err, &scaleErr))

	_, err = RSquared(y, full, full, []int{1}, WithScale(ScaleIdentity))
	assert.NoError(t, err)
}

func TestEstimateOneFoldDeltaTest(t *testing.T) {
	y, full, reduced := onefoldData(80)

	est, err := RSquared(y, full, reduced, []int{1}, WithDelta(0))
	require.NoError(t, err)

	p, requested := est.PValue()
	require.True(t, requested)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
	assert.Less(t, p, 0.05, "clearly important feature should reject the null")
}

func TestEstimateOneFoldNaNHandling(t *testing.T) {
	y, full, reduced := onefoldData(40)
	y[7] = math.NaN()
	full[12] = math.NaN()

	// Fatal without na.rm.
	_, err := RSquared(y, full, reduced, []int{1})
	require.Error(t, err)
	var invalid *errors.InvalidInputError
	assert.True(t, cockroacherrors.As(err, &invalid))

	// Dropped with na.rm; the influence curve shrinks accordingly.
	est, err := RSquared(y, full, reduced, []int{1}, WithNaRM(true))
	require.NoError(t, err)
	assert.Equal(t, 38, est.N())
	assert.Len(t, est.InfluenceCurve(), 38)
}

func TestEstimateOneFoldRejectsSingleObservation(t *testing.T) {
	// A single contributor leaves the influence-curve variance undefined;
	// the call must fail rather than report a NaN standard error.
	_, err := Accuracy([]float64{1}, []float64{0.9}, []float64{0.1}, []int{0})
	require.Error(t, err)
	var invalid *errors.InvalidInputError
	assert.True(t, cockroacherrors.As(err, &invalid))

	// The same guard applies when missing-value removal leaves one row.
	y := []float64{1, math.NaN(), math.NaN()}
	full := []float64{0.9, 0.5, 0.5}
	reduced := []float64{0.1, 0.5, 0.5}
	_, err = Accuracy(y, full, reduced, []int{0}, WithNaRM(true))
	require.Error(t, err)
	assert.True(t, cockroacherrors.As(err, &invalid))

	// Two observations are enough.
	est, err := Accuracy([]float64{1, 0}, []float64{0.9, 0.2}, []float64{0.1, 0.8}, []int{0})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(est.StandardError()))
	assert.GreaterOrEqual(t, est.StandardError(), 0.0)
}

func TestEstimateOneFoldLengthMismatch(t *testing.T) {
	y, full, reduced := onefoldData(40)

	_, err := RSquared(y, full[:39], reduced, []int{1})
	require.Error(t, err)
	var mismatch *errors.LengthMismatchError
	assert.True(t, cockroacherrors.As(err, &mismatch))

	_, err = RSquared(y, full, reduced[:30], []int{1})
	assert.Error(t, err)

	_, err = RSquared(y, full, reduced, []int{1}, WithWeights(make([]float64, 10)))
	assert.Error(t, err)
}

func TestEstimateOneFoldFeatureSetValidation(t *testing.T) {
	y, full, reduced := onefoldData(40)

	tests := []struct {
		name     string
		features []int
	}{
		{name: "empty", features: nil},
		{name: "unsorted", features: []int{3, 1}},
		{name: "duplicate", features: []int{1, 1}},
		{name: "negative", features: []int{-1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RSquared(y, full, reduced, tt.features)
			assert.Error(t, err)
		})
	}
}

func TestEstimateOneFoldAlphaValidation(t *testing.T) {
	y, full, reduced := onefoldData(40)

	_, err := RSquared(y, full, reduced, []int{1}, WithAlpha(0))
	assert.Error(t, err)
	_, err = RSquared(y, full, reduced, []int{1}, WithAlpha(1.5))
	assert.Error(t, err)
}

func TestEstimateOneFoldIPC(t *testing.T) {
	y, full, reduced := onefoldData(60)

	indicator := make([]float64, 60)
	weights := make([]float64, 60)
	for i := range indicator {
		indicator[i] = 1
		weights[i] = 0.9
	}
	indicator[5] = 0
	indicator[17] = 0

	// Coarsening with weights supplied succeeds and changes the correction.
	corrected, err := RSquared(y, full, reduced, []int{1},
		WithIPC(IPCConfig{Indicator: indicator, Weights: weights, Kind: IPW}))
	require.NoError(t, err)

	plain, err := RSquared(y, full, reduced, []int{1})
	require.NoError(t, err)
	assert.NotEqual(t, plain.PointEstimate(), corrected.PointEstimate())

	// Coarsening without weights fails.
	_, err = RSquared(y, full, reduced, []int{1},
		WithIPC(IPCConfig{Indicator: indicator, Kind: IPW}))
	require.Error(t, err)
	var missing *errors.MissingWeightsError
	assert.True(t, cockroacherrors.As(err, &missing))
}

func TestEstimateOneFoldSmallSampleWarning(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(func(error) {})

	y, full, reduced := onefoldData(12)
	_, err := RSquared(y, full, reduced, []int{1})
	require.NoError(t, err)

	require.NotNil(t, warned)
	assert.Contains(t, warned.Error(), "12 observations")
}

func TestEstimateOneFoldAccuracyAndAUC(t *testing.T) {
	n := 60
	y := make([]float64, n)
	full := make([]float64, n)
	reduced := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			y[i] = 1
		}
		// Full predictions discriminate; reduced predictions barely do.
		if y[i] == 1 {
			full[i] = 0.8
			reduced[i] = 0.52
		} else {
			full[i] = 0.2
			reduced[i] = 0.55
		}
		// A little order-dependent jitter to break ties.
		full[i] += 0.001 * float64(i%5)
		reduced[i] += 0.001 * float64(i%5)
	}

	acc, err := Accuracy(y, full, reduced, []int{0})
	require.NoError(t, err)
	assert.Greater(t, acc.PointEstimate(), 0.0)

	auc, err := AUC(y, full, reduced, []int{0})
	require.NoError(t, err)
	assert.Greater(t, auc.PointEstimate(), 0.0)

	av, err := AverageValue(y, full, reduced, []int{0})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, av.StandardError(), 0.0)
}

func TestMergeOrdersAndPreserves(t *testing.T) {
	y, full, reduced := onefoldData(50)

	// Three importance estimates with disjoint feature sets and distinct
	// magnitudes: the worse the alternative predictions, the larger the
	// importance.
	mid := make([]float64, len(full))
	for i := range mid {
		mid[i] = 0.75*full[i] + 0.25*reduced[i]
	}

	big, err := RSquared(y, full, reduced, []int{2})
	require.NoError(t, err)
	small, err := RSquared(y, full, mid, []int{0})
	require.NoError(t, err)
	zero, err := RSquared(y, full, full, []int{1})
	require.NoError(t, err)

	table, err := Merge(small, zero, big)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	// Ordered by decreasing point estimate.
	assert.Equal(t, []int{2}, table.Row(0).FeatureSet())
	assert.Equal(t, []int{0}, table.Row(1).FeatureSet())
	assert.Equal(t, []int{1}, table.Row(2).FeatureSet())

	// Rows are the original estimates, value for value.
	assert.Same(t, big, table.Row(0))
	assert.Equal(t, big.PointEstimate(), table.Row(0).PointEstimate())
	assert.Equal(t, small.StandardError(), table.Row(1).StandardError())
	assert.Equal(t, zero.ConfidenceInterval(), table.Row(2).ConfidenceInterval())

	assert.NotEmpty(t, table.String())
}

func TestMergeRejectsEmptyAndNil(t *testing.T) {
	_, err := Merge()
	assert.Error(t, err)

	y, full, reduced := onefoldData(40)
	est, err := RSquared(y, full, reduced, []int{1})
	require.NoError(t, err)

	_, err = Merge(est, nil)
	assert.Error(t, err)
}

func TestEstimateStringRendering(t *testing.T) {
	y, full, reduced := onefoldData(40)
	est, err := RSquared(y, full, reduced, []int{1, 3}, WithDelta(0))
	require.NoError(t, err)

	s := est.String()
	assert.Contains(t, s, "r_squared")
	assert.Contains(t, s, "[1 3]")
	assert.Contains(t, s, "p ")
}
