package estimator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/YuminosukeSato/vimpgo/folds"
	"github.com/YuminosukeSato/vimpgo/measure"
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// Estimate is the result of one estimation call: a point estimate of the
// importance of a covariate group, its influence curve, and the derived
// inference. Estimates are immutable once constructed; accessors return
// copies of internal slices.
type Estimate struct {
	featureSet     []int
	pointEstimate  float64
	naiveEstimate  float64
	influenceCurve []float64
	standardError  float64
	ci             Interval
	pValue         *float64
	fullFits       []float64
	reducedFits    []float64
	measureType    measure.Type
	foldAssignment *folds.Nested
	n              int
	scale          Scale
}

// FeatureSet returns the sorted covariate indices whose importance was assessed.
func (e *Estimate) FeatureSet() []int {
	out := make([]int, len(e.featureSet))
	copy(out, e.featureSet)
	return out
}

// PointEstimate returns the one-step corrected importance estimate.
func (e *Estimate) PointEstimate() float64 { return e.pointEstimate }

// NaiveEstimate returns the plug-in estimate before the influence-curve
// correction.
func (e *Estimate) NaiveEstimate() float64 { return e.naiveEstimate }

// InfluenceCurve returns the per-observation correction terms; its length is
// the number of observations that contributed to the estimate.
func (e *Estimate) InfluenceCurve() []float64 {
	out := make([]float64, len(e.influenceCurve))
	copy(out, e.influenceCurve)
	return out
}

// StandardError returns the influence-curve standard error.
func (e *Estimate) StandardError() float64 { return e.standardError }

// ConfidenceInterval returns the two-sided interval at the configured level.
func (e *Estimate) ConfidenceInterval() Interval { return e.ci }

// PValue returns the one-sided p-value against the configured null threshold
// and whether a test was requested.
func (e *Estimate) PValue() (float64, bool) {
	if e.pValue == nil {
		return 0, false
	}
	return *e.pValue, true
}

// FullFits returns the full-regression fitted values the estimate used, in
// influence-curve order.
func (e *Estimate) FullFits() []float64 {
	out := make([]float64, len(e.fullFits))
	copy(out, e.fullFits)
	return out
}

// ReducedFits returns the reduced-regression fitted values the estimate used,
// in influence-curve order.
func (e *Estimate) ReducedFits() []float64 {
	out := make([]float64, len(e.reducedFits))
	copy(out, e.reducedFits)
	return out
}

// MeasureType returns the performance measure the estimate is based on.
func (e *Estimate) MeasureType() measure.Type { return e.measureType }

// FoldAssignment returns the nested fold assignment for cross-fitted
// estimates, or nil for one-fold estimates.
func (e *Estimate) FoldAssignment() *folds.Nested { return e.foldAssignment }

// N returns the number of observations that contributed to the estimate.
func (e *Estimate) N() int { return e.n }

// Scale returns the scale the interval and p-value were computed on.
func (e *Estimate) Scale() Scale { return e.scale }

// String renders the estimate on one line.
func (e *Estimate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s importance of %v: %.4f (se %.4f, %.0f%% CI [%.4f, %.4f]",
		e.measureType, e.featureSet, e.pointEstimate, e.standardError,
		e.ci.Level*100, e.ci.Lower, e.ci.Upper)
	if e.pValue != nil {
		fmt.Fprintf(&b, ", p %.4g", *e.pValue)
	}
	b.WriteString(")")
	return b.String()
}

// ComparisonTable is an ordered, read-only collection of estimates, one row
// per covariate group, sorted by decreasing point estimate. Rows are the
// original estimates; nothing is recomputed and no multiple-comparison
// adjustment is applied.
type ComparisonTable struct {
	rows []*Estimate
}

// Merge combines independently computed estimates into a comparison table.
func Merge(estimates ...*Estimate) (*ComparisonTable, error) {
	if len(estimates) == 0 {
		return nil, errors.NewInvalidInputError("estimator.Merge", "no estimates to merge")
	}
	for _, est := range estimates {
		if est == nil {
			return nil, errors.NewInvalidInputError("estimator.Merge", "nil estimate")
		}
	}

	rows := make([]*Estimate, len(estimates))
	copy(rows, estimates)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].pointEstimate != rows[j].pointEstimate {
			return rows[i].pointEstimate > rows[j].pointEstimate
		}
		return featureSetLess(rows[i].featureSet, rows[j].featureSet)
	})

	return &ComparisonTable{rows: rows}, nil
}

// Len returns the number of rows.
func (t *ComparisonTable) Len() int { return len(t.rows) }

// Row returns row i (rows are ordered by decreasing point estimate).
func (t *ComparisonTable) Row(i int) *Estimate { return t.rows[i] }

// Rows returns the ordered rows.
func (t *ComparisonTable) Rows() []*Estimate {
	out := make([]*Estimate, len(t.rows))
	copy(out, t.rows)
	return out
}

// String renders the table, one row per line.
func (t *ComparisonTable) String() string {
	var b strings.Builder
	b.WriteString("rank  features              estimate        se                  ci\n")
	for i, row := range t.rows {
		fmt.Fprintf(&b, "%4d  %-16v  %10.4f  %8.4f  [%8.4f, %8.4f]\n",
			i+1, row.featureSet, row.pointEstimate, row.standardError,
			row.ci.Lower, row.ci.Upper)
	}
	return b.String()
}

func featureSetLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
