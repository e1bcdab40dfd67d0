package folds

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// Nested is the fold assignment for cross-fitted inference: an outer two-way
// sample split (one half estimates the full-model predictiveness, the other
// the reduced-model predictiveness) and, within each half, an inner V-fold
// partition for cross-fitting the regressions. Inner folds hold global
// observation indices.
type Nested struct {
	halves [2][]int
	inner  [2]*Assignment
	v      int
}

// NewNested draws a nested assignment for the n observations with outcome y.
// When stratified is true both the outer split and the inner partitions
// preserve the class proportions of y.
func NewNested(y []float64, v int, stratified bool, src rand.Source) (*Nested, error) {
	n := len(y)
	if n < 2*v {
		return nil, errors.NewInvalidInputError("folds.NewNested", "need at least 2*V observations for a nested split")
	}

	outer, err := splitOuter(y, stratified, src)
	if err != nil {
		return nil, err
	}

	nested := &Nested{v: v}
	for h := 0; h < 2; h++ {
		half := outer[h]
		var inner *Assignment
		if stratified {
			yHalf := make([]float64, len(half))
			for i, idx := range half {
				yHalf[i] = y[idx]
			}
			inner, err = NewStratifiedKFold(yHalf, v, src)
		} else {
			inner, err = NewKFold(len(half), v, src)
		}
		if err != nil {
			return nil, err
		}
		nested.halves[h] = half
		nested.inner[h] = globalize(inner, half)
	}

	return nested, nil
}

// NestedFromParts validates a caller-supplied nested assignment over n
// observations. The halves must partition 0..n-1 and each inner assignment
// must partition its half's global indices.
func NestedFromParts(n int, halves [2][]int, inner [2][][]int) (*Nested, error) {
	outer, err := FromFolds(n, [][]int{halves[0], halves[1]})
	if err != nil {
		return nil, err
	}

	nested := &Nested{}
	for h := 0; h < 2; h++ {
		half := outer.Fold(h)
		position := make(map[int]int, len(half))
		for i, idx := range half {
			position[idx] = i
		}

		local := make([][]int, len(inner[h]))
		for v, fold := range inner[h] {
			local[v] = make([]int, len(fold))
			for i, idx := range fold {
				pos, ok := position[idx]
				if !ok {
					return nil, errors.NewInvalidInputError("folds.NestedFromParts", "inner fold references an observation outside its half")
				}
				local[v][i] = pos
			}
		}

		localAssignment, err := FromFolds(len(half), local)
		if err != nil {
			return nil, err
		}
		nested.halves[h] = half
		nested.inner[h] = globalize(localAssignment, half)
	}
	nested.v = nested.inner[0].V()
	if nested.inner[1].V() != nested.v {
		return nil, errors.NewInvalidInputError("folds.NestedFromParts", "halves have different inner fold counts")
	}

	return nested, nil
}

// Half returns a copy of the global observation indices in outer half h.
func (nst *Nested) Half(h int) []int {
	out := make([]int, len(nst.halves[h]))
	copy(out, nst.halves[h])
	return out
}

// HalfSize returns the number of observations in outer half h.
func (nst *Nested) HalfSize(h int) int { return len(nst.halves[h]) }

// Inner returns the inner assignment of half h; its folds hold global indices.
func (nst *Nested) Inner(h int) *Assignment { return nst.inner[h] }

// V returns the number of inner cross-fitting folds per half.
func (nst *Nested) V() int { return nst.v }

// N returns the total number of observations.
func (nst *Nested) N() int { return len(nst.halves[0]) + len(nst.halves[1]) }

// splitOuter draws the outer two-way split.
func splitOuter(y []float64, stratified bool, src rand.Source) ([2][]int, error) {
	var outer *Assignment
	var err error
	if stratified {
		outer, err = NewStratifiedKFold(y, 2, src)
	} else {
		outer, err = NewKFold(len(y), 2, src)
	}
	if err != nil {
		return [2][]int{}, err
	}
	return [2][]int{outer.Fold(0), outer.Fold(1)}, nil
}

// globalize maps an assignment over local positions onto global indices.
func globalize(local *Assignment, global []int) *Assignment {
	folds := make([][]int, local.V())
	for v := 0; v < local.V(); v++ {
		fold := local.Fold(v)
		mapped := make([]int, len(fold))
		for i, pos := range fold {
			mapped[i] = global[pos]
		}
		folds[v] = mapped
	}
	return &Assignment{n: local.n, folds: folds}
}
