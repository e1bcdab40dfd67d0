// Package folds draws and validates the fold assignments used by the
// importance estimators: flat V-fold partitions, stratified partitions that
// preserve outcome-class proportions, and the nested assignment (an outer
// two-way sample split with inner V-fold partitions per half) used for
// cross-fitted inference.
//
// Assignments are immutable once drawn. Randomness always comes from a
// caller-supplied rand.Source so results are reproducible; a nil source
// yields the deterministic unshuffled partition.
package folds

import (
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// Assignment is a flat partition of n observations into V folds whose sizes
// differ by at most one.
type Assignment struct {
	n     int
	folds [][]int
}

// N returns the number of observations covered by the assignment.
func (a *Assignment) N() int { return a.n }

// V returns the number of folds.
func (a *Assignment) V() int { return len(a.folds) }

// Fold returns a copy of the observation indices in fold v.
func (a *Assignment) Fold(v int) []int {
	out := make([]int, len(a.folds[v]))
	copy(out, a.folds[v])
	return out
}

// FoldSize returns the number of observations in fold v without copying.
func (a *Assignment) FoldSize(v int) int { return len(a.folds[v]) }

// NewKFold draws a V-fold partition of n observations. The permutation is
// drawn from src; a nil src keeps the natural order.
func NewKFold(n, v int, src rand.Source) (*Assignment, error) {
	if n <= 0 {
		return nil, errors.NewInvalidInputError("folds.NewKFold", "no observations to partition")
	}
	if v < 2 || v > n {
		return nil, errors.NewInvalidInputError("folds.NewKFold", "fold count must be between 2 and the sample size")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if src != nil {
		r := rand.New(src)
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	// The first n%v folds take one extra observation.
	foldSize := n / v
	remainder := n % v

	folds := make([][]int, v)
	pos := 0
	for i := 0; i < v; i++ {
		size := foldSize
		if i < remainder {
			size++
		}
		fold := make([]int, size)
		copy(fold, indices[pos:pos+size])
		sort.Ints(fold)
		folds[i] = fold
		pos += size
	}

	return &Assignment{n: n, folds: folds}, nil
}

// NewStratifiedKFold draws a V-fold partition of len(y) observations in which
// each fold preserves the class proportions of the outcome y. Outcome values
// are treated as discrete class labels.
func NewStratifiedKFold(y []float64, v int, src rand.Source) (*Assignment, error) {
	n := len(y)
	if n == 0 {
		return nil, errors.NewInvalidInputError("folds.NewStratifiedKFold", "no observations to partition")
	}
	if v < 2 || v > n {
		return nil, errors.NewInvalidInputError("folds.NewStratifiedKFold", "fold count must be between 2 and the sample size")
	}

	byClass := make(map[float64][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	// Deterministic class order so the same source gives the same folds.
	labels := make([]float64, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	var r *rand.Rand
	if src != nil {
		r = rand.New(src)
	}

	// Deal each class's members round robin; the fold cursor carries over
	// between classes so overall fold sizes stay within one of each other.
	folds := make([][]int, v)
	cursor := 0
	for _, label := range labels {
		members := byClass[label]
		if r != nil {
			r.Shuffle(len(members), func(i, j int) {
				members[i], members[j] = members[j], members[i]
			})
		}
		for _, idx := range members {
			folds[cursor%v] = append(folds[cursor%v], idx)
			cursor++
		}
	}

	for i := range folds {
		sort.Ints(folds[i])
	}

	return &Assignment{n: n, folds: folds}, nil
}

// FromFolds validates a caller-supplied partition of n observations: folds
// must be non-empty, disjoint, in range, and cover every observation.
func FromFolds(n int, fs [][]int) (*Assignment, error) {
	if len(fs) < 2 {
		return nil, errors.NewInvalidInputError("folds.FromFolds", "need at least two folds")
	}

	seen := make([]bool, n)
	total := 0
	folds := make([][]int, len(fs))
	for v, fold := range fs {
		if len(fold) == 0 {
			return nil, errors.NewInvalidInputError("folds.FromFolds", "empty fold")
		}
		copied := make([]int, len(fold))
		copy(copied, fold)
		sort.Ints(copied)
		for _, idx := range copied {
			if idx < 0 || idx >= n {
				return nil, errors.NewInvalidInputError("folds.FromFolds", "observation index out of range")
			}
			if seen[idx] {
				return nil, errors.NewInvalidInputError("folds.FromFolds", "observation assigned to more than one fold")
			}
			seen[idx] = true
			total++
		}
		folds[v] = copied
	}
	if total != n {
		return nil, errors.NewLengthMismatchError("folds.FromFolds", "partition", n, total)
	}

	return &Assignment{n: n, folds: folds}, nil
}
