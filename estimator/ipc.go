package estimator

import (
	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// IPCKind selects the coarsening correction.
type IPCKind int

const (
	// IPW reweights each influence contribution by the inverse probability
	// of being fully observed.
	IPW IPCKind = iota
	// AIPW additionally adds the augmentation term built from a
	// caller-supplied regression of the influence contributions on the
	// coarsening covariates.
	AIPW
)

// String returns the name of the correction kind.
func (k IPCKind) String() string {
	switch k {
	case IPW:
		return "ipw"
	case AIPW:
		return "aipw"
	default:
		return "unknown"
	}
}

// IPCConfig carries the inverse-probability-of-coarsening inputs. The
// estimation core performs only the algebraic combination; estimating the
// observation propensities and, for AIPW, the augmentation regression is the
// caller's concern.
type IPCConfig struct {
	// Indicator marks fully observed entries with 1 and coarsened entries
	// with 0, one per observation.
	Indicator []float64

	// Weights holds P(observed | coarsening covariates) per observation.
	// Required whenever Indicator contains zeros.
	Weights []float64

	// Augmentation holds the fitted values of the influence contribution
	// regressed on the coarsening covariates. Required for AIPW.
	Augmentation []float64

	Kind IPCKind
}

// allObserved reports whether every entry is fully observed.
func (c *IPCConfig) allObserved() bool {
	for _, v := range c.Indicator {
		if v != 1 {
			return false
		}
	}
	return true
}

// validate checks the configuration against the pre-cleaning sample size.
func (c *IPCConfig) validate(op string, n int) error {
	if len(c.Indicator) != n {
		return errors.NewLengthMismatchError(op, "coarsening indicator", n, len(c.Indicator))
	}
	coarsened := 0
	for _, v := range c.Indicator {
		switch v {
		case 0:
			coarsened++
		case 1:
		default:
			return errors.NewInvalidInputError(op, "coarsening indicator must contain only 0 and 1")
		}
	}
	if coarsened == 0 {
		return nil
	}

	if c.Weights == nil {
		return errors.NewMissingWeightsError(op, "inverse-probability weights", coarsened)
	}
	if len(c.Weights) != n {
		return errors.NewLengthMismatchError(op, "ipc weights", n, len(c.Weights))
	}
	for i, g := range c.Weights {
		if c.Indicator[i] == 1 && g <= 0 {
			return errors.NewInvalidInputError(op, "ipc weights must be positive for observed entries")
		}
	}
	if c.Kind == AIPW {
		if c.Augmentation == nil {
			return errors.NewMissingWeightsError(op, "aipw augmentation values", coarsened)
		}
		if len(c.Augmentation) != n {
			return errors.NewLengthMismatchError(op, "aipw augmentation", n, len(c.Augmentation))
		}
	}
	return nil
}

// applyIPC corrects the influence contributions in ic for coarsening. keep
// maps each position of ic to its original observation index, so the
// correction stays aligned after missing-value removal or fold reordering.
// With an all-observed indicator this is the identity transform.
func applyIPC(op string, ic []float64, c *IPCConfig, keep []int) ([]float64, error) {
	if c == nil || c.allObserved() {
		return ic, nil
	}

	out := make([]float64, len(ic))
	for pos, idx := range keep {
		// ratio is C_i / g_i; zero for coarsened entries.
		ratio := 0.0
		if c.Indicator[idx] == 1 {
			ratio = 1 / c.Weights[idx]
		}
		out[pos] = ratio * ic[pos]
		if c.Kind == AIPW {
			out[pos] += (1 - ratio) * c.Augmentation[idx]
		}
	}
	return out, nil
}
