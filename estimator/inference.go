package estimator

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/vimpgo/pkg/errors"
)

// Scale selects the scale confidence intervals and p-values are computed on.
type Scale int

const (
	// ScaleIdentity applies the normal approximation directly to the
	// estimate. Intervals are never truncated to the measure's bounds.
	ScaleIdentity Scale = iota
	// ScaleLogit applies the normal approximation on the logit scale and
	// maps back, keeping intervals inside (0, 1). Requires a bounded measure
	// and an estimate strictly inside (0, 1).
	ScaleLogit
)

// String returns the name of the scale.
func (s Scale) String() string {
	switch s {
	case ScaleIdentity:
		return "identity"
	case ScaleLogit:
		return "logit"
	default:
		return "unknown"
	}
}

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64
	Upper float64
	Level float64 // 1 − alpha
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

func logit(p float64) float64 { return math.Log(p / (1 - p)) }

func expit(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// confidenceInterval computes the two-sided interval for est at level
// 1 − alpha on the requested scale.
func confidenceInterval(est, se, alpha float64, scale Scale, bounded bool) (Interval, error) {
	z := stdNormal.Quantile(1 - alpha/2)

	switch scale {
	case ScaleIdentity:
		return Interval{
			Lower: est - z*se,
			Upper: est + z*se,
			Level: 1 - alpha,
		}, nil

	case ScaleLogit:
		if !bounded {
			return Interval{}, errors.NewInvalidScaleError("logit", est, "measure is not bounded in [0,1]")
		}
		if est <= 0 || est >= 1 {
			return Interval{}, errors.NewInvalidScaleError("logit", est, "logit is undefined at or outside the boundary; use the identity scale")
		}
		// Delta method: d logit(p)/dp = 1/(p(1-p)).
		g := se / (est * (1 - est))
		l := logit(est)
		return Interval{
			Lower: expit(l - z*g),
			Upper: expit(l + z*g),
			Level: 1 - alpha,
		}, nil

	default:
		return Interval{}, errors.NewInvalidScaleError(scale.String(), est, "unknown scale")
	}
}

// pValue computes the one-sided p-value for testing importance ≤ delta
// against importance > delta on the requested scale.
func pValue(est, se, delta float64, scale Scale, bounded bool) (float64, error) {
	var z float64
	switch scale {
	case ScaleIdentity:
		if se == 0 {
			if est > delta {
				return 0, nil
			}
			return 1, nil
		}
		z = (est - delta) / se

	case ScaleLogit:
		if !bounded {
			return 0, errors.NewInvalidScaleError("logit", est, "measure is not bounded in [0,1]")
		}
		if est <= 0 || est >= 1 {
			return 0, errors.NewInvalidScaleError("logit", est, "logit is undefined at or outside the boundary; use the identity scale")
		}
		if delta <= 0 || delta >= 1 {
			return 0, errors.NewInvalidScaleError("logit", delta, "null threshold must be strictly inside (0,1) on the logit scale")
		}
		g := se / (est * (1 - est))
		if g == 0 {
			if est > delta {
				return 0, nil
			}
			return 1, nil
		}
		z = (logit(est) - logit(delta)) / g

	default:
		return 0, errors.NewInvalidScaleError(scale.String(), est, "unknown scale")
	}

	return 1 - stdNormal.CDF(z), nil
}
