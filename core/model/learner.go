// Package model defines the contract between the importance estimators and
// the regression procedures they drive. The estimation core never fits a
// model itself; any backend satisfying Learner can be cross-fitted.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained.
type Fitter interface {
	// Fit trains the model on covariates X (n x p) and outcomes y (n x 1).
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that can produce fitted values.
type Predictor interface {
	// Predict returns one fitted value per row of X as an n x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Learner is the regression collaborator used on the cross-fitted path: it is
// fit on the held-in rows of a fold and asked for predictions on the held-out
// rows. Implementations must be deterministic given their own seed; they may
// be arbitrarily slow or internally concurrent.
type Learner interface {
	Fitter
	Predictor
}

// LearnerFactory produces a fresh, unfitted Learner. Cross-fitting trains one
// model per fold per half, so models must not share fitted state.
type LearnerFactory func() Learner
