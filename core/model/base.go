package model

// EstimatorState reports whether a model has been fitted.
type EstimatorState int

const (
	// NotFitted is the state before Fit has succeeded.
	NotFitted EstimatorState = iota
	// Fitted is the state after a successful Fit.
	Fitted
)

// BaseEstimator is embedded by model implementations to track fitted state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the model has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the model as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the model to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
