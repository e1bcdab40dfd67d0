// Package vimpgo provides nonparametric, influence-curve-based estimation of
// variable importance for Go.
//
// Variable importance is measured as the drop in predictive performance
// (R-squared, deviance, classification accuracy, AUC, average value under a
// rule) when a group of covariates is withheld from the regression. The
// estimators are one-step estimators derived from the efficient influence
// curve of each performance measure, with optional cross-fitting (sample
// splitting plus V-fold cross-validation) to remove the bias that comes from
// reusing the same data for model fitting and inference.
//
// # Quick Start
//
// Importance from externally fitted values:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/vimpgo/estimator"
//	)
//
//	func main() {
//	    // y: observed outcomes; full/reduced: held-out fitted values from
//	    // regressions with and without the covariates of interest.
//	    est, err := estimator.RSquared(y, full, reduced, []int{1},
//	        estimator.WithAlpha(0.05),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(est)
//	}
//
// Cross-fitted importance, letting the library drive a Learner:
//
//	est, err := estimator.RSquaredCV(y, X, []int{1},
//	    estimator.WithFolds(5),
//	    estimator.WithSeed(42),
//	)
//
// # Packages
//
//   - estimator: one-fold and cross-fitted importance estimators, coarsening
//     (IPW/AIPW) corrections, confidence intervals, p-values, result merging
//   - measure: performance measures and their efficient influence curves
//   - folds: flat, stratified and nested fold assignments
//   - linear: ordinary least squares Learner used as the default backend
//   - core/model: the Learner contract any regression backend must satisfy
//   - core/parallel: parallel execution helpers for per-fold fitting
//   - pkg/errors: structured error types and warnings
//   - pkg/log: structured logging utilities
//
// The underlying regression procedure is deliberately an abstraction: any
// model satisfying core/model.Learner (an ensemble, a boosting library, a
// neural network binding) can be plugged into the cross-fitted path.
package vimpgo
