package log

// Estimation context.
// These attributes identify what is being estimated and with which measure.
const (
	// MeasureKey identifies the performance measure driving the estimate.
	// Examples: "r_squared", "deviance", "accuracy", "auc", "average_value"
	MeasureKey = "measure.type"

	// FeaturesKey lists the covariate indices whose importance is assessed.
	FeaturesKey = "vim.features"

	// EstimateKey carries a point estimate of importance.
	EstimateKey = "vim.estimate"

	// StandardErrorKey carries the influence-curve standard error.
	StandardErrorKey = "vim.se"

	// ScaleKey names the scale intervals are computed on ("identity", "logit").
	ScaleKey = "vim.scale"

	// OperationKey specifies the operation being performed.
	// Standard values: "estimate_one_fold", "estimate_cross_fit", "merge"
	OperationKey = "vim.operation"
)

// Fold and data context.
const (
	// SamplesKey indicates the number of observations contributing.
	SamplesKey = "data.samples"

	// CovariatesKey indicates the number of covariate columns.
	CovariatesKey = "data.covariates"

	// OuterFoldsKey indicates the outer sample-split arms (always 2).
	OuterFoldsKey = "folds.outer"

	// InnerFoldsKey indicates the number of inner cross-fitting folds.
	InnerFoldsKey = "folds.inner"

	// StratifiedKey records whether folds were stratified by outcome.
	StratifiedKey = "folds.stratified"

	// SeedKey records the fold-generation seed for reproducibility.
	SeedKey = "folds.seed"
)

// Performance context.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
