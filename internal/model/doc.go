// Package model implements the anomaly-scoring capability: per-feature
// median imputation, standardization, and an isolation-forest estimator,
// fitted once on the historical snapshot and then invoked per batch.
//
// A fitted Model is immutable. ScoreBatch is a pure function of the fitted
// state and its input, so a Model may be shared across goroutines freely.
package model
