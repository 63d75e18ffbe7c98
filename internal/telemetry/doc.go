// Package telemetry defines the structural-sensor reading model shared by
// the store, the feed producer, and the scoring model, plus the CSV dataset
// loader that both the seeder and the replay producer use so they agree on
// row ordering and the train/replay split boundary.
package telemetry
