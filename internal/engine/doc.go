// Package engine runs the continuous scoring loop: it discovers bounded
// batches of pending readings, classifies them with the fitted model, and
// durably persists each outcome exactly once. The loop is a small state
// machine (connected, reconnecting, stopping, stopped) that survives store
// connectivity failures without crashing and honors cancellation only at
// cycle boundaries, so an in-flight batch always finishes.
package engine
