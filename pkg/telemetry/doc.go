// Package telemetry provides structured logging and Prometheus metrics for
// flowstate components. The serialization core in package wire is pure and
// emits no telemetry itself; the store and CLI layers instrument their use
// of it through this package.
package telemetry
