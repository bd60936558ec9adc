// Package telemetry wires OpenTelemetry exporters and meters for the
// call screening daemon.
//
// It centralises trace provider setup, applies service resource
// attributes, and records per-filter and per-call metrics so operators
// can correlate screening verdicts with filter behaviour.
package telemetry
