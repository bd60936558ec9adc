package telemetry

import "sync"

// ResetMetricsForTest clears cached metric instruments so tests can
// reinitialize them against a fresh MeterProvider. This is intended for
// use in test code only.
func ResetMetricsForTest() {
	metricsOnce = sync.Once{}
	metricsInitErr = nil
	filterRunCounter = nil
	filterFailureCounter = nil
	filterLatencyHistogram = nil
	callScreenedCounter = nil
	callTimeoutCounter = nil
	callLatencyHistogram = nil
}
