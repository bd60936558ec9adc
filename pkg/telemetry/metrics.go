package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce            sync.Once
	metricsInitErr         error
	filterRunCounter       metric.Int64Counter
	filterFailureCounter   metric.Int64Counter
	filterLatencyHistogram metric.Float64Histogram
	callScreenedCounter    metric.Int64Counter
	callTimeoutCounter     metric.Int64Counter
	callLatencyHistogram   metric.Float64Histogram
)

// FilterRun captures the fields recorded for one filter execution.
type FilterRun struct {
	Filter   string
	Failed   bool
	Duration time.Duration
}

// CallScreened captures the fields recorded for one finished screening
// session.
type CallScreened struct {
	// Outcome is the final disposition: allow, reject or silence.
	Outcome  string
	TimedOut bool
	Duration time.Duration
}

// RecordFilterRun emits counters and a latency histogram for one filter
// execution.
func RecordFilterRun(ctx context.Context, run FilterRun) {
	if err := ensureMetrics(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("filter.name", run.Filter),
		attribute.Bool("filter.failed", run.Failed),
	}

	filterRunCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if run.Failed {
		filterFailureCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if run.Duration > 0 {
		filterLatencyHistogram.Record(ctx, float64(run.Duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	}
}

// RecordCallScreened emits the session-level counters and latency.
func RecordCallScreened(ctx context.Context, call CallScreened) {
	if err := ensureMetrics(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("call.outcome", call.Outcome),
		attribute.Bool("call.timed_out", call.TimedOut),
	}

	callScreenedCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if call.TimedOut {
		callTimeoutCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if call.Duration > 0 {
		callLatencyHistogram.Record(ctx, float64(call.Duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	}
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("callwarden.screening")

		filterRunCounter, metricsInitErr = meter.Int64Counter(
			"callwarden.filter.runs_total",
			metric.WithDescription("Filter executions partitioned by filter name and failure"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		filterFailureCounter, metricsInitErr = meter.Int64Counter(
			"callwarden.filter.failures_total",
			metric.WithDescription("Filter executions that returned an error or panicked"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		filterLatencyHistogram, metricsInitErr = meter.Float64Histogram(
			"callwarden.filter.duration_ms",
			metric.WithDescription("Observed filter execution latency"),
			metric.WithUnit("ms"),
		)
		if metricsInitErr != nil {
			return
		}

		callScreenedCounter, metricsInitErr = meter.Int64Counter(
			"callwarden.call.screened_total",
			metric.WithDescription("Screened calls partitioned by outcome"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		callTimeoutCounter, metricsInitErr = meter.Int64Counter(
			"callwarden.call.timeouts_total",
			metric.WithDescription("Screening sessions finalized by the deadline guard"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		callLatencyHistogram, metricsInitErr = meter.Float64Histogram(
			"callwarden.call.duration_ms",
			metric.WithDescription("Wall time from filtering start to final verdict"),
			metric.WithUnit("ms"),
		)
	})

	return metricsInitErr
}
