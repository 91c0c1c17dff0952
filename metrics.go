package termq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    searchCounter   prometheus.Counter
//	    searchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSearch(total int, duration time.Duration, err error) {
//	    p.searchCounter.Inc()
//	    p.searchHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordSearch is called after each search. total is the size of the
	// unwindowed result, err is nil if successful.
	RecordSearch(total int, duration time.Duration, err error)

	// RecordEvaluate is called after each id-only evaluation.
	RecordEvaluate(size int, duration time.Duration, err error)

	// RecordBatchSearch is called after each SearchAll call.
	RecordBatchSearch(count, failed int, duration time.Duration)

	// RecordTextRejected is called when an index rejects a text query as malformed.
	RecordTextRejected()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordEvaluate(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordBatchSearch(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordTextRejected()                       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	SearchResults     atomic.Int64
	EvaluateCount     atomic.Int64
	EvaluateErrors    atomic.Int64
	BatchSearchCount  atomic.Int64
	BatchSearchItems  atomic.Int64
	BatchSearchFailed atomic.Int64
	TextRejected      atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(total int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchResults.Add(int64(total))
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(_ int, _ time.Duration, err error) {
	b.EvaluateCount.Add(1)
	if err != nil {
		b.EvaluateErrors.Add(1)
	}
}

// RecordBatchSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchSearch(count, failed int, _ time.Duration) {
	b.BatchSearchCount.Add(1)
	b.BatchSearchItems.Add(int64(count))
	b.BatchSearchFailed.Add(int64(failed))
}

// RecordTextRejected implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTextRejected() {
	b.TextRejected.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    b.avgSearchNanos(),
		SearchResults:     b.SearchResults.Load(),
		EvaluateCount:     b.EvaluateCount.Load(),
		EvaluateErrors:    b.EvaluateErrors.Load(),
		BatchSearchCount:  b.BatchSearchCount.Load(),
		BatchSearchItems:  b.BatchSearchItems.Load(),
		BatchSearchFailed: b.BatchSearchFailed.Load(),
		TextRejected:      b.TextRejected.Load(),
	}
}

func (b *BasicMetricsCollector) avgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount       int64
	SearchErrors      int64
	SearchAvgNanos    int64
	SearchResults     int64
	EvaluateCount     int64
	EvaluateErrors    int64
	BatchSearchCount  int64
	BatchSearchItems  int64
	BatchSearchFailed int64
	TextRejected      int64
}
