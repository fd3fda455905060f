package vecseg

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
//	    writeBytes   prometheus.Counter
//	    readLatency  *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordRead(op string, vectors int, d time.Duration, err error) {
//	    p.readLatency.WithLabelValues(op).Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordWrite is called after each segment write.
	// vectors and bytes are zero if the write failed.
	RecordWrite(vectors int, bytes int64, duration time.Duration, err error)

	// RecordRead is called after each read. op names the read path
	// ("header", "all", "at", "range", "many", "verify").
	RecordRead(op string, vectors int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordWrite(int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordRead(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	WriteCount      atomic.Int64
	WriteErrors     atomic.Int64
	WriteVectors    atomic.Int64
	WriteBytes      atomic.Int64
	WriteTotalNanos atomic.Int64
	ReadCount       atomic.Int64
	ReadErrors      atomic.Int64
	ReadVectors     atomic.Int64
	ReadTotalNanos  atomic.Int64
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(vectors int, bytes int64, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	b.WriteVectors.Add(int64(vectors))
	b.WriteBytes.Add(bytes)
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(_ string, vectors int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
		return
	}
	b.ReadVectors.Add(int64(vectors))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		WriteCount:    b.WriteCount.Load(),
		WriteErrors:   b.WriteErrors.Load(),
		WriteVectors:  b.WriteVectors.Load(),
		WriteBytes:    b.WriteBytes.Load(),
		WriteAvgNanos: avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		ReadCount:     b.ReadCount.Load(),
		ReadErrors:    b.ReadErrors.Load(),
		ReadVectors:   b.ReadVectors.Load(),
		ReadAvgNanos:  avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	WriteCount    int64
	WriteErrors   int64
	WriteVectors  int64
	WriteBytes    int64
	WriteAvgNanos int64
	ReadCount     int64
	ReadErrors    int64
	ReadVectors   int64
	ReadAvgNanos  int64
}
