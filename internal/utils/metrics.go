// internal/utils/metrics.go
package utils

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects application metrics
type MetricsCollector struct {
	counters   map[string]*Counter
	histograms map[string]*Histogram

	mu sync.RWMutex
}

// Counter metric - using atomic operations for thread-safe value updates
type Counter struct {
	name  string
	value int64
}

// Histogram metric (simple implementation tracking count, sum, min, max)
type Histogram struct {
	name  string
	count int64
	sum   int64
	min   int64
	max   int64
	mu    sync.Mutex
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// GetMetricsCollector returns the global metrics collector
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = &MetricsCollector{
			counters:   make(map[string]*Counter),
			histograms: make(map[string]*Histogram),
		}
	})
	return globalMetrics
}

// IncrementCounter increments a counter metric
func (m *MetricsCollector) IncrementCounter(name string) {
	// Fast path for existing counters
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if exists {
		atomic.AddInt64(&counter.value, 1)
		return
	}

	m.mu.Lock()
	// Double-check after acquiring write lock
	counter, exists = m.counters[name]
	if !exists {
		counter = &Counter{name: name}
		m.counters[name] = counter
	}
	m.mu.Unlock()

	atomic.AddInt64(&counter.value, 1)
}

// GetCounterValue returns the current value of a counter, 0 if absent
func (m *MetricsCollector) GetCounterValue(name string) int64 {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		return 0
	}
	return atomic.LoadInt64(&counter.value)
}

// RecordHistogram records a value into a histogram metric
func (m *MetricsCollector) RecordHistogram(name string, value int64) {
	m.mu.RLock()
	hist, exists := m.histograms[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		hist, exists = m.histograms[name]
		if !exists {
			hist = &Histogram{name: name, min: value, max: value}
			m.histograms[name] = hist
		}
		m.mu.Unlock()
	}

	hist.mu.Lock()
	defer hist.mu.Unlock()
	hist.count++
	hist.sum += value
	if value < hist.min {
		hist.min = value
	}
	if value > hist.max {
		hist.max = value
	}
}

// GetMetrics returns a snapshot of all metrics
func (m *MetricsCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]interface{})

	for name, counter := range m.counters {
		snapshot[name] = atomic.LoadInt64(&counter.value)
	}

	for name, hist := range m.histograms {
		hist.mu.Lock()
		snapshot[name] = map[string]int64{
			"count": hist.count,
			"sum":   hist.sum,
			"min":   hist.min,
			"max":   hist.max,
		}
		hist.mu.Unlock()
	}

	return snapshot
}

// OperationMetrics records metrics for dispatched planning operations
type OperationMetrics struct {
	metrics *MetricsCollector
	logger  *Logger
}

// NewOperationMetrics creates a new operation metrics recorder
func NewOperationMetrics() *OperationMetrics {
	return &OperationMetrics{
		metrics: GetMetricsCollector(),
		logger:  GetLogger(),
	}
}

// RecordOperation records one dispatched operation with its outcome and duration
func (om *OperationMetrics) RecordOperation(operation string, success bool, duration time.Duration) {
	om.metrics.IncrementCounter("ops_total")
	om.metrics.IncrementCounter("ops_" + operation)
	if !success {
		om.metrics.IncrementCounter("ops_failed_total")
		om.metrics.IncrementCounter("ops_failed_" + operation)
	}
	om.metrics.RecordHistogram("ops_duration_ms", duration.Milliseconds())

	om.logger.Debug("operation completed", map[string]interface{}{
		"operation": operation,
		"success":   success,
		"duration":  duration.Milliseconds(),
	})
}

// RecordError records an error metric by type and component
func (om *OperationMetrics) RecordError(errorType, component string) {
	om.metrics.IncrementCounter("errors_total")
	om.metrics.IncrementCounter("errors_" + errorType)
	om.metrics.IncrementCounter("errors_" + component)
}
