package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters. Aggregation failures are
// counted separately because the analytics layer swallows them and an
// empty dashboard is otherwise the only symptom.
type Metrics struct {
	mu                sync.Mutex
	requestCount      map[string]int64
	errorCount        map[string]int64
	aggregationErrors map[string]int64
	mlProcessed       int64
	mlFailed          int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:      make(map[string]int64),
		errorCount:        make(map[string]int64),
		aggregationErrors: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAggregationFailure counts a swallowed analytics error per view.
func (m *Metrics) RecordAggregationFailure(view string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregationErrors[view]++
}

// AggregationFailures returns the failure count for a view.
func (m *Metrics) AggregationFailures(view string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aggregationErrors[view]
}

// RecordMLProcessed counts a completed classification.
func (m *Metrics) RecordMLProcessed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mlProcessed++
}

// RecordMLFailed counts a failed classification.
func (m *Metrics) RecordMLFailed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mlFailed++
}

// MLCounts returns processed and failed classification totals.
func (m *Metrics) MLCounts() (processed, failed int64) {
	if m == nil {
		return 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mlProcessed, m.mlFailed
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
