package observability

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type routeKey struct {
	method string
	path   string
	status int
}

// Metrics keeps in-process request and error counters, keyed by route.
// They exist for the periodic log report and reset on restart.
type Metrics struct {
	mu        sync.Mutex
	started   time.Time
	requests  map[routeKey]int64
	errors    map[string]int64
	totalReqs int64
	totalErrs int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:  time.Now(),
		requests: make(map[routeKey]int64),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts one served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[routeKey{method: method, path: path, status: status}]++
	m.totalReqs++
}

// RecordError counts one request that ended in a domain error, keyed by
// error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[code]++
	m.totalErrs++
}

// Snapshot returns the totals plus the per-code error breakdown.
func (m *Metrics) Snapshot() (requests, errs int64, byCode map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCode = make(map[string]int64, len(m.errors))
	for code, n := range m.errors {
		byCode[code] = n
	}
	return m.totalReqs, m.totalErrs, byCode
}

// StartMetricsReporter logs a counter snapshot at the given interval
// until the context is cancelled.
func StartMetricsReporter(ctx context.Context, logger *zap.Logger, metrics *Metrics, interval time.Duration) {
	if metrics == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				requests, errs, byCode := metrics.Snapshot()
				logger.Info("request counters",
					zap.Int64("requests", requests),
					zap.Int64("errors", errs),
					zap.Any("errors_by_code", byCode),
					zap.Duration("uptime", time.Since(metrics.started).Round(time.Second)))
			}
		}
	}()
}
