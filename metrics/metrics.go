package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects connection pool counters
type Metrics struct {
	// Connection metrics
	ConnectionsActive int64
	ConnectionsTotal  int64
	ConnectionsFailed int64
	ConnectionsBroken int64

	// Checkout metrics
	CheckoutsTotal    int64
	CheckoutsWaited   int64
	CheckoutsRejected int64

	// Keep-alive metrics
	KeepAliveSuccess int64
	KeepAliveFailed  int64

	// Connect latency
	TotalConnectMs int64
	MaxConnectMs   int64

	LastError     string
	LastErrorTime time.Time

	mu sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementConnectionsActive() {
	atomic.AddInt64(&m.ConnectionsActive, 1)
}

func (m *Metrics) DecrementConnectionsActive() {
	atomic.AddInt64(&m.ConnectionsActive, -1)
}

func (m *Metrics) IncrementConnectionsTotal() {
	atomic.AddInt64(&m.ConnectionsTotal, 1)
}

func (m *Metrics) IncrementConnectionsFailed() {
	atomic.AddInt64(&m.ConnectionsFailed, 1)
}

func (m *Metrics) IncrementConnectionsBroken() {
	atomic.AddInt64(&m.ConnectionsBroken, 1)
}

func (m *Metrics) IncrementCheckoutsTotal() {
	atomic.AddInt64(&m.CheckoutsTotal, 1)
}

func (m *Metrics) IncrementCheckoutsWaited() {
	atomic.AddInt64(&m.CheckoutsWaited, 1)
}

func (m *Metrics) IncrementCheckoutsRejected() {
	atomic.AddInt64(&m.CheckoutsRejected, 1)
}

// RecordKeepAlive counts one keep-alive round
func (m *Metrics) RecordKeepAlive(err error) {
	if err != nil {
		atomic.AddInt64(&m.KeepAliveFailed, 1)
		m.RecordError(err)
		return
	}
	atomic.AddInt64(&m.KeepAliveSuccess, 1)
}

// RecordConnectLatency records how long a new connection took to establish
func (m *Metrics) RecordConnectLatency(latencyMs int64) {
	atomic.AddInt64(&m.TotalConnectMs, latencyMs)

	for {
		currentMax := atomic.LoadInt64(&m.MaxConnectMs)
		if latencyMs <= currentMax {
			break
		}
		if atomic.CompareAndSwapInt64(&m.MaxConnectMs, currentMax, latencyMs) {
			break
		}
	}
}

// RecordError remembers the most recent error
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastError = err.Error()
	m.LastErrorTime = time.Now()
}

// GetAverageConnectMs returns average connect latency in milliseconds
func (m *Metrics) GetAverageConnectMs() int64 {
	total := atomic.LoadInt64(&m.TotalConnectMs)
	count := atomic.LoadInt64(&m.ConnectionsTotal)

	if count == 0 {
		return 0
	}

	return total / count
}

// GetSnapshot returns a point-in-time copy safe to serialize
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		ConnectionsActive: atomic.LoadInt64(&m.ConnectionsActive),
		ConnectionsTotal:  atomic.LoadInt64(&m.ConnectionsTotal),
		ConnectionsFailed: atomic.LoadInt64(&m.ConnectionsFailed),
		ConnectionsBroken: atomic.LoadInt64(&m.ConnectionsBroken),
		CheckoutsTotal:    atomic.LoadInt64(&m.CheckoutsTotal),
		CheckoutsWaited:   atomic.LoadInt64(&m.CheckoutsWaited),
		CheckoutsRejected: atomic.LoadInt64(&m.CheckoutsRejected),
		KeepAliveSuccess:  atomic.LoadInt64(&m.KeepAliveSuccess),
		KeepAliveFailed:   atomic.LoadInt64(&m.KeepAliveFailed),
		AverageConnectMs:  m.GetAverageConnectMs(),
		MaxConnectMs:      atomic.LoadInt64(&m.MaxConnectMs),
		LastError:         m.LastError,
		LastErrorTime:     m.LastErrorTime,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics. The last error
// carries driver detail and is never serialized.
type MetricsSnapshot struct {
	ConnectionsActive int64     `json:"connections_active"`
	ConnectionsTotal  int64     `json:"connections_total"`
	ConnectionsFailed int64     `json:"connections_failed"`
	ConnectionsBroken int64     `json:"connections_broken"`
	CheckoutsTotal    int64     `json:"checkouts_total"`
	CheckoutsWaited   int64     `json:"checkouts_waited"`
	CheckoutsRejected int64     `json:"checkouts_rejected"`
	KeepAliveSuccess  int64     `json:"keepalive_success"`
	KeepAliveFailed   int64     `json:"keepalive_failed"`
	AverageConnectMs  int64     `json:"average_connect_ms"`
	MaxConnectMs      int64     `json:"max_connect_ms"`
	LastError         string    `json:"-"`
	LastErrorTime     time.Time `json:"-"`
}
