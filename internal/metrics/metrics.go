package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxLatencySamples = 1000

type Metrics struct {
	mutex           sync.RWMutex
	connectAttempts int64
	connectFailures int64
	queries         int64
	queryFailures   int64
	latencies       []time.Duration
	lastQueryAt     time.Time
	lastQueryOK     bool
	lastError       string
	up              bool
	state           string
	startTime       time.Time
}

type Snapshot struct {
	State           string        `json:"state"`
	Uptime          time.Duration `json:"uptime"`
	Up              bool          `json:"up"`
	ConnectAttempts int64         `json:"connect_attempts"`
	ConnectFailures int64         `json:"connect_failures"`
	Queries         int64         `json:"queries"`
	QueryFailures   int64         `json:"query_failures"`
	LastQueryOK     bool          `json:"last_query_ok"`
	LastQueryAt     time.Time     `json:"last_query_at,omitzero"`
	LastError       string        `json:"last_error,omitempty"`
	AvgLatency      time.Duration `json:"avg_latency"`
	P50Latency      time.Duration `json:"p50_latency"`
	P95Latency      time.Duration `json:"p95_latency"`
	P99Latency      time.Duration `json:"p99_latency"`
}

func (m *Metrics) RecordConnectAttempt(success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.connectAttempts++
	if !success {
		m.connectFailures++
	}
}

func (m *Metrics) RecordQuery(at time.Time, duration time.Duration, success bool, errMsg string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.queries++
	m.lastQueryAt = at
	m.lastQueryOK = success

	if success {
		m.latencies = append(m.latencies, duration)
		if len(m.latencies) > maxLatencySamples {
			m.latencies = m.latencies[1:]
		}
		return
	}

	m.queryFailures++
	m.lastError = errMsg
}

func (m *Metrics) UpdateAvailability(up bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.up = up
}

// UpdateState records the lifecycle state and returns the previous one.
func (m *Metrics) UpdateState(state string) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	previous := m.state
	m.state = state
	return previous
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		State:           m.state,
		Uptime:          time.Since(m.startTime),
		Up:              m.up,
		ConnectAttempts: m.connectAttempts,
		ConnectFailures: m.connectFailures,
		Queries:         m.queries,
		QueryFailures:   m.queryFailures,
		LastQueryOK:     m.lastQueryOK,
		LastQueryAt:     m.lastQueryAt,
		LastError:       m.lastError,
	}

	if len(m.latencies) > 0 {
		sorted := make([]time.Duration, len(m.latencies))
		copy(sorted, m.latencies)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})

		snap.AvgLatency = average(sorted)
		snap.P50Latency = percentile(sorted, 0.50)
		snap.P95Latency = percentile(sorted, 0.95)
		snap.P99Latency = percentile(sorted, 0.99)
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
