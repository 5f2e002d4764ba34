package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventType string

const (
	EventConnectAttempt      EventType = "connect_attempt"
	EventQueryCompleted      EventType = "query_completed"
	EventAvailabilityChanged EventType = "availability_changed"
	EventStateChanged        EventType = "state_changed"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Duration  time.Duration
	Success   bool
	Err       string
	State     string
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	prom    *promMetrics
	logger  *slog.Logger
	done    chan struct{}
}

// NewCollector registers its Prometheus collectors with reg. A nil reg keeps
// them unregistered.
func NewCollector(bufferSize int, reg prometheus.Registerer, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		prom:    newPromMetrics(reg),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the collector has drained and stopped.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Debug("Metrics collector started")
	defer c.logger.Debug("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventConnectAttempt:
		c.metrics.RecordConnectAttempt(event.Success)
		c.prom.connectAttempts.WithLabelValues(result(event.Success)).Inc()

	case EventQueryCompleted:
		c.metrics.RecordQuery(event.Timestamp, event.Duration, event.Success, event.Err)
		c.prom.queries.WithLabelValues(result(event.Success)).Inc()
		c.prom.queryDuration.Observe(event.Duration.Seconds())

	case EventAvailabilityChanged:
		c.metrics.UpdateAvailability(event.Success)
		c.prom.clusterUp.Set(boolToFloat(event.Success))

	case EventStateChanged:
		previous := c.metrics.UpdateState(event.State)
		if previous != "" {
			c.prom.state.WithLabelValues(previous).Set(0)
		}
		c.prom.state.WithLabelValues(event.State).Set(1)

	default:
		c.logger.Warn("Unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}

// Send delivers event without blocking. It reports false when ch is nil or
// full, in which case the event is dropped.
func Send(ch chan<- MetricEvent, event MetricEvent) bool {
	if ch == nil {
		return false
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case ch <- event:
		return true
	default:
		return false
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
