package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angeloszaimis/cluster-monitor/internal/cluster"
	"github.com/angeloszaimis/cluster-monitor/internal/metrics"
)

const Statement = "select now() from system.local;"

var ErrInvalidInterval = errors.New("probe interval must be positive")

type Config struct {
	Interval time.Duration
	// Timeout bounds a single query. Zero uses the driver read timeout.
	Timeout       time.Duration
	DownThreshold int
}

type Probe struct {
	session cluster.Session
	cfg     Config
	status  *Status
	events  chan<- metrics.MetricEvent
	log     *slog.Logger
}

// New prepares a probe over session. events may be nil.
func New(session cluster.Session, cfg Config, events chan<- metrics.MetricEvent, log *slog.Logger) (*Probe, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, cfg.Interval)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cluster.DefaultReadTimeout
	}

	return &Probe{
		session: session,
		cfg:     cfg,
		status:  NewStatus(cfg.DownThreshold),
		events:  events,
		log:     log,
	}, nil
}

// Run ticks once immediately and then every Interval until ctx is done.
// Ticks run one after another on the calling goroutine; a tick that outlasts
// the interval delays the next one and the missed ticks are dropped.
func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Probe stopped")
			return

		case <-ticker.C:
			// A tick may have been queued while shutdown began.
			if ctx.Err() != nil {
				p.log.Info("Probe stopped")
				return
			}
			p.Tick(ctx)
		}
	}
}

// Tick executes the liveness query once. Failures are logged and returned,
// never propagated as panics. The query is not cancelled with ctx; it is
// bounded by the query timeout only.
func (p *Probe) Tick(ctx context.Context) (err error) {
	queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("liveness query panicked: %v", r)
		}
		p.complete(start, time.Since(start), err)
	}()

	return p.session.Exec(queryCtx, Statement)
}

func (p *Probe) complete(start time.Time, latency time.Duration, err error) {
	event := metrics.MetricEvent{
		Type:      metrics.EventQueryCompleted,
		Timestamp: start,
		Duration:  latency,
		Success:   err == nil,
	}

	if err != nil {
		event.Err = err.Error()
		p.log.Error("Failed to execute query",
			slog.Duration("retry_in", p.cfg.Interval),
			slog.String("error", err.Error()))
		metrics.Send(p.events, event)

		if previous := p.status.RecordFailure(); previous != AvailabilityDown && p.status.Availability() == AvailabilityDown {
			p.log.Warn("Cluster is down", slog.Int("consecutive_failures", p.status.Failures()))
			metrics.Send(p.events, metrics.MetricEvent{Type: metrics.EventAvailabilityChanged, Success: false})
		}
		return
	}

	p.log.Info("Query OK", slog.Duration("latency", latency))
	metrics.Send(p.events, event)

	lastFailure := p.status.LastFailure()
	switch p.status.RecordSuccess() {
	case AvailabilityDown:
		p.log.Info("Cluster is back up", slog.Time("last_failure", lastFailure))
		metrics.Send(p.events, metrics.MetricEvent{Type: metrics.EventAvailabilityChanged, Success: true})
	case AvailabilityUnknown:
		metrics.Send(p.events, metrics.MetricEvent{Type: metrics.EventAvailabilityChanged, Success: true})
	}
}

func (p *Probe) Availability() Availability {
	return p.status.Availability()
}
