package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/angeloszaimis/cluster-monitor/internal/cluster"
	"github.com/angeloszaimis/cluster-monitor/internal/metrics"
	"github.com/angeloszaimis/cluster-monitor/internal/probe"
	"github.com/angeloszaimis/cluster-monitor/internal/retry"
)

//go:generate mockgen -destination=../mocks/mock_connector.go -package=mocks . Connector

// Connector opens a session against the cluster. *cluster.Client implements it.
type Connector interface {
	Connect(ctx context.Context) (cluster.Session, error)
}

var (
	ErrAlreadyStarted = errors.New("monitor already started")
	ErrShuttingDown   = errors.New("monitor is shutting down")
)

type Options struct {
	Retry retry.Policy
	Probe probe.Config
}

type Monitor struct {
	connector Connector
	opts      Options
	events    chan<- metrics.MetricEvent
	log       *slog.Logger

	mutex        sync.Mutex
	state        State
	started      bool
	shuttingDown bool
	armed        bool
	session      cluster.Session
	cancel       context.CancelFunc

	done         chan struct{}
	shutdownOnce sync.Once
}

// New returns a monitor in NOT_CONNECTED. events may be nil.
func New(connector Connector, opts Options, events chan<- metrics.MetricEvent, log *slog.Logger) *Monitor {
	m := &Monitor{
		connector: connector,
		opts:      opts,
		events:    events,
		log:       log,
		state:     StateNotConnected,
		done:      make(chan struct{}),
	}
	metrics.Send(events, metrics.MetricEvent{Type: metrics.EventStateChanged, State: StateNotConnected.String()})
	return m
}

// Start connects, retrying on the configured policy, and arms the probe. It
// returns once the probe goroutine is running. Errors are unrecoverable: the
// caller is expected to Shutdown.
func (m *Monitor) Start(ctx context.Context) error {
	m.mutex.Lock()
	if m.started {
		m.mutex.Unlock()
		return ErrAlreadyStarted
	}
	if m.shuttingDown {
		m.mutex.Unlock()
		return ErrShuttingDown
	}
	m.started = true

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.setState(StateConnecting)
	m.mutex.Unlock()

	session, err := m.connect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			m.log.Info("Stopped connecting to cluster")
		} else {
			m.log.Error("Giving up connecting to cluster", slog.String("error", err.Error()))
		}
		cancel()
		return fmt.Errorf("connect: %w", err)
	}

	m.mutex.Lock()
	if m.shuttingDown {
		m.mutex.Unlock()
		session.Close()
		return ErrShuttingDown
	}
	m.session = session
	m.setState(StateConnected)
	m.setState(StateScheduling)
	m.mutex.Unlock()

	p, err := probe.New(session, m.opts.Probe, m.events, m.log)
	if err != nil {
		cancel()
		return fmt.Errorf("schedule probe: %w", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.shuttingDown {
		return ErrShuttingDown
	}

	m.armed = true
	go func() {
		defer close(m.done)
		p.Run(ctx)
	}()
	m.setState(StateRunning)

	return nil
}

func (m *Monitor) connect(ctx context.Context) (cluster.Session, error) {
	var session cluster.Session

	err := m.opts.Retry.Do(ctx, func(ctx context.Context) error {
		s, err := m.connector.Connect(ctx)
		metrics.Send(m.events, metrics.MetricEvent{Type: metrics.EventConnectAttempt, Success: err == nil})
		if err != nil {
			return err
		}
		session = s
		return nil
	}, func(attempt int, err error, next time.Duration) {
		m.log.Error("Unable to connect to cluster",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", next),
			slog.String("error", err.Error()))
	})

	return session, err
}

// Shutdown stops the probe, waits for an in-flight query and closes the
// session if it is open. Only the first call does any work; later calls
// return once it has finished.
func (m *Monitor) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.log.Info("Shutting down")

		m.mutex.Lock()
		m.shuttingDown = true
		cancel := m.cancel
		armed := m.armed
		m.setState(StateShuttingDown)
		m.mutex.Unlock()

		if cancel != nil {
			cancel()
		}

		if armed {
			<-m.done
		} else {
			close(m.done)
		}

		m.mutex.Lock()
		session := m.session
		m.mutex.Unlock()

		if session != nil && !session.Closed() {
			session.Close()
		}

		m.mutex.Lock()
		m.setState(StateClosed)
		m.mutex.Unlock()

		m.log.Info("Done.")
	})
}

// Wait blocks until the probe goroutine has exited, or until Shutdown if the
// probe was never armed.
func (m *Monitor) Wait() {
	<-m.done
}

func (m *Monitor) State() State {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.state
}

// setState must be called with m.mutex held.
func (m *Monitor) setState(state State) {
	previous := m.state
	m.state = state

	m.log.Debug("State changed",
		slog.String("from", previous.String()),
		slog.String("to", state.String()))
	metrics.Send(m.events, metrics.MetricEvent{Type: metrics.EventStateChanged, State: state.String()})
}
