package cluster

import (
	"context"
	"errors"
	"sync"

	"github.com/gocql/gocql"
)

//go:generate mockgen -destination=../mocks/mock_session.go -package=mocks . Session

var ErrSessionClosed = errors.New("session is closed")

// Session is the slice of the driver session the monitor uses.
type Session interface {
	Exec(ctx context.Context, stmt string) error
	Close()
	Closed() bool
}

type guardedSession struct {
	mutex  sync.RWMutex
	inner  Session
	closed bool
}

// Guard wraps s so that Close waits for in-flight Exec calls, closes s at
// most once, and Exec after Close fails with ErrSessionClosed.
func Guard(s Session) Session {
	return &guardedSession{inner: s}
}

func (g *guardedSession) Exec(ctx context.Context, stmt string) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if g.closed {
		return ErrSessionClosed
	}
	return g.inner.Exec(ctx, stmt)
}

func (g *guardedSession) Close() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.closed {
		return
	}
	g.closed = true
	g.inner.Close()
}

func (g *guardedSession) Closed() bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.closed
}

type driverSession struct {
	session *gocql.Session
}

func (d *driverSession) Exec(ctx context.Context, stmt string) error {
	return d.session.Query(stmt).WithContext(ctx).Exec()
}

func (d *driverSession) Close() {
	d.session.Close()
}

func (d *driverSession) Closed() bool {
	return d.session.Closed()
}
