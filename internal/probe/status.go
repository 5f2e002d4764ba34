package probe

import (
	"sync"
	"time"
)

type Availability int

const (
	AvailabilityUnknown Availability = iota // No query has completed yet
	AvailabilityUp
	AvailabilityDown // Failure threshold reached
)

func (a Availability) String() string {
	switch a {
	case AvailabilityUp:
		return "UP"
	case AvailabilityDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Status counts consecutive query failures and flips to AvailabilityDown once
// the threshold is reached. A single success brings it back up.
type Status struct {
	mutex            sync.Mutex
	availability     Availability
	failures         int
	lastFailure      time.Time
	failureThreshold int
}

func NewStatus(threshold int) *Status {
	if threshold < 1 {
		threshold = 1
	}
	return &Status{
		availability:     AvailabilityUnknown,
		failureThreshold: threshold,
	}
}

// RecordSuccess returns the availability before the call.
func (s *Status) RecordSuccess() Availability {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	previous := s.availability
	s.failures = 0
	s.availability = AvailabilityUp
	return previous
}

// RecordFailure returns the availability before the call.
func (s *Status) RecordFailure() Availability {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	previous := s.availability
	s.failures++
	s.lastFailure = time.Now()

	if s.failures >= s.failureThreshold {
		s.availability = AvailabilityDown
	}
	return previous
}

func (s *Status) Availability() Availability {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.availability
}

func (s *Status) Failures() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.failures
}

func (s *Status) LastFailure() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastFailure
}
