package session

import (
	"sync"
	"sync/atomic"
)

// StopSignal aggregates stop requests from any number of trigger sources
// (the explicit stop key, the out-of-band Esc path) into one idempotent,
// monotonic state. The first call wins; every later call is a no-op.
//
// The requested flag is polled by the streaming assembler between
// fragments, and Done lets an in-flight request context be cancelled so
// a blocked stream read unblocks.
type StopSignal struct {
	once      sync.Once
	requested atomic.Bool
	early     atomic.Bool
	done      chan struct{}
}

func NewStopSignal() *StopSignal {
	return &StopSignal{
		done: make(chan struct{}),
	}
}

// Request marks the session as stopped. early records whether no user
// message had been accepted at the moment of the first call; it is
// ignored on every call after the first. Returns true iff this call was
// the first.
func (s *StopSignal) Request(early bool) bool {
	fired := false
	s.once.Do(func() {
		if early {
			s.early.Store(true)
		}
		s.requested.Store(true)
		close(s.done)
		fired = true
	})
	return fired
}

func (s *StopSignal) Requested() bool {
	return s.requested.Load()
}

func (s *StopSignal) StoppedEarly() bool {
	return s.early.Load()
}

// Done is closed on the first stop request.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}
