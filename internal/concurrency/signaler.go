// File: internal/concurrency/signaler.go
// Author: momentics <momentics@gmail.com>
//
// Signaler is the one-slot, edge-triggered wakeup primitive a Reactor uses
// to notice cross-thread work (§3, §4.1). On Linux it is a self-pipe
// (other platforms use a one-slot channel with the same contract):
// send() writes exactly one byte, recv() reads exactly one byte, and at
// most one unconsumed signal is ever in flight — a second send before the
// matching recv is undefined behaviour, same as the reference library.
//
// Platform backends (signaler_linux.go, signaler_other.go) supply the
// actual readable/writable pair and the Wait implementation; this file
// holds the behaviour that's identical everywhere.

package concurrency

import "time"

// Signaler is a one-slot edge-triggered wakeup built from a self-pipe.
type Signaler struct {
	backend signalerBackend
}

// signalerBackend is implemented per-platform.
type signalerBackend interface {
	send() error
	recv() error
	wait(timeout time.Duration) bool
	fd() uintptr
	close() error
}

// NewSignaler constructs a platform Signaler.
func NewSignaler() (*Signaler, error) {
	b, err := newSignalerBackend()
	if err != nil {
		return nil, err
	}
	return &Signaler{backend: b}, nil
}

// Send posts one edge. A write failure is fatal to the owning object (§4.1).
func (s *Signaler) Send() {
	if err := s.backend.send(); err != nil {
		panic(err)
	}
}

// Recv consumes one edge. Per §9's resolved open question, a spurious
// interrupt during the read retries; any other error is propagated to the
// caller by panicking, matching send()'s "fatal to owner" contract — callers
// that want a non-fatal path should not call Recv without Wait having
// reported readiness first.
func (s *Signaler) Recv() {
	if err := s.backend.recv(); err != nil {
		panic(err)
	}
}

// Wait blocks until a signal is present or timeout elapses. timeout<0 blocks
// indefinitely, timeout==0 polls once, timeout>0 bounds the wait.
func (s *Signaler) Wait(timeout time.Duration) bool {
	return s.backend.wait(timeout)
}

// FD exposes a readable handle for external multiplexing by a Reactor.
func (s *Signaler) FD() uintptr { return s.backend.fd() }

// Close releases the underlying pipe and any multiplexer registration.
func (s *Signaler) Close() error { return s.backend.close() }
