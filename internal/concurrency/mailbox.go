// File: internal/concurrency/mailbox.go
// Author: momentics <momentics@gmail.com>
//
// Mailbox is a lock-based producer/consumer queue of Commands addressed to
// one owner object, paired with a Signaler for readiness (§3, §4.2). The
// Signaler is signalled if and only if a producer observed the queue
// transition from empty to non-empty and no consumer drain has matched it
// yet — send() never blocks the producer on a consumer.
//
// The FIFO itself is github.com/eapache/queue's ring-buffer queue rather
// than a bare Go slice: Add/Remove are amortized O(1) without the slice
// re-slicing a plain []api.Command queue would need on every drain.

package concurrency

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/nanozmq/zmqcore/api"
)

// Mailbox delivers Commands to a single owner, FIFO per sender (§5).
type Mailbox struct {
	mu       sync.Mutex
	q        *queue.Queue
	signaler *Signaler
	closed   bool
}

// NewMailbox creates a Mailbox with its own Signaler.
func NewMailbox() (*Mailbox, error) {
	sig, err := NewSignaler()
	if err != nil {
		return nil, err
	}
	return &Mailbox{q: queue.New(), signaler: sig}, nil
}

// Signaler exposes the readiness primitive for reactor registration.
func (m *Mailbox) Signaler() *Signaler { return m.signaler }

// Send enqueues cmd, signalling the Signaler exactly on the empty->non-empty
// transition. Never blocks the producer on a consumer.
func (m *Mailbox) Send(cmd api.Command) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return api.ErrTerm
	}
	wasEmpty := m.q.Length() == 0
	m.q.Add(cmd)
	// Signal under the lock so a consumer that drains this command cannot
	// try to consume the edge before it has been posted.
	if wasEmpty {
		m.signaler.Send()
	}
	m.mu.Unlock()
	return nil
}

// Recv drains one Command. If the queue is empty it waits on the Signaler
// up to timeout (same semantics as Signaler.Wait: <0 blocks, 0 polls, >0
// bounds the wait in milliseconds) and retries once.
func (m *Mailbox) Recv(timeout time.Duration) (api.Command, bool) {
	if cmd, ok := m.tryRecv(); ok {
		return cmd, true
	}
	if !m.signaler.Wait(timeout) {
		return api.Command{}, false
	}
	return m.tryRecv()
}

func (m *Mailbox) tryRecv() (api.Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q.Length() == 0 {
		return api.Command{}, false
	}
	v := m.q.Peek()
	m.q.Remove()
	if m.q.Length() == 0 {
		// Queue drained back to empty: consume the matching edge so a
		// future empty->non-empty transition signals again.
		m.signaler.Recv()
	}
	return v.(api.Command), true
}

// Close marks the mailbox closed; further Sends fail with ErrTerm.
func (m *Mailbox) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.signaler.Close()
}
