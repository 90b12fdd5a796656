// File: internal/session/pipe.go
// Author: momentics <momentics@gmail.com>
//
// Pipe is the bounded, single-producer/single-consumer queue carrying
// Messages between a socket (user thread) and a session (reactor thread)
// (§3, §4.5). Every socket/session pair holds two Pipes, one per
// direction. Crossing threads never touches the peer's queue directly —
// readiness changes are posted as Commands to the peer's Mailbox.

package session

import (
	"sync/atomic"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/internal/concurrency"
)

func nextPow2(n int) uint64 {
	if n < 2 {
		return 2
	}
	size := uint64(1)
	for size < uint64(n) {
		size <<= 1
	}
	return size
}

// PipeRole distinguishes which end of a Session a Pipe feeds, so it wakes
// its peer only on the edge that end actually needs to resume on. A
// sendPipe's reader (the encoder) is the one that stalls, so only its
// fill edge matters; a recvPipe's writer (the decoder) is the one that
// stalls, so only its drain edge matters. The other edge has no stalled
// party on the reactor side to wake — the socket side never needs an
// asynchronous wakeup, per session.go's doc comment — so firing it would
// just be a pointless round trip through the peer's Mailbox.
type PipeRole int

const (
	// PipeSend carries messages from socket to engine encoder.
	PipeSend PipeRole = iota
	// PipeRecv carries messages from engine decoder to socket.
	PipeRecv
)

// Pipe is bidirectional conceptually but implemented as two one-way
// queues; this type is one direction. HWM/LWM bound how far a fast writer
// can run ahead of a slow reader.
type Pipe struct {
	queue *concurrency.RingBuffer[api.Message]
	hwm   int
	lwm   int
	role  PipeRole

	peerMailbox *concurrency.Mailbox
	peerHandler api.CommandHandler

	attached atomic.Bool
	id       []byte
}

// NewPipe creates a Pipe with capacity rounded up to a power of two. The
// peer mailbox/handler are where the pipe's one meaningful occupancy edge
// (ACTIVATE_READ for a PipeSend, ACTIVATE_WRITE for a PipeRecv) lands.
func NewPipe(capacity, hwm, lwm int, role PipeRole, peerMailbox *concurrency.Mailbox, peerHandler api.CommandHandler) *Pipe {
	p := &Pipe{
		queue:       concurrency.NewRingBuffer[api.Message](nextPow2(capacity)),
		hwm:         hwm,
		lwm:         lwm,
		role:        role,
		peerMailbox: peerMailbox,
		peerHandler: peerHandler,
	}
	p.attached.Store(true)
	return p
}

// Write enqueues msg. Returns false if the pipe is at or above its
// high-water-mark or has been detached; no message is ever silently
// dropped. A refused Engine (the writer of a PipeRecv) waits for
// ACTIVATE_WRITE; a refused socket-side writer gets EAGAIN and retries.
// A write into a previously empty PipeSend wakes the peer with
// ACTIVATE_READ to resume a stalled encoder; a PipeRecv has no stalled
// party on this edge.
func (p *Pipe) Write(msg api.Message) bool {
	if !p.attached.Load() || p.queue.Len() >= p.hwm {
		return false
	}
	wasEmpty := p.queue.Len() == 0
	if !p.queue.Enqueue(msg) {
		return false
	}
	if wasEmpty && p.role == PipeSend {
		p.NotifyPeer(api.CmdActivateRead)
	}
	return true
}

// Read dequeues the oldest message, if any. A read that drains a PipeRecv
// back down to its low-water-mark (or to just under the high-water-mark,
// when the LWM is not below it) wakes the peer with ACTIVATE_WRITE to
// resume a stalled decoder; a PipeSend has no stalled party on this edge.
func (p *Pipe) Read() (api.Message, bool) {
	before := p.queue.Len()
	msg, ok := p.queue.Dequeue()
	resume := p.lwm
	if resume >= p.hwm {
		resume = p.hwm - 1
	}
	if ok && p.role == PipeRecv && before > resume && p.queue.Len() <= resume {
		p.NotifyPeer(api.CmdActivateWrite)
	}
	return msg, ok
}

// Len reports the current occupancy.
func (p *Pipe) Len() int { return p.queue.Len() }

// Full reports whether Write would currently be refused.
func (p *Pipe) Full() bool { return p.queue.Len() >= p.hwm }

// BelowLWM reports whether occupancy has drained enough to resume a
// stalled writer.
func (p *Pipe) BelowLWM() bool { return p.queue.Len() <= p.lwm }

// Attached reports whether the peer end is still present. Read from the
// user goroutine (e.g. pipeSet's round-robin write pick) while Detach may
// run concurrently on the reactor goroutine, so this is atomic.
func (p *Pipe) Attached() bool { return p.attached.Load() }

// Detach marks the peer end gone; further Writes are refused.
func (p *Pipe) Detach() { p.attached.Store(false) }

// ID returns the routing identity assigned to this pipe, if any. ROUTER
// sockets use this to prefix inbound messages and demultiplex outbound
// ones; other patterns leave it nil.
func (p *Pipe) ID() []byte { return p.id }

// SetID assigns the routing identity used by ROUTER sockets.
func (p *Pipe) SetID(id []byte) { p.id = id }

// NotifyPeer posts tag to the peer's Mailbox with this Pipe as payload,
// e.g. ACTIVATE_READ once data becomes available or ACTIVATE_WRITE once
// space frees up.
func (p *Pipe) NotifyPeer(tag api.CommandTag) {
	if p.peerMailbox == nil {
		return
	}
	p.peerMailbox.Send(api.Command{Tag: tag, Dest: p.peerHandler, Arg: p})
}
