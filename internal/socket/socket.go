// File: internal/socket/socket.go
// Author: momentics <momentics@gmail.com>
//
// Package socket implements the pattern-specific send/recv behavior sitting
// between the public Socket facade and the per-peer Pipes a Session
// maintains (§6 EXPANSION). Each pattern is a plain Go type rather than a
// class hierarchy; the facade selects one at construction time by socket
// kind and never type-switches on it afterward.

package socket

import (
	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/internal/session"
)

// Pipe is one direction of a peer connection; see pipeset.go for how a
// pattern pairs two of them (send, recv) per peer.
type Pipe = session.Pipe

// Message is re-exported for brevity within this package's files.
type Message = api.Message

// Pattern is implemented by every socket-type collaborator. Attach binds
// a new peer's pipe pair: send is the pipe this pattern writes outbound
// messages into, recv is the one it reads inbound messages from — the
// same two Pipes a Session holds as sendPipe/recvPipe from the opposite
// end. Send/Recv return false for directions the pattern doesn't support
// (e.g. PUSH never yields from Recv); the facade reports that with
// ErrAgain, the same as an empty or full pipe.
type Pattern interface {
	Type() api.SocketType
	Attach(send, recv *Pipe)
	Detach(send *Pipe)
	Send(msg api.Message) bool
	Recv() (api.Message, bool)
	// Pending reports outbound messages enqueued but not yet delivered to
	// any peer's Engine, so a facade Socket's linger-bounded Close can
	// wait for it to reach zero instead of dropping in-flight traffic.
	Pending() int
}

// New builds the Pattern implementation for kind. pool backs the small
// control/delimiter/identity frames PUB, SUB, REQ, REP and ROUTER
// allocate; it is unused by PAIR, PUSH, PULL and DEALER.
func New(kind api.SocketType, pool api.BufferPool) Pattern {
	switch kind {
	case api.Pair:
		return NewPair()
	case api.Push:
		return NewPush()
	case api.Pull:
		return NewPull()
	case api.Pub:
		return NewPub(pool)
	case api.Sub:
		return NewSub(pool)
	case api.Req:
		return NewReq(pool)
	case api.Rep:
		return NewRep(pool)
	case api.Dealer:
		return NewDealer()
	case api.Router:
		return NewRouter(pool)
	default:
		return nil
	}
}
