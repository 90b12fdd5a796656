// File: transport/inproc/inproc.go
// Author: momentics <momentics@gmail.com>
//
// inproc connects two sockets in the same process with no Engine, no
// Decoder/Encoder, and no wire framing at all (§6 EXPANSION): Connect
// splices a pair of one-way Pipes directly between the binding and
// connecting socket's Pattern, one per direction, the same shape a
// Session holds as sendPipe/recvPipe on either side of a real transport.
// Messages cross only as Go values, never as bytes.
//
// Unlike a tcp.Engine/Session pair, neither end of an inproc connection
// lives on a reactor goroutine — both Patterns are driven synchronously
// by their owning socket's user-thread Send/Recv calls, so a refused
// Write is simply EAGAIN for the caller to retry, the same as any other
// Pattern backpressure case. Pipes here carry no peer Mailbox.
package inproc

import (
	"fmt"
	"sync"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/internal/session"
)

const (
	pipeCapacity = 1024
	pipeHWM      = 1000
	pipeLWM      = 256
)

// Pattern is the minimal slice of internal/socket.Pattern that an inproc
// endpoint needs to splice a peer in.
type Pattern interface {
	Type() api.SocketType
	Attach(send, recv *session.Pipe)
}

type endpoint struct {
	pattern Pattern
}

// Registry is a table of bound inproc addresses. Each facade Context
// creates its own, so an inproc address is visible only to sockets of the
// Context that bound it.
type Registry struct {
	mu        sync.Mutex
	endpoints map[string]*endpoint
}

// NewRegistry creates an empty inproc address table. facade.Context
// calls it once per Context, giving each Context its own inproc
// namespace.
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]*endpoint)}
}

// Bind registers pattern under addr. Returns an error if addr is already
// bound, matching inproc's one-binder-per-address rule.
func (r *Registry) Bind(addr string, pattern Pattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.endpoints[addr]; exists {
		return api.NewError(api.KindInvalidState, fmt.Sprintf("inproc: address %q already in use", addr), nil)
	}
	r.endpoints[addr] = &endpoint{pattern: pattern}
	return nil
}

// Unbind removes addr so a later Bind may reuse it. Sockets already
// connected keep their spliced Pipes; only new Connect calls are
// affected.
func (r *Registry) Unbind(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.endpoints, addr)
}

// Connect splices a pair of one-way Pipes between pattern and whatever
// is bound at addr. Returns an error if nothing is bound there yet —
// inproc has no listen backlog, so a Connect racing ahead of its Bind
// must be retried by the caller.
func (r *Registry) Connect(addr string, pattern Pattern) error {
	r.mu.Lock()
	ep, ok := r.endpoints[addr]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("inproc: no such address %q: %w", addr, api.ErrHostUnreach)
	}

	// connector -> binder
	toBinder := session.NewPipe(pipeCapacity, pipeHWM, pipeLWM, session.PipeSend, nil, nil)
	// binder -> connector
	toConnector := session.NewPipe(pipeCapacity, pipeHWM, pipeLWM, session.PipeSend, nil, nil)

	pattern.Attach(toBinder, toConnector)
	ep.pattern.Attach(toConnector, toBinder)
	return nil
}
