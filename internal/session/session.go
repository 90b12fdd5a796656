// File: internal/session/session.go
// Author: momentics <momentics@gmail.com>
//
// Session routes decoded messages from its Engine to the appropriate
// Pipe's write end, and pulls messages from the Pipe's read end to feed
// the Engine's encoder, applying the Pipe's high-water-mark flow control
// (§4.4). It owns zero or one Engine and its two directional Pipes, and
// lives on the same reactor goroutine as the Engine for its whole life.
//
// Only the Session side of a Pipe needs an asynchronous wakeup: it may be
// blocked in the reactor's readiness wait when the peer socket (driven
// synchronously by user-thread Send/Recv calls) changes the pipe's
// occupancy. The socket side never needs a matching wakeup — a refused
// Send or an empty Recv simply returns EAGAIN for the caller to retry.

package session

import (
	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/internal/concurrency"
	"github.com/nanozmq/zmqcore/reactor"
)

// SessionState mirrors §3's {active, delaying, terminating, terminated}.
type SessionState = api.SessionState

// Session mediates between one Engine and the user-facing Pipes of a
// socket connection.
type Session struct {
	engine   *Engine
	sendPipe *Pipe // socket -> session -> engine encoder
	recvPipe *Pipe // engine decoder -> session -> socket
	state    SessionState
	mailbox  *concurrency.Mailbox

	pendingPipeTerms int
	onDetach         []func(error)
}

var _ api.CommandHandler = (*Session)(nil)

// NewSession creates a Session with its own Mailbox for pipe activation
// and lifecycle commands.
func NewSession() (*Session, error) {
	mb, err := concurrency.NewMailbox()
	if err != nil {
		return nil, err
	}
	return &Session{mailbox: mb, state: api.SessionActive}, nil
}

// Mailbox exposes the Session's inbox for cross-thread Commands.
func (s *Session) Mailbox() *concurrency.Mailbox { return s.mailbox }

// OnDetach registers a callback invoked from EngineDetached every time
// this Session's Engine detaches. A Connector uses this to know when to
// redial rather than polling Session.State; a facade Socket uses it to
// keep its active-session count accurate. Callbacks accumulate — each
// registration adds one, it does not replace a previous one.
func (s *Session) OnDetach(fn func(error)) { s.onDetach = append(s.onDetach, fn) }

// Plug registers the Session's own Mailbox with re so Pipe notifications
// (ACTIVATE_READ, ACTIVATE_WRITE, PIPE_TERM) posted from another goroutine
// reach HandleCommand on re's own goroutine, the same way Engine registers
// its transport fd.
func (s *Session) Plug(re engineReactor) error {
	return re.AddFD(s.mailbox.Signaler().FD(), reactor.NewMailboxDrain(s.mailbox), true, false)
}

// State reports the current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// AttachPipes binds the Session's two directional Pipes. Call once, at
// construction time, before the Session is reachable from any other
// goroutine.
func (s *Session) AttachPipes(send, recv *Pipe) {
	s.sendPipe = send
	s.recvPipe = recv
}

// AttachEngine binds (or rebinds, after a reconnect) the Engine driving
// this Session's byte stream.
func (s *Session) AttachEngine(e *Engine) {
	s.engine = e
	s.state = api.SessionActive
}

// PullMessage implements codec.MessageSource for the Engine's Encoder.
func (s *Session) PullMessage() (api.Message, bool) {
	if s.sendPipe == nil {
		return api.Message{}, false
	}
	msg, ok := s.sendPipe.Read()
	if !ok {
		return api.Message{}, false
	}
	return msg, true
}

// DeliverMessage routes a Message decoded by the Engine into recvPipe.
// Returns false if the pipe refused it (at HWM); the Engine must stall
// reads until a matching ACTIVATE_WRITE arrives.
func (s *Session) DeliverMessage(msg api.Message) bool {
	if s.recvPipe == nil {
		msg.Release()
		return true
	}
	if !s.recvPipe.Write(msg) {
		return false
	}
	return true
}

// EngineDetached is called by the Engine on terminate, EOF, or a fatal
// I/O or protocol error.
func (s *Session) EngineDetached(err error) {
	s.engine = nil
	if s.state == api.SessionTerminating {
		s.finishTerminateIfReady()
	} else {
		s.state = api.SessionDelaying
	}
	for _, fn := range s.onDetach {
		fn(err)
	}
}

// HandleCommand implements api.CommandHandler. Commands reach a Session
// from a Pipe's peer notification (ACTIVATE_READ/ACTIVATE_WRITE) or from
// the owning socket/context requesting termination.
func (s *Session) HandleCommand(cmd api.Command) {
	switch cmd.Tag {
	case api.CmdActivateRead:
		// sendPipe gained data: resume a stalled encoder.
		if s.engine != nil {
			s.engine.RestartOutput()
		}
	case api.CmdActivateWrite:
		// recvPipe gained free space: resume a stalled decoder.
		if s.engine != nil {
			s.engine.RestartInput()
		}
	case api.CmdPipeTerm:
		if p, ok := cmd.Arg.(*Pipe); ok {
			p.Detach()
		}
	case api.CmdTerm:
		s.BeginTerminate()
	}
}

// BeginTerminate starts orderly shutdown: the Engine is asked to
// terminate, and both Pipes are marked detached once it acknowledges.
func (s *Session) BeginTerminate() {
	if s.state == api.SessionTerminating || s.state == api.SessionTerminated {
		return
	}
	s.state = api.SessionTerminating
	if s.engine != nil {
		s.engine.Terminate(nil)
		return
	}
	s.finishTerminateIfReady()
}

func (s *Session) finishTerminateIfReady() {
	s.state = api.SessionTerminated
	if s.sendPipe != nil {
		s.sendPipe.Detach()
	}
	if s.recvPipe != nil {
		s.recvPipe.Detach()
	}
}
