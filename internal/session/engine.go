// File: internal/session/engine.go
// Author: momentics <momentics@gmail.com>
//
// Engine runs the byte-stream I/O loop for one connection and mediates
// between raw bytes and whole messages (§4.4). It owns exactly one
// transport handle, one Decoder and one Encoder, and lives on the same
// reactor thread as its Session for its entire life.

package session

import (
	"errors"
	"io"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/codec"
	"github.com/nanozmq/zmqcore/reactor"
)

// EngineState mirrors §3's {handshaking, active, stalled, closed}.
type EngineState = api.EngineState

// sessionHost is the slice of *Session an Engine needs: deliver a decoded
// message, and supply outbound ones. Kept as an interface so this file
// doesn't need to know about Session's pipe bookkeeping.
type sessionHost interface {
	codec.MessageSource
	DeliverMessage(api.Message) bool
	EngineDetached(err error)
}

// engineReactor is the slice of a Reactor an Engine needs to manage its
// own fd's readiness. *reactor.Reactor satisfies it; tests can supply a
// lighter fake instead of standing up a real epoll instance.
type engineReactor interface {
	AddFD(fd uintptr, p reactor.Pollable, pollIn, pollOut bool) error
	RmFD(fd uintptr) error
	SetPollIn(fd uintptr) error
	ResetPollIn(fd uintptr) error
	SetPollOut(fd uintptr) error
	ResetPollOut(fd uintptr) error
}

const greetingSize = 12

// Engine is a reactor.Pollable bound to one NetConn for its whole life.
type Engine struct {
	conn       api.NetConn
	dec        *codec.Decoder
	enc        *codec.Encoder
	session    sessionHost
	re         engineReactor
	socketType api.SocketType
	state      EngineState

	greetOut    [greetingSize]byte
	greetOutPos int
	greetIn     [greetingSize]byte
	greetInPos  int

	pollOutArmed bool

	// pending holds a fully-decoded Message that DeliverMessage refused
	// (recvPipe at HWM). It must be delivered before any further frame is
	// popped from the decoder — dropping it would lose a message the
	// decoder has already committed to.
	pending    api.Message
	hasPending bool
}

var _ reactor.Pollable = (*Engine)(nil)

// NewEngine wraps conn for socketType. Call Plug once it is registered
// with a Reactor.
func NewEngine(conn api.NetConn, pool api.BufferPool, maxMsgSize int64, socketType api.SocketType) *Engine {
	e := &Engine{conn: conn, socketType: socketType, state: api.EngineHandshaking}
	e.dec = codec.NewDecoder(pool, maxMsgSize)
	buildGreeting(&e.greetOut, socketType)
	return e
}

func buildGreeting(g *[greetingSize]byte, socketType api.SocketType) {
	g[0] = 0xFF
	for i := 1; i <= 8; i++ {
		g[i] = 0
	}
	g[9] = 0x7F
	g[10] = 0x01
	g[11] = byte(socketType)
}

// Plug binds the engine into session, registers its fd for readiness with
// re, and begins the greeting exchange. Engine and session must live on
// re's own goroutine from this point on.
func (e *Engine) Plug(session sessionHost, re engineReactor) error {
	e.session = session
	e.re = re
	e.enc = codec.NewEncoder(session)
	if err := re.AddFD(e.conn.RawFD(), e, true, true); err != nil {
		return err
	}
	e.pollOutArmed = true
	return nil
}

// Terminate unregisters and closes the transport handle and notifies the
// session. Safe to call more than once.
func (e *Engine) Terminate(err error) {
	if e.state == api.EngineClosed {
		return
	}
	e.state = api.EngineClosed
	if e.re != nil {
		e.re.RmFD(e.conn.RawFD())
	}
	e.conn.Close()
	if e.session != nil {
		e.session.EngineDetached(err)
	}
}

// RestartInput re-arms read-readiness after the session had stalled it.
// The pipe that just gained free space may be the one holding the
// previously-refused pending message, so that message is retried first;
// poll-in only re-arms once it is actually delivered.
func (e *Engine) RestartInput() {
	if e.state == api.EngineClosed {
		return
	}
	if !e.deliverPending() {
		return
	}
	e.state = api.EngineActive
	e.re.SetPollIn(e.conn.RawFD())
}

// RestartOutput re-arms write-readiness after the encoder had stalled.
func (e *Engine) RestartOutput() {
	if e.state == api.EngineClosed || e.pollOutArmed {
		return
	}
	e.pollOutArmed = true
	e.re.SetPollOut(e.conn.RawFD())
}

// OnReadable implements reactor.Pollable.
func (e *Engine) OnReadable() {
	if e.state == api.EngineHandshaking {
		e.readGreeting()
		return
	}
	if e.state == api.EngineClosed {
		return
	}
	e.readFrames()
}

// OnWritable implements reactor.Pollable.
func (e *Engine) OnWritable() {
	if e.state == api.EngineHandshaking {
		e.writeGreeting()
		return
	}
	if e.state == api.EngineClosed {
		return
	}
	e.writeFrames()
}

func (e *Engine) readGreeting() {
	n, err := e.conn.Read(e.greetIn[e.greetInPos:])
	if n > 0 {
		e.greetInPos += n
	}
	if err != nil && !errors.Is(err, api.ErrAgain) {
		if err == io.EOF {
			e.Terminate(api.NewError(api.KindIO, "engine: peer closed during handshake", err))
			return
		}
		e.Terminate(api.NewError(api.KindIO, "engine: greeting read failed", err))
		return
	}
	if e.greetInPos < greetingSize {
		return
	}
	if e.greetIn[0] != 0xFF || e.greetIn[9] != 0x7F {
		e.Terminate(api.NewError(api.KindProtocol, "engine: bad greeting signature", nil))
		return
	}
	e.finishHandshakeIfReady()
}

func (e *Engine) writeGreeting() {
	n, err := e.conn.Write(e.greetOut[e.greetOutPos:])
	if n > 0 {
		e.greetOutPos += n
	}
	if err != nil && !errors.Is(err, api.ErrAgain) {
		e.Terminate(api.NewError(api.KindIO, "engine: greeting write failed", err))
		return
	}
	if e.greetOutPos >= greetingSize {
		e.re.ResetPollOut(e.conn.RawFD())
		e.pollOutArmed = false
	}
	e.finishHandshakeIfReady()
}

func (e *Engine) finishHandshakeIfReady() {
	if e.greetOutPos < greetingSize || e.greetInPos < greetingSize {
		return
	}
	e.state = api.EngineActive
	// Messages queued while the greeting was in flight produced no new
	// ACTIVATE_READ edge, so re-arm write-readiness to flush them.
	e.RestartOutput()
}

func (e *Engine) readFrames() {
	for {
		buf := e.dec.GetBuffer()
		n, err := e.conn.Read(buf)
		if n > 0 {
			if perr := e.dec.ProcessBuffer(n); perr != nil {
				e.Terminate(perr)
				return
			}
			e.drainDecoded()
			if e.state == api.EngineStalled {
				return
			}
		}
		if err != nil {
			if errors.Is(err, api.ErrAgain) {
				return
			}
			if err == io.EOF {
				e.Terminate(nil)
				return
			}
			e.Terminate(api.NewError(api.KindIO, "engine: read failed", err))
			return
		}
		if n == 0 {
			return
		}
	}
}

func (e *Engine) drainDecoded() {
	if !e.deliverPending() {
		e.state = api.EngineStalled
		e.re.ResetPollIn(e.conn.RawFD())
		return
	}
	for {
		msg, ok := e.dec.Pop()
		if !ok {
			return
		}
		if !e.session.DeliverMessage(msg) {
			// Downstream pipe is full: stash the message rather than
			// dropping it, and stall reads until restart_input.
			e.pending = msg
			e.hasPending = true
			e.state = api.EngineStalled
			e.re.ResetPollIn(e.conn.RawFD())
			return
		}
	}
}

// deliverPending retries a previously-refused decoded message, if any.
// Returns true when there is nothing pending or the pending message was
// just delivered; false if it was refused again.
func (e *Engine) deliverPending() bool {
	if !e.hasPending {
		return true
	}
	if !e.session.DeliverMessage(e.pending) {
		return false
	}
	e.pending = api.Message{}
	e.hasPending = false
	return true
}

func (e *Engine) writeFrames() {
	for {
		chunk, ok := e.enc.Pending()
		if !ok {
			if e.pollOutArmed {
				e.re.ResetPollOut(e.conn.RawFD())
				e.pollOutArmed = false
			}
			return
		}
		n, err := e.conn.Write(chunk)
		if n > 0 {
			e.enc.Advance(n)
		}
		if err != nil {
			if errors.Is(err, api.ErrAgain) {
				return
			}
			e.Terminate(api.NewError(api.KindIO, "engine: write failed", err))
			return
		}
		if n < len(chunk) {
			return
		}
	}
}
