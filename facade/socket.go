// File: facade/socket.go
// Author: momentics <momentics@gmail.com>
//
// Socket is the thin public wrapper spec.md §6 EXPANSION describes.
// Bind/Connect run on the caller's goroutine; only the Session/Engine
// plugging for each accepted or dialed TCP connection is posted to the
// owning Reactor as a Command by transport/tcp (onAccepted runs there).
// Send/Recv call straight through to the underlying socket.Pattern since
// patterns are designed to be driven synchronously from a single
// user-facing goroutine (internal/socket/pipeset.go).

package facade

import (
	"sync"
	"time"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/control"
	"github.com/nanozmq/zmqcore/internal/session"
	"github.com/nanozmq/zmqcore/internal/socket"
	"github.com/nanozmq/zmqcore/reactor"
	"github.com/nanozmq/zmqcore/transport/tcp"
)

// SendFlag modifies one Socket.Send call.
type SendFlag int

const (
	SendDefault SendFlag = 0
	// SendMore marks this frame as followed by at least one more frame
	// of the same logical message.
	SendMore SendFlag = 1 << 0
)

// Socket is a pattern-typed endpoint bound to zero or more transports.
// The zero value is not usable; build one with Context.NewSocket.
type Socket struct {
	ctx     *Context
	kind    api.SocketType
	pattern socket.Pattern
	re      *reactor.Reactor

	mu          sync.Mutex
	opts        socketOptions
	listeners   []*tcp.Listener
	connectors  []*tcp.Connector
	inprocAddrs []string
	closed      bool
}

// Type reports the ZeroMQ socket kind this Socket was created with.
func (s *Socket) Type() api.SocketType { return s.kind }

// LastEndpoint returns the most recently bound TCP listener's actual
// address, mirroring the reference library's ZMQ_LAST_ENDPOINT option —
// useful after binding to "tcp://127.0.0.1:0" to learn the ephemeral
// port the kernel picked.
func (s *Socket) LastEndpoint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listeners) == 0 {
		return "", api.ErrNotSupported
	}
	return s.listeners[len(s.listeners)-1].Addr().String(), nil
}

// Bind starts accepting peers at endpoint ("tcp://host:port" or
// "inproc://name").
func (s *Socket) Bind(endpoint string) error {
	scheme, addr, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}
	s.mu.Lock()
	closed := s.closed
	maxMsgSize := s.ctx.cfg.MaxMsgSize
	s.mu.Unlock()
	if closed {
		return api.ErrTerm
	}

	switch scheme {
	case schemeTCP:
		ln, err := tcp.Listen(addr, s.re, s.ctx.pool, maxMsgSize, s.kind, s.onAccepted)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.listeners = append(s.listeners, ln)
		s.mu.Unlock()
	case schemeInproc:
		if err := s.ctx.inproc.Bind(addr, s.pattern); err != nil {
			return err
		}
		s.mu.Lock()
		s.inprocAddrs = append(s.inprocAddrs, addr)
		s.mu.Unlock()
	}
	s.ctx.logger.Info("bind", control.F("endpoint", endpoint), control.F("socket_type", s.kind.String()))
	return nil
}

// Connect dials out to endpoint, reconnecting with backoff on a tcp://
// endpoint, or splicing directly into an already-bound inproc:// one.
func (s *Socket) Connect(endpoint string) error {
	scheme, addr, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}
	s.mu.Lock()
	closed := s.closed
	maxMsgSize := s.ctx.cfg.MaxMsgSize
	ivl, ivlMax := s.opts.reconnectIvl, s.opts.reconnectIvlMax
	s.mu.Unlock()
	if closed {
		return api.ErrTerm
	}

	switch scheme {
	case schemeTCP:
		c := tcp.Connect(addr, s.re, s.ctx.pool, maxMsgSize, s.kind, ivl, ivlMax, s.onAccepted)
		s.mu.Lock()
		s.connectors = append(s.connectors, c)
		s.mu.Unlock()
	case schemeInproc:
		if err := s.ctx.inproc.Connect(addr, s.pattern); err != nil {
			return err
		}
	}
	s.ctx.logger.Info("connect", control.F("endpoint", endpoint), control.F("socket_type", s.kind.String()))
	return nil
}

// onAccepted wires a freshly plugged Session/Engine pair into this
// Socket's Pattern. Called on the owning Reactor's goroutine by both
// tcp.Listener and tcp.Connector.
func (s *Socket) onAccepted(sess *session.Session, eng *session.Engine) {
	s.mu.Lock()
	capacity, lwm := s.ctx.cfg.PipeCapacity, s.ctx.cfg.PipeLWM
	sndHWM, rcvHWM := s.opts.sndHWM, s.opts.rcvHWM
	s.mu.Unlock()

	send := session.NewPipe(capacity, sndHWM, lwm, session.PipeSend, sess.Mailbox(), sess)
	recv := session.NewPipe(capacity, rcvHWM, lwm, session.PipeRecv, sess.Mailbox(), sess)
	sess.AttachPipes(send, recv)
	s.pattern.Attach(send, recv)

	s.ctx.metrics.bumpSessions(1)
	sess.OnDetach(func(error) {
		s.pattern.Detach(send)
		s.ctx.metrics.bumpSessions(-1)
	})
}

// Send enqueues data as one frame. It returns api.ErrAgain, without
// retrying, if the pattern refuses the frame (e.g. every attached peer
// pipe is at its high-water-mark, or no peer is attached yet).
func (s *Socket) Send(data []byte, flags SendFlag) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return api.ErrTerm
	}

	buf := s.ctx.pool.Get(len(data))
	copy(buf.Bytes(), data)
	msg := api.NewMessage(buf, 0).SetMore(flags&SendMore != 0)
	if !s.pattern.Send(msg) {
		msg.Release()
		return api.ErrAgain
	}
	s.ctx.metrics.bumpSent(len(data))
	return nil
}

// Recv dequeues the next available frame. more reports whether another
// frame of the same logical message follows.
func (s *Socket) Recv() (data []byte, more bool, err error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, false, api.ErrTerm
	}

	msg, ok := s.pattern.Recv()
	if !ok {
		return nil, false, api.ErrAgain
	}
	data = append([]byte(nil), msg.Data()...)
	more = msg.More()
	msg.Release()
	s.ctx.metrics.bumpRecvd(len(data))
	return data, more, nil
}

// SetOption applies one socket-level tunable. SUBSCRIBE/UNSUBSCRIBE only
// apply to a SUB socket.
func (s *Socket) SetOption(opt Option, value any) error {
	switch opt {
	case OptSndHWM:
		v, ok := value.(int)
		if !ok {
			return api.ErrInvalidArgument
		}
		s.mu.Lock()
		s.opts.sndHWM = v
		s.mu.Unlock()
	case OptRcvHWM:
		v, ok := value.(int)
		if !ok {
			return api.ErrInvalidArgument
		}
		s.mu.Lock()
		s.opts.rcvHWM = v
		s.mu.Unlock()
	case OptLinger:
		v, ok := value.(time.Duration)
		if !ok {
			return api.ErrInvalidArgument
		}
		s.mu.Lock()
		s.opts.linger = v
		s.mu.Unlock()
	case OptReconnectIvl:
		v, ok := value.(time.Duration)
		if !ok {
			return api.ErrInvalidArgument
		}
		s.mu.Lock()
		s.opts.reconnectIvl = v
		s.mu.Unlock()
	case OptReconnectIvlMax:
		v, ok := value.(time.Duration)
		if !ok {
			return api.ErrInvalidArgument
		}
		s.mu.Lock()
		s.opts.reconnectIvlMax = v
		s.mu.Unlock()
	case OptIdentity:
		id, ok := value.([]byte)
		if !ok {
			return api.ErrInvalidArgument
		}
		s.mu.Lock()
		s.opts.identity = append([]byte(nil), id...)
		s.mu.Unlock()
	case OptSubscribe, OptUnsubscribe:
		topic, ok := value.([]byte)
		if !ok {
			return api.ErrInvalidArgument
		}
		sub, ok := s.pattern.(*socket.Sub)
		if !ok {
			return api.ErrNotSupported
		}
		if opt == OptSubscribe {
			sub.Subscribe(topic)
		} else {
			sub.Unsubscribe(topic)
		}
	default:
		return api.ErrNotSupported
	}
	return nil
}

// GetOption reads back a previously set socket-level tunable.
func (s *Socket) GetOption(opt Option) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch opt {
	case OptSndHWM:
		return s.opts.sndHWM, nil
	case OptRcvHWM:
		return s.opts.rcvHWM, nil
	case OptLinger:
		return s.opts.linger, nil
	case OptReconnectIvl:
		return s.opts.reconnectIvl, nil
	case OptReconnectIvlMax:
		return s.opts.reconnectIvlMax, nil
	case OptIdentity:
		return append([]byte(nil), s.opts.identity...), nil
	default:
		return nil, api.ErrNotSupported
	}
}

// Close stops accepting/dialing new peers, waits up to the configured
// LINGER for outbound traffic to drain (§7 EXPANSION, scenario S6), then
// detaches from the owning Context. Safe to call once; later calls are
// no-ops.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listeners, connectors, linger := s.listeners, s.connectors, s.opts.linger
	inprocAddrs := s.inprocAddrs
	s.mu.Unlock()

	for _, ln := range listeners {
		ln.Close()
	}
	for _, c := range connectors {
		c.Close()
	}
	for _, addr := range inprocAddrs {
		s.ctx.inproc.Unbind(addr)
	}
	s.drainLinger(linger)
	s.ctx.unregisterSocket(s)
	return nil
}

func (s *Socket) drainLinger(linger time.Duration) {
	if linger == 0 {
		return
	}
	var deadline time.Time
	bounded := linger > 0
	if bounded {
		deadline = time.Now().Add(linger)
	}
	for s.pattern.Pending() > 0 {
		if bounded && time.Now().After(deadline) {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
