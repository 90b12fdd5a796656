// File: transport/tcp/listener.go
// Author: momentics <momentics@gmail.com>
//
// Listener runs an accept loop the way the teacher's StartTCPListener did
// (a goroutine per accepted connection handing off to a handler), but
// instead of an RFC 6455 WebSocket handshake it wires each accepted
// connection into a fresh Engine/Session pair bound to a chosen Reactor.
// Accept runs on its own goroutine (net.Listener.Accept blocks); the
// actual Engine/Session plug happens on the Reactor's goroutine via a
// Command, since only Commands may cross threads (§5).

package tcp

import (
	"net"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/control"
	"github.com/nanozmq/zmqcore/internal/session"
	"github.com/nanozmq/zmqcore/reactor"
)

var listenerLog = control.NewLogger("tcp")

// OnSession is called, on the owning Reactor's goroutine, once a new
// Session/Engine pair has been plugged in. The caller attaches whatever
// socket-pattern Pipes it needs before returning.
type OnSession func(sess *session.Session, eng *session.Engine)

type commandFunc func(api.Command)

func (f commandFunc) HandleCommand(cmd api.Command) { f(cmd) }

type Listener struct {
	ln         net.Listener
	re         *reactor.Reactor
	pool       api.BufferPool
	maxMsgSize int64
	socketType api.SocketType
	onSession  OnSession
	closeCh    chan struct{}
}

// Listen binds addr and starts accepting connections for socketType,
// handing each one to onSession once its Engine reaches the reactor
// goroutine.
func Listen(addr string, re *reactor.Reactor, pool api.BufferPool, maxMsgSize int64, socketType api.SocketType, onSession OnSession) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		ln:         ln,
		re:         re,
		pool:       pool,
		maxMsgSize: maxMsgSize,
		socketType: socketType,
		onSession:  onSession,
		closeCh:    make(chan struct{}),
	}
	go l.acceptLoop()
	return l, nil
}

// Addr returns the bound local address, e.g. for ":0" ephemeral binds.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) acceptLoop() {
	for {
		nc, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.closeCh:
				return
			default:
			}
			listenerLog.Warn("accept failed", control.F("err", err))
			continue
		}
		l.handleAccept(nc)
	}
}

func (l *Listener) handleAccept(nc net.Conn) {
	c, err := newConn(nc)
	if err != nil {
		listenerLog.Error("raw fd extraction failed", control.F("err", err))
		nc.Close()
		return
	}
	l.re.Mailbox().Send(api.Command{Dest: commandFunc(func(api.Command) {
		l.plugOnReactor(c)
	})})
}

func (l *Listener) plugOnReactor(c *conn) {
	eng := session.NewEngine(c, l.pool, l.maxMsgSize, l.socketType)
	sess, err := session.NewSession()
	if err != nil {
		listenerLog.Error("session init failed", control.F("err", err))
		c.Close()
		return
	}
	if err := eng.Plug(sess, l.re); err != nil {
		listenerLog.Error("engine plug failed", control.F("err", err))
		c.Close()
		return
	}
	if err := sess.Plug(l.re); err != nil {
		listenerLog.Error("session plug failed", control.F("err", err))
		eng.Terminate(err)
		return
	}
	sess.AttachEngine(eng)
	if l.onSession != nil {
		l.onSession(sess, eng)
	}
}

// Close stops accepting new connections. In-flight Sessions are
// unaffected.
func (l *Listener) Close() error {
	close(l.closeCh)
	return l.ln.Close()
}
