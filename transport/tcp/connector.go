// File: transport/tcp/connector.go
// Author: momentics <momentics@gmail.com>
//
// Connector dials out and, on failure or disconnect, retries with bounded
// exponential backoff between ReconnectIvl and ReconnectIvlMax (§7
// reconnect scenario S4): it waits ReconnectIvl before redialing after a
// disconnect, doubles the wait after each failed dial, and resets it to
// ReconnectIvl as soon as a dial succeeds, before that connection's
// handshake has run.

package tcp

import (
	"net"
	"sync"
	"time"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/control"
	"github.com/nanozmq/zmqcore/internal/session"
	"github.com/nanozmq/zmqcore/reactor"
)

var connectorLog = control.NewLogger("tcp")

// Connector maintains one outbound connection to addr, reconnecting with
// backoff whenever the Engine terminates.
type Connector struct {
	addr           string
	re             *reactor.Reactor
	pool           api.BufferPool
	maxMsgSize     int64
	socketType     api.SocketType
	onSession      OnSession
	reconnectIvl   time.Duration
	reconnectMax   time.Duration
	stopCh         chan struct{}
	dialTimeout    time.Duration
}

// Connect starts a background dial loop against addr.
func Connect(addr string, re *reactor.Reactor, pool api.BufferPool, maxMsgSize int64, socketType api.SocketType, reconnectIvl, reconnectMax time.Duration, onSession OnSession) *Connector {
	c := &Connector{
		addr:         addr,
		re:           re,
		pool:         pool,
		maxMsgSize:   maxMsgSize,
		socketType:   socketType,
		onSession:    onSession,
		reconnectIvl: reconnectIvl,
		reconnectMax: reconnectMax,
		dialTimeout:  5 * time.Second,
		stopCh:       make(chan struct{}),
	}
	go c.dialLoop()
	return c
}

func (c *Connector) dialLoop() {
	backoff := c.reconnectIvl
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}
		nc, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
		if err != nil {
			connectorLog.Warn("dial failed, retrying", control.F("addr", c.addr), control.F("err", err), control.F("backoff", backoff.String()))
			if !c.sleep(backoff) {
				return
			}
			backoff = nextBackoff(backoff, c.reconnectMax)
			continue
		}
		backoff = c.reconnectIvl
		if !c.plugAndWait(nc) {
			return
		}
		if !c.sleep(backoff) {
			return
		}
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if max > 0 && next > max {
		return max
	}
	return next
}

func (c *Connector) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.stopCh:
		return false
	}
}

// plugAndWait wires nc into a new Engine/Session and blocks until that
// Engine detaches (error, EOF, or explicit Terminate), then returns
// whether the dial loop should continue.
func (c *Connector) plugAndWait(nc net.Conn) bool {
	conn, err := newConn(nc)
	if err != nil {
		connectorLog.Error("raw fd extraction failed", control.F("err", err))
		nc.Close()
		return true
	}

	plugDone := make(chan struct{})
	detached := make(chan struct{})
	var once sync.Once
	markDetached := func(error) { once.Do(func() { close(detached) }) }

	c.re.Mailbox().Send(api.Command{Dest: commandFunc(func(api.Command) {
		defer close(plugDone)
		eng := session.NewEngine(conn, c.pool, c.maxMsgSize, c.socketType)
		sess, err := session.NewSession()
		if err != nil {
			connectorLog.Error("session init failed", control.F("err", err))
			conn.Close()
			markDetached(err)
			return
		}
		sess.OnDetach(markDetached)
		if err := eng.Plug(sess, c.re); err != nil {
			connectorLog.Error("engine plug failed", control.F("err", err))
			conn.Close()
			markDetached(err)
			return
		}
		if err := sess.Plug(c.re); err != nil {
			connectorLog.Error("session plug failed", control.F("err", err))
			eng.Terminate(err)
			return
		}
		sess.AttachEngine(eng)
		if c.onSession != nil {
			c.onSession(sess, eng)
		}
	})})
	<-plugDone
	<-detached
	return true
}

// Close stops the dial loop. An in-flight connection is left running.
func (c *Connector) Close() {
	close(c.stopCh)
}
