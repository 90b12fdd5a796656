// File: internal/session/fakeconn_test.go
// Author: momentics <momentics@gmail.com>
//
// A minimal in-process duplex NetConn pair for driving Engine/Session
// tests without a real socket or Reactor: writes to one side become
// readable on the other, and an empty inbox reports api.ErrAgain rather
// than blocking, matching how a non-blocking transport behaves.

package session

import (
	"bytes"
	"sync"

	"github.com/nanozmq/zmqcore/api"
)

type fakeConn struct {
	mu     sync.Mutex
	inbox  bytes.Buffer
	closed bool
}

func newFakeConnPair() (*fakeConn, *fakeConn) {
	a := &fakeConn{}
	b := &fakeConn{}
	return a, b
}

func (c *fakeConn) deliver(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inbox.Write(p)
}

func (c *fakeConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inbox.Len() == 0 {
		return 0, api.ErrAgain
	}
	return c.inbox.Read(p)
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) RawFD() uintptr { return 0 }

// wiredConn writes into its peer's inbox instead of an OS socket.
type wiredConn struct {
	*fakeConn
	peer *fakeConn
}

func wirePair() (*wiredConn, *wiredConn) {
	a, b := newFakeConnPair()
	return &wiredConn{fakeConn: a, peer: b}, &wiredConn{fakeConn: b, peer: a}
}

func (c *wiredConn) Write(p []byte) (int, error) {
	c.peer.deliver(p)
	return len(p), nil
}

var _ api.NetConn = (*wiredConn)(nil)
