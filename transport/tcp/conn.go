// File: transport/tcp/conn.go
// Author: momentics <momentics@gmail.com>
//
// conn adapts a net.Conn to api.NetConn by pulling its raw file descriptor
// out via SyscallConn().Control and then driving all I/O directly against
// that fd with the platform syscalls in conn_linux.go/conn_other.go,
// exactly the way the teacher's reactor_echo example extracts a descriptor
// from net.TCPConn for its own reactor (examples/reactor_echo/main.go,
// socket_unix.go). net.Conn itself is kept only to own the fd's lifetime
// and supply Close/RemoteAddr; its buffered Read/Write are bypassed so our
// Reactor is the only reader of readiness on this fd.
package tcp

import (
	"net"
	"syscall"

	"github.com/nanozmq/zmqcore/api"
)

type conn struct {
	nc net.Conn
	fd uintptr
}

var _ api.NetConn = (*conn)(nil)

type syscallConner interface {
	SyscallConn() (syscall.RawConn, error)
}

func newConn(nc net.Conn) (*conn, error) {
	sc, ok := nc.(syscallConner)
	if !ok {
		return nil, api.NewError(api.KindProtocol, "tcp: connection has no raw fd", nil)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, err
	}
	var fd uintptr
	if ctrlErr := raw.Control(func(f uintptr) { fd = f }); ctrlErr != nil {
		return nil, ctrlErr
	}
	return &conn{nc: nc, fd: fd}, nil
}

func (c *conn) Read(p []byte) (int, error)  { return rawRead(c.fd, p) }
func (c *conn) Write(p []byte) (int, error) { return rawWrite(c.fd, p) }
func (c *conn) Close() error                { return c.nc.Close() }
func (c *conn) RawFD() uintptr              { return c.fd }

func (c *conn) RemoteAddr() string { return c.nc.RemoteAddr().String() }
