// File: transport/tcp/conn_linux.go
// Author: momentics <momentics@gmail.com>
//
// Raw fd read/write for Linux, grounded on the teacher's
// examples/reactor_echo/socket_unix.go but using golang.org/x/sys/unix
// (already the module's dependency for the Signaler and Reactor backends)
// instead of the standard syscall package, translating EAGAIN into
// api.ErrAgain and a zero-byte read into io.EOF so Engine's retry and
// termination logic stays platform-agnostic.

//go:build linux

package tcp

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/nanozmq/zmqcore/api"
)

func rawRead(fd uintptr, p []byte) (int, error) {
	n, err := unix.Read(int(fd), p)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, api.ErrAgain
		}
		return 0, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func rawWrite(fd uintptr, p []byte) (int, error) {
	n, err := unix.Write(int(fd), p)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return n, api.ErrAgain
		}
		return n, err
	}
	return n, nil
}
