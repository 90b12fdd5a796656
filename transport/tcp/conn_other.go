// File: transport/tcp/conn_other.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux platforms have no reactor backend (reactor/backend_other.go)
// so a raw-fd TCP transport has nothing to drive it; these stubs exist
// only so the package still builds elsewhere.

//go:build !linux

package tcp

import "github.com/nanozmq/zmqcore/api"

func rawRead(fd uintptr, p []byte) (int, error) {
	return 0, api.ErrNotSupported
}

func rawWrite(fd uintptr, p []byte) (int, error) {
	return 0, api.ErrNotSupported
}
