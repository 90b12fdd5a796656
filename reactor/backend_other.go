//go:build !linux

// File: reactor/backend_other.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux platforms have no epoll. A faithful multiplexer needs a
// kqueue or IOCP backend per platform; building and grounding those wasn't
// justified for this pass, so this stub declines rather than faking
// readiness semantics, matching the teacher library's reactor_stub.go.

package reactor

import "errors"

func newReactorBackend() (reactorBackend, error) {
	return nil, errors.New("reactor: this platform is not supported")
}
