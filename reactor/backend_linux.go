//go:build linux

// File: reactor/backend_linux.go
// Author: momentics <momentics@gmail.com>
//
// epoll-backed reactorBackend, grounded directly on the teacher library's
// reactor/epoll_reactor.go.

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

type epollBackend struct {
	epfd int
}

func newReactorBackend() (reactorBackend, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollBackend{epfd: epfd}, nil
}

func epollMask(readable, writable bool) uint32 {
	var m uint32
	if readable {
		m |= unix.EPOLLIN
	}
	if writable {
		m |= unix.EPOLLOUT
	}
	return m
}

func (b *epollBackend) add(fd uintptr, readable, writable bool) error {
	ev := unix.EpollEvent{Events: epollMask(readable, writable), Fd: int32(fd)}
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev)
}

func (b *epollBackend) modify(fd uintptr, readable, writable bool) error {
	ev := unix.EpollEvent{Events: epollMask(readable, writable), Fd: int32(fd)}
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev)
}

func (b *epollBackend) remove(fd uintptr) error {
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, int(fd), nil)
}

const maxEpollEvents = 256

func (b *epollBackend) poll(timeout time.Duration, cb func(fd uintptr, readable, writable, errored bool)) error {
	ms := -1
	if timeout == 0 {
		ms = 0
	} else if timeout > 0 {
		ms = int(timeout.Milliseconds())
		if ms == 0 {
			ms = 1
		}
	}
	var events [maxEpollEvents]unix.EpollEvent
	n, err := unix.EpollWait(b.epfd, events[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		ev := events[i]
		readable := ev.Events&unix.EPOLLIN != 0
		writable := ev.Events&unix.EPOLLOUT != 0
		errored := ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0
		cb(uintptr(ev.Fd), readable, writable, errored)
	}
	return nil
}

func (b *epollBackend) close() error {
	return unix.Close(b.epfd)
}
