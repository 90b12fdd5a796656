//go:build linux

// File: internal/concurrency/signaler_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux self-pipe Signaler: a non-blocking pipe(2) pair plus a dedicated
// one-fd epoll instance for wait(), mirroring JeroMQ's Signaler (a
// Pipe.SourceChannel registered with a Selector) and the teacher library's
// epoll reactor backend.

package concurrency

import (
	"time"

	"golang.org/x/sys/unix"
)

type linuxSignalerBackend struct {
	r, w int
	epfd int
}

func newSignalerBackend() (signalerBackend, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(p[0])
		unix.Close(p[1])
		return nil, err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(p[0])}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, p[0], &ev); err != nil {
		unix.Close(p[0])
		unix.Close(p[1])
		unix.Close(epfd)
		return nil, err
	}
	return &linuxSignalerBackend{r: p[0], w: p[1], epfd: epfd}, nil
}

func (b *linuxSignalerBackend) send() error {
	buf := [1]byte{0}
	for {
		n, err := unix.Write(b.w, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		return nil
	}
}

func (b *linuxSignalerBackend) recv() error {
	var buf [1]byte
	for {
		_, err := unix.Read(b.r, buf[:])
		if err == unix.EINTR {
			// Spurious wake: retry, per §9's resolved open question.
			continue
		}
		return err
	}
}

func (b *linuxSignalerBackend) wait(timeout time.Duration) bool {
	ms := -1
	if timeout == 0 {
		ms = 0
	} else if timeout > 0 {
		ms = int(timeout.Milliseconds())
	}
	var events [1]unix.EpollEvent
	for {
		n, err := unix.EpollWait(b.epfd, events[:], ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false
		}
		return n > 0
	}
}

func (b *linuxSignalerBackend) fd() uintptr { return uintptr(b.r) }

func (b *linuxSignalerBackend) close() error {
	err1 := unix.Close(b.r)
	err2 := unix.Close(b.w)
	err3 := unix.Close(b.epfd)
	if err1 != nil {
		return err1
	}
	if err2 != nil {
		return err2
	}
	if err3 != nil {
		return err3
	}
	return nil
}
