// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Reactor is the single-threaded readiness multiplexer each Session/Engine
// pair is pinned to for its lifetime (§3, §4.3). All registration methods
// (AddFD, RmFD, SetPollIn, ...) are safe to call only from the goroutine
// running Reactor.Run — they mutate the registry with no locking, mirroring
// the affinity rule that a Session/Engine never touches another thread's
// state directly.
//
// Cross-thread work reaches a Reactor exclusively through its Mailbox: the
// Mailbox's Signaler is registered as just another pollable fd, and a ready
// Mailbox is drained and each Command dispatched to cmd.Dest.HandleCommand,
// a tagged-variant dispatch rather than a virtual method hierarchy per
// object kind.

package reactor

import (
	"sort"
	"time"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/internal/concurrency"
)

// Pollable receives readiness callbacks for a registered fd.
type Pollable interface {
	OnReadable()
	OnWritable()
}

// TimerHandler receives a callback when a timer it owns fires.
type TimerHandler interface {
	OnTimer(id int)
}

type pollEntry struct {
	fd       uintptr
	p        Pollable
	readable bool
	writable bool
}

type timerEntry struct {
	id       int
	deadline time.Time
	interval time.Duration // 0 means one-shot
	handler  TimerHandler
	canceled bool
}

type reactorBackend interface {
	add(fd uintptr, readable, writable bool) error
	modify(fd uintptr, readable, writable bool) error
	remove(fd uintptr) error
	poll(timeout time.Duration, cb func(fd uintptr, readable, writable, errored bool)) error
	close() error
}

// Reactor runs one readiness-multiplexer loop on its own goroutine.
type Reactor struct {
	backend     reactorBackend
	mailbox     *concurrency.Mailbox
	entries     map[uintptr]*pollEntry
	timers      []*timerEntry
	nextTimerID int
	stopCh      chan struct{}
	stoppedCh   chan struct{}
}

// New creates a Reactor with its own Mailbox for cross-thread Commands.
func New() (*Reactor, error) {
	backend, err := newReactorBackend()
	if err != nil {
		return nil, err
	}
	mb, err := concurrency.NewMailbox()
	if err != nil {
		backend.close()
		return nil, err
	}
	r := &Reactor{
		backend:   backend,
		mailbox:   mb,
		entries:   make(map[uintptr]*pollEntry),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	if err := backend.add(mb.Signaler().FD(), true, false); err != nil {
		backend.close()
		return nil, err
	}
	return r, nil
}

// Mailbox returns the Reactor's inbox for cross-thread Commands.
func (r *Reactor) Mailbox() *concurrency.Mailbox { return r.mailbox }

// AddFD registers fd with p as its readiness callback target. Call only
// from the Reactor's own goroutine.
func (r *Reactor) AddFD(fd uintptr, p Pollable, pollIn, pollOut bool) error {
	if err := r.backend.add(fd, pollIn, pollOut); err != nil {
		return err
	}
	r.entries[fd] = &pollEntry{fd: fd, p: p, readable: pollIn, writable: pollOut}
	return nil
}

// RmFD unregisters fd. Call only from the Reactor's own goroutine.
func (r *Reactor) RmFD(fd uintptr) error {
	delete(r.entries, fd)
	return r.backend.remove(fd)
}

func (r *Reactor) setPoll(fd uintptr, readable, writable bool) error {
	e, ok := r.entries[fd]
	if !ok {
		return api.NewError(api.KindInvalidState, "reactor: fd not registered", nil)
	}
	e.readable, e.writable = readable, writable
	return r.backend.modify(fd, readable, writable)
}

// SetPollIn arms read readiness for fd.
func (r *Reactor) SetPollIn(fd uintptr) error {
	e, ok := r.entries[fd]
	if !ok {
		return api.NewError(api.KindInvalidState, "reactor: fd not registered", nil)
	}
	return r.setPoll(fd, true, e.writable)
}

// ResetPollIn disarms read readiness for fd.
func (r *Reactor) ResetPollIn(fd uintptr) error {
	e, ok := r.entries[fd]
	if !ok {
		return api.NewError(api.KindInvalidState, "reactor: fd not registered", nil)
	}
	return r.setPoll(fd, false, e.writable)
}

// SetPollOut arms write readiness for fd.
func (r *Reactor) SetPollOut(fd uintptr) error {
	e, ok := r.entries[fd]
	if !ok {
		return api.NewError(api.KindInvalidState, "reactor: fd not registered", nil)
	}
	return r.setPoll(fd, e.readable, true)
}

// ResetPollOut disarms write readiness for fd.
func (r *Reactor) ResetPollOut(fd uintptr) error {
	e, ok := r.entries[fd]
	if !ok {
		return api.NewError(api.KindInvalidState, "reactor: fd not registered", nil)
	}
	return r.setPoll(fd, e.readable, false)
}

// AddTimer schedules handler to fire after d; repeat reschedules it every d
// until canceled. Returns a timer id usable with CancelTimer.
func (r *Reactor) AddTimer(d time.Duration, repeat bool, handler TimerHandler) int {
	r.nextTimerID++
	id := r.nextTimerID
	interval := time.Duration(0)
	if repeat {
		interval = d
	}
	t := &timerEntry{id: id, deadline: nowFunc().Add(d), interval: interval, handler: handler}
	r.timers = append(r.timers, t)
	sort.Slice(r.timers, func(i, j int) bool { return r.timers[i].deadline.Before(r.timers[j].deadline) })
	return id
}

// CancelTimer disarms a previously scheduled timer. Safe to call for a
// timer that has already fired once as a one-shot.
func (r *Reactor) CancelTimer(id int) error {
	for _, t := range r.timers {
		if t.id == id {
			t.canceled = true
			return nil
		}
	}
	return api.NewError(api.KindInvalidState, "reactor: unknown timer id", nil)
}

// nowFunc is overridden in tests that need deterministic timer behaviour.
var nowFunc = time.Now

func (r *Reactor) nextTimeout() time.Duration {
	r.pruneTimers()
	if len(r.timers) == 0 {
		return -1
	}
	d := r.timers[0].deadline.Sub(nowFunc())
	if d < 0 {
		return 0
	}
	return d
}

func (r *Reactor) pruneTimers() {
	live := r.timers[:0]
	for _, t := range r.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	r.timers = live
}

func (r *Reactor) fireDueTimers() {
	now := nowFunc()
	for _, t := range r.timers {
		if t.canceled || now.Before(t.deadline) {
			continue
		}
		t.handler.OnTimer(t.id)
		if t.interval > 0 && !t.canceled {
			t.deadline = now.Add(t.interval)
		} else {
			t.canceled = true
		}
	}
	r.pruneTimers()
	sort.Slice(r.timers, func(i, j int) bool { return r.timers[i].deadline.Before(r.timers[j].deadline) })
}

func (r *Reactor) dispatchReady(fd uintptr, readable, writable, errored bool) {
	if fd == r.mailbox.Signaler().FD() {
		r.drainMailbox()
		return
	}
	e, ok := r.entries[fd]
	if !ok {
		return
	}
	if readable || errored {
		e.p.OnReadable()
	}
	if writable {
		e.p.OnWritable()
	}
}

func (r *Reactor) drainMailbox() {
	for {
		cmd, ok := r.mailbox.Recv(0)
		if !ok {
			return
		}
		if cmd.Dest != nil {
			cmd.Dest.HandleCommand(cmd)
		}
	}
}

// Run executes the readiness loop until Stop is called.
func (r *Reactor) Run() {
	defer close(r.stoppedCh)
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}
		timeout := r.nextTimeout()
		r.backend.poll(timeout, r.dispatchReady)
		r.fireDueTimers()
	}
}

// Stop signals Run to return and blocks until it has. Safe to call once.
func (r *Reactor) Stop() {
	close(r.stopCh)
	// Wake a blocked poll via the normal Mailbox path so the Signaler's
	// edge bookkeeping stays consistent; a nil Dest is dropped silently.
	r.mailbox.Send(api.Command{Tag: api.CmdStop})
	<-r.stoppedCh
	r.backend.close()
}
