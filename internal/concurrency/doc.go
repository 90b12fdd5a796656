// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
//
// Cross-thread signaling primitives: a self-pipe Signaler, the
// Mailbox built on top of it for posting Commands across goroutines
// (queued with github.com/eapache/queue), the generic SPSC RingBuffer
// backing session Pipe queues, and the MPMC LockFreeQueue backing the
// buffer pool's free list. Linux and other platforms are split by build
// tag where the underlying wakeup mechanism differs (a pipe watched by a
// one-fd epoll instance on Linux vs. a one-slot channel elsewhere).
package concurrency
