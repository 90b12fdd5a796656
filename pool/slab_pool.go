// File: pool/slab_pool.go
// Package pool implements lock-free slab allocation with size-class reuse.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync/atomic"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/internal/concurrency"
)

// slabPool holds free backing arrays for exactly one size class. A Buffer's
// last Release may happen on any goroutine (the reactor that read it, or a
// user thread that held onto it), so the free list must tolerate concurrent
// producers and consumers, not just a single reactor thread.
type slabPool struct {
	size       int
	free       *concurrency.LockFreeQueue[[]byte]
	totalAlloc atomic.Uint64
	totalFree  atomic.Uint64
}

const defaultPoolCapacity = 4096

func newSlabPool(size int) *slabPool {
	return &slabPool{
		size: size,
		free: concurrency.NewLockFreeQueue[[]byte](defaultPoolCapacity),
	}
}

// get returns a Buffer bound to this pool, refcount 1. Its backing array
// has capacity size but is truncated to n bytes.
func (sp *slabPool) get(n int) api.Buffer {
	if raw, ok := sp.free.Dequeue(); ok {
		return newBuffer(raw[:n], sp)
	}
	sp.totalAlloc.Add(1)
	return newBuffer(make([]byte, n, sp.size), sp)
}

// put returns a backing array to the free ring; if the ring is full the
// array is dropped and left for the garbage collector.
func (sp *slabPool) put(raw []byte) {
	if sp.free.Enqueue(raw[:0:sp.size]) {
		sp.totalFree.Add(1)
	}
}

func (sp *slabPool) stats() api.BufferPoolStats {
	alloc := int64(sp.totalAlloc.Load())
	freed := int64(sp.totalFree.Load())
	return api.BufferPoolStats{TotalAlloc: alloc, TotalFree: freed, InUse: alloc - freed}
}
