// File: pool/buffer.go
// Author: momentics <momentics@gmail.com>
//
// Buffer is a refcounted byte slice implementing api.Buffer. Release is
// safe to call from any goroutine; only the call that drops the count to
// zero returns the backing array to its owning slab pool.

package pool

import (
	"sync/atomic"

	"github.com/nanozmq/zmqcore/api"
)

type buffer struct {
	raw      []byte
	refcount atomic.Int32
	owner    *slabPool // nil for one-shot oversize allocations
}

func newBuffer(raw []byte, owner *slabPool) *buffer {
	b := &buffer{raw: raw, owner: owner}
	b.refcount.Store(1)
	return b
}

func (b *buffer) Bytes() []byte { return b.raw }

func (b *buffer) Len() int { return len(b.raw) }

func (b *buffer) Retain() { b.refcount.Add(1) }

func (b *buffer) Release() {
	if b.refcount.Add(-1) != 0 {
		return
	}
	if b.owner != nil {
		b.owner.put(b.raw)
	}
}

var _ api.Buffer = (*buffer)(nil)
