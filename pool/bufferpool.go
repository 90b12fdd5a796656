// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
//
// Size-classed, refcounted buffer pool backing Message payloads. Get
// returns a buffer at refcount 1; Release decrements the refcount and
// recycles the backing array into its size class once it reaches zero.
// Grounded on the teacher library's NUMA-local slab size-class table,
// simplified to a single cross-platform pool since the ZeroMQ wire layer
// has no notion of NUMA locality (see DESIGN.md).

package pool

import "github.com/nanozmq/zmqcore/api"

var sizeClasses = [...]int{
	256,
	1024,
	4 * 1024,
	16 * 1024,
	64 * 1024,
	256 * 1024,
	1024 * 1024,
}

func sizeClassUpperBound(n int) (int, bool) {
	for _, c := range sizeClasses {
		if n <= c {
			return c, true
		}
	}
	return n, false // oversize: allocate exactly, don't pool
}

// Manager routes Get requests to the slab pool for the smallest size class
// that fits the request; NewManager builds every size class's pool up
// front.
type Manager struct {
	classes map[int]*slabPool
}

var _ api.BufferPool = (*Manager)(nil)

// NewManager creates a buffer pool manager with every size class pre-built.
func NewManager() *Manager {
	m := &Manager{classes: make(map[int]*slabPool, len(sizeClasses))}
	for _, c := range sizeClasses {
		m.classes[c] = newSlabPool(c)
	}
	return m
}

// Get returns a Buffer of at least n bytes, refcount 1.
func (m *Manager) Get(n int) api.Buffer {
	class, pooled := sizeClassUpperBound(n)
	if !pooled {
		return newBuffer(make([]byte, n), nil)
	}
	return m.classes[class].get(n)
}

// Stats aggregates allocation counters across every size class.
func (m *Manager) Stats() api.BufferPoolStats {
	var s api.BufferPoolStats
	for _, p := range m.classes {
		ps := p.stats()
		s.TotalAlloc += ps.TotalAlloc
		s.TotalFree += ps.TotalFree
		s.InUse += ps.InUse
	}
	return s
}
