// Package api
// Author: momentics
//
// Zero-copy memory buffer and pooling contract shared by the codec and
// message layers. A Buffer backs exactly one Message payload (§3): it is
// refcounted so sharing a payload across pipes never copies it, and the
// underlying region returns to its pool only when the last holder drops it.

package api

// Buffer describes a resliceable, reference-counted memory region.
type Buffer interface {
	// Bytes returns an immutable view of the current buffer data.
	Bytes() []byte

	// Retain increments the reference count; pairs with Release.
	Retain()

	// Release decrements the reference count, returning the region to its
	// pool once it reaches zero. After the last Release the buffer must
	// not be used.
	Release()

	// Len returns the number of valid bytes.
	Len() int
}

// BufferPool abstracts memory region management for buffers.
type BufferPool interface {
	// Get returns a buffer sized at least n bytes, refcount 1.
	Get(n int) Buffer

	// Stats exposes resource/accounting metrics for observability.
	Stats() BufferPoolStats
}

// BufferPoolStats aggregates buffer allocation/reuse stats.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
}
