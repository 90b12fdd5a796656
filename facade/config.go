// File: facade/config.go
// Author: momentics <momentics@gmail.com>
//
// Config holds the values a Context is built from, mirroring the
// teacher's own immutable-per-run Config/DefaultConfig pair (§7
// EXPANSION's "configuration" ambient stack requirement). Unlike the
// teacher's Config, every field here maps onto a concrete ZeroMQ-level
// knob rather than a NUMA/DPDK/affinity one; CPUAffinity is the one
// field kept from that lineage, now pinning Reactor goroutines instead
// of WebSocket workers.

package facade

import "time"

// Config is immutable once passed to NewContextWithConfig; per-socket
// overrides go through Socket.SetOption instead.
type Config struct {
	// IOThreads is the number of Reactor goroutines a Context runs;
	// sockets are assigned to them round-robin at NewSocket time.
	IOThreads int

	// SndHWM/RcvHWM are the default per-pipe high-water-marks a new
	// Socket starts with.
	SndHWM int
	RcvHWM int

	// PipeCapacity is the ring-buffer capacity backing every Pipe;
	// PipeLWM is the low-water-mark a drained pipe must fall to before
	// its peer is woken with ACTIVATE_WRITE.
	PipeCapacity int
	PipeLWM      int

	// Linger bounds how long Socket.Close waits for outbound messages to
	// drain: negative means wait indefinitely, zero means don't wait at
	// all, positive bounds the wait.
	Linger time.Duration

	// ReconnectIvl/ReconnectIvlMax bound a Connector's backoff schedule.
	ReconnectIvl    time.Duration
	ReconnectIvlMax time.Duration

	// MaxMsgSize caps a single decoded frame's length.
	MaxMsgSize int64

	// CPUAffinity pins each Reactor goroutine to logical CPU i via
	// affinity.SetAffinity, the way the teacher pins its executor
	// workers when CPUAffinity and NUMANode are both set.
	CPUAffinity bool
}

// DefaultConfig returns the values a bare NewContext(ioThreads) builds
// on top of.
func DefaultConfig() *Config {
	return &Config{
		IOThreads:       1,
		SndHWM:          1000,
		RcvHWM:          1000,
		PipeCapacity:    2048,
		PipeLWM:         250,
		Linger:          30 * time.Second,
		ReconnectIvl:    100 * time.Millisecond,
		ReconnectIvlMax: 5 * time.Second,
		MaxMsgSize:      1 << 30,
		CPUAffinity:     false,
	}
}
