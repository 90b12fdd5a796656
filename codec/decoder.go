// File: codec/decoder.go
// Author: momentics <momentics@gmail.com>
//
// Decoder is the ZMTP v3 frame decoder's size-prefix state machine (§4.4),
// grounded on the reference implementation's DecoderBase: a tagged current
// step, a (target, read position, bytes-still-to-read) triple, and a
// next()-style transition run each time the current step's target fills.
//
// The engine drives it with GetBuffer/ProcessBuffer: GetBuffer returns
// exactly the remaining space of the current step's target — either the
// internal scratch array, or, once a body step's length reaches the
// zero-copy threshold, the payload of a freshly allocated Message buffer —
// and the engine reads the transport directly into that slice. This means
// a large frame's bytes land in their final message buffer straight off
// the wire with no intermediate copy; the scratch array itself is
// allocated exactly once, at construction.
//
// Each wire frame is one flags byte, then a 1-byte or 8-byte big-endian
// length (selected by the LONG flag), then the payload.

package codec

import (
	"encoding/binary"

	"github.com/nanozmq/zmqcore/api"
)

type decodeStep int

const (
	stepFlags decodeStep = iota
	stepShortLen
	stepLongLen
	stepBody
)

// DefaultScratchSize bounds small-frame coalescing and is the zero-copy
// threshold: a body step at or above this size bypasses scratch entirely.
const DefaultScratchSize = 8192

// Decoder turns a byte stream into a sequence of Messages. It is not safe
// for concurrent use; an Engine owns exactly one Decoder.
type Decoder struct {
	pool       api.BufferPool
	maxMsgSize int64
	scratch    []byte

	step     decodeStep
	target   []byte
	zeroCopy bool
	zcBuf    api.Buffer
	readPos  int
	toRead   int
	flags    api.Flag

	dead  error
	ready []api.Message
}

// NewDecoder creates a Decoder that allocates frame payloads from pool and
// rejects any single frame declaring a length over maxMsgSize (0 means
// unbounded).
func NewDecoder(pool api.BufferPool, maxMsgSize int64) *Decoder {
	d := &Decoder{pool: pool, maxMsgSize: maxMsgSize, scratch: make([]byte, DefaultScratchSize)}
	d.nextStep(1, stepFlags, false)
	return d
}

func (d *Decoder) nextStep(n int, step decodeStep, zeroCopy bool) {
	d.readPos = 0
	d.toRead = n
	d.step = step
	d.zeroCopy = zeroCopy
	if zeroCopy {
		d.zcBuf = d.pool.Get(n)
		d.target = d.zcBuf.Bytes()
		return
	}
	d.zcBuf = nil
	d.target = d.scratch[:n]
}

// GetBuffer returns the slice the engine should read the transport into
// next. Its length is exactly how many bytes the current step still wants.
func (d *Decoder) GetBuffer() []byte {
	return d.target[d.readPos:d.toRead]
}

// ProcessBuffer tells the decoder that n bytes were placed into the slice
// last returned by GetBuffer (n must be <= its length). It advances the
// state machine, completing a Message (drained with Pop) whenever a body
// step fills. A non-nil error latches the decoder dead: every subsequent
// ProcessBuffer call returns the same error without consuming anything
// (Err reports it too).
func (d *Decoder) ProcessBuffer(n int) error {
	if d.dead != nil {
		return d.dead
	}
	d.readPos += n
	for d.readPos >= d.toRead {
		if err := d.advance(); err != nil {
			d.dead = err
			return err
		}
		if d.readPos < d.toRead {
			break
		}
	}
	return nil
}

// advance runs the action for the step that just finished filling.
func (d *Decoder) advance() error {
	switch d.step {
	case stepFlags:
		d.flags = api.Flag(d.target[0])
		if d.flags&api.FlagLong != 0 {
			d.nextStep(8, stepLongLen, false)
		} else {
			d.nextStep(1, stepShortLen, false)
		}
	case stepShortLen:
		return d.startBody(int(d.target[0]))
	case stepLongLen:
		size := binary.BigEndian.Uint64(d.target[:8])
		return d.startBody(int(size))
	case stepBody:
		d.completeMessage()
		d.nextStep(1, stepFlags, false)
	}
	return nil
}

func (d *Decoder) startBody(size int) error {
	if size < 0 || (d.maxMsgSize > 0 && int64(size) > d.maxMsgSize) {
		return api.NewError(api.KindProtocol, "decoder: frame exceeds maximum message size", nil)
	}
	if size == 0 {
		d.ready = append(d.ready, api.NewMessage(d.pool.Get(0), d.flags))
		d.nextStep(1, stepFlags, false)
		return nil
	}
	d.nextStep(size, stepBody, size >= len(d.scratch))
	return nil
}

func (d *Decoder) completeMessage() {
	if d.zeroCopy {
		d.ready = append(d.ready, api.NewMessage(d.zcBuf, d.flags))
		d.zcBuf = nil
		return
	}
	buf := d.pool.Get(d.toRead)
	copy(buf.Bytes(), d.target[:d.toRead])
	d.ready = append(d.ready, api.NewMessage(buf, d.flags))
}

// Pop removes and returns the oldest decoded message still queued.
func (d *Decoder) Pop() (api.Message, bool) {
	if len(d.ready) == 0 {
		return api.Message{}, false
	}
	m := d.ready[0]
	d.ready = d.ready[1:]
	return m, true
}

// Err reports the error that latched the decoder dead, if any.
func (d *Decoder) Err() error { return d.dead }
