// File: codec/encoder.go
// Author: momentics <momentics@gmail.com>
//
// Encoder is the write-side symmetric half of the decoder (§4.4): header
// bytes (flags + length) come from a small internal scratch array, body
// bytes are handed back directly from the Message's own buffer — payloads
// are immutable once a Message is observable by a reader (§3), so there is
// never a reason to copy one for the wire. Between messages the encoder
// pulls from a MessageSource; an empty pull marks it stalled until the
// engine's restart_output re-arms write-readiness.

package codec

import (
	"encoding/binary"

	"github.com/nanozmq/zmqcore/api"
)

// MessageSource supplies the next outbound Message, or ok=false if the
// session currently has nothing queued.
type MessageSource interface {
	PullMessage() (api.Message, bool)
}

type encodeStep int

const (
	stepEncHeader encodeStep = iota
	stepEncBody
)

// Encoder is not safe for concurrent use; an Engine owns exactly one.
type Encoder struct {
	src MessageSource

	header     [9]byte
	headerSize int

	step    encodeStep
	cur     api.Message
	pos     int
	stalled bool
}

// NewEncoder creates an Encoder pulling outbound Messages from src.
func NewEncoder(src MessageSource) *Encoder {
	return &Encoder{src: src, step: stepEncHeader}
}

// Pending returns the next chunk of wire bytes to write. ok is false when
// the source has no message queued right now; the caller should disable
// write-readiness and wait for restart_output.
func (e *Encoder) Pending() (chunk []byte, ok bool) {
	for {
		switch e.step {
		case stepEncHeader:
			if e.headerSize == 0 {
				msg, got := e.src.PullMessage()
				if !got {
					e.stalled = true
					return nil, false
				}
				e.stalled = false
				e.cur = msg
				e.headerSize = e.buildHeader(msg)
				e.pos = 0
			}
			if e.pos < e.headerSize {
				return e.header[e.pos:e.headerSize], true
			}
			e.headerSize = 0
			e.step = stepEncBody
			e.pos = 0
		case stepEncBody:
			data := e.cur.Data()
			if e.pos < len(data) {
				return data[e.pos:], true
			}
			e.cur.Release()
			e.cur = api.Message{}
			e.step = stepEncHeader
		}
	}
}

// Advance records that n bytes of the slice last returned by Pending were
// written by the transport, so the following Pending resumes past them.
func (e *Encoder) Advance(n int) { e.pos += n }

// Stalled reports whether the most recent Pending call found nothing queued.
func (e *Encoder) Stalled() bool { return e.stalled }

func (e *Encoder) buildHeader(msg api.Message) int {
	size := msg.Size()
	flags := msg.Flags()
	if size > 255 {
		flags |= api.FlagLong
	} else {
		flags &^= api.FlagLong
	}
	e.header[0] = byte(flags)
	if flags&api.FlagLong != 0 {
		binary.BigEndian.PutUint64(e.header[1:9], uint64(size))
		return 9
	}
	e.header[1] = byte(size)
	return 2
}
