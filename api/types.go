// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations: socket kinds, session/engine states,
// and service-level statistics.

package api

import "time"

// SocketType enumerates the wire-level socket-type byte sent in the ZMTP
// greeting (§6). Values match the reference implementation numbering.
type SocketType byte

const (
	Pair   SocketType = 0
	Pub    SocketType = 1
	Sub    SocketType = 2
	Req    SocketType = 3
	Rep    SocketType = 4
	Dealer SocketType = 5
	Router SocketType = 6
	Pull   SocketType = 7
	Push   SocketType = 8
)

func (t SocketType) String() string {
	switch t {
	case Pair:
		return "PAIR"
	case Pub:
		return "PUB"
	case Sub:
		return "SUB"
	case Req:
		return "REQ"
	case Rep:
		return "REP"
	case Dealer:
		return "DEALER"
	case Router:
		return "ROUTER"
	case Pull:
		return "PULL"
	case Push:
		return "PUSH"
	default:
		return "UNKNOWN"
	}
}

// EngineState is the engine lifecycle state from §3 ("Engine").
type EngineState int

const (
	EngineHandshaking EngineState = iota
	EngineActive
	EngineStalled
	EngineClosed
)

func (s EngineState) String() string {
	switch s {
	case EngineHandshaking:
		return "handshaking"
	case EngineActive:
		return "active"
	case EngineStalled:
		return "stalled"
	case EngineClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionState is the session lifecycle state from §4.4.
type SessionState int

const (
	SessionActive SessionState = iota
	SessionDelaying
	SessionTerminating
	SessionTerminated
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionDelaying:
		return "delaying"
	case SessionTerminating:
		return "terminating"
	case SessionTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Metrics is the standard layout for Context.Stats().
type Metrics struct {
	ActiveSessions int
	MessagesSent   uint64
	MessagesRecvd  uint64
	BytesSent      uint64
	BytesRecvd     uint64
	ReactorQueue   int
	StartedAt      time.Time
}
