// File: internal/socket/reqrep.go
// Author: momentics <momentics@gmail.com>
//
// REQ enforces strict send/recv alternation and prepends an empty
// delimiter frame ahead of every request; REP mirrors it, stripping the
// delimiter from an inbound request and restoring it ahead of the
// matching reply so the exchange stays wire-compatible with a peer built
// against the reference implementation (§6 EXPANSION).

package socket

import (
	"sync"

	"github.com/nanozmq/zmqcore/api"
)

func emptyDelimiter(pool api.BufferPool) Message {
	return api.NewMessage(pool.Get(0), api.FlagMore)
}

type reqState int

const (
	reqStateSend reqState = iota
	reqStateRecvDelim
	reqStateRecvPayload
)

// Req is implemented against socket types the reference library restricts
// to a single outstanding request; Send fails with EFSM-equivalent false
// until the matching Recv has drained the reply.
type Req struct {
	pool api.BufferPool
	set  pipeSet

	mu          sync.Mutex
	state       reqState
	pendingSend *Pipe
	pendingRecv *Pipe
}

func NewReq(pool api.BufferPool) *Req { return &Req{pool: pool} }

func (s *Req) Type() api.SocketType         { return api.Req }
func (s *Req) Attach(send, recv *Pipe)      { s.set.add(send, recv) }

func (s *Req) Detach(send *Pipe) {
	s.set.remove(send)
	s.mu.Lock()
	if s.pendingSend == send {
		s.pendingSend = nil
		s.pendingRecv = nil
		s.state = reqStateSend
	}
	s.mu.Unlock()
}

func (s *Req) Send(msg Message) bool {
	s.mu.Lock()
	if s.state != reqStateSend {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	send, ok := s.set.writeRoundRobinPipe(emptyDelimiter(s.pool))
	if !ok {
		return false
	}
	if !send.Write(msg.SetMore(false)) {
		return false
	}

	recv := s.recvPipeFor(send)

	s.mu.Lock()
	s.state = reqStateRecvDelim
	s.pendingSend = send
	s.pendingRecv = recv
	s.mu.Unlock()
	return true
}

// recvPipeFor finds the recv pipe paired with send, so a reply can be
// read back from the same peer a request was just written to.
func (s *Req) recvPipeFor(send *Pipe) *Pipe {
	for _, peer := range s.set.snapshot() {
		if peer.send == send {
			return peer.recv
		}
	}
	return nil
}

func (s *Req) Recv() (Message, bool) {
	s.mu.Lock()
	state, recv := s.state, s.pendingRecv
	s.mu.Unlock()
	if recv == nil || state == reqStateSend {
		return Message{}, false
	}

	if state == reqStateRecvDelim {
		delim, ok := recv.Read()
		if !ok {
			return Message{}, false
		}
		delim.Release()
		s.mu.Lock()
		s.state = reqStateRecvPayload
		s.mu.Unlock()
	}

	msg, ok := recv.Read()
	if !ok {
		return Message{}, false
	}
	s.mu.Lock()
	s.state = reqStateSend
	s.pendingSend = nil
	s.pendingRecv = nil
	s.mu.Unlock()
	return msg, true
}

func (s *Req) Pending() int { return s.set.totalSendLen() }

type repState int

const (
	repStateRecv repState = iota
	repStateSend
)

// Rep mirrors Req from the other side: Recv strips the leading delimiter
// and remembers which peer the request arrived on, Send restores the
// delimiter and routes the reply back to exactly that peer's send pipe.
type Rep struct {
	pool api.BufferPool
	set  pipeSet

	mu              sync.Mutex
	state           repState
	pendingSend     *Pipe
	pendingRecv     *Pipe
	awaitingPayload bool
}

func NewRep(pool api.BufferPool) *Rep { return &Rep{pool: pool} }

func (s *Rep) Type() api.SocketType    { return api.Rep }
func (s *Rep) Attach(send, recv *Pipe) { s.set.add(send, recv) }

func (s *Rep) Detach(send *Pipe) {
	s.set.remove(send)
	s.mu.Lock()
	if s.pendingSend == send {
		s.pendingSend = nil
		s.pendingRecv = nil
		s.awaitingPayload = false
		s.state = repStateRecv
	}
	s.mu.Unlock()
}

// sendPipeFor finds the send pipe paired with recv, so a reply can be
// written back to the same peer a request arrived from.
func (s *Rep) sendPipeFor(recv *Pipe) *Pipe {
	for _, peer := range s.set.snapshot() {
		if peer.recv == recv {
			return peer.send
		}
	}
	return nil
}

func (s *Rep) Recv() (Message, bool) {
	s.mu.Lock()
	if s.state != repStateRecv {
		s.mu.Unlock()
		return Message{}, false
	}
	pendingRecv, awaiting := s.pendingRecv, s.awaitingPayload
	s.mu.Unlock()

	if pendingRecv != nil && awaiting {
		msg, ok := pendingRecv.Read()
		if !ok {
			return Message{}, false
		}
		s.mu.Lock()
		s.awaitingPayload = false
		s.state = repStateSend
		s.mu.Unlock()
		return msg, true
	}

	recv, delim, ok := s.set.readFairQueuePipe()
	if !ok {
		return Message{}, false
	}
	delim.Release()
	send := s.sendPipeFor(recv)
	s.mu.Lock()
	s.pendingSend = send
	s.pendingRecv = recv
	s.awaitingPayload = true
	s.mu.Unlock()

	msg, ok := recv.Read()
	if !ok {
		return Message{}, false
	}
	s.mu.Lock()
	s.awaitingPayload = false
	s.state = repStateSend
	s.mu.Unlock()
	return msg, true
}

func (s *Rep) Send(msg Message) bool {
	s.mu.Lock()
	if s.state != repStateSend || s.pendingSend == nil {
		s.mu.Unlock()
		return false
	}
	send := s.pendingSend
	s.mu.Unlock()

	if !send.Write(emptyDelimiter(s.pool)) {
		return false
	}
	if !send.Write(msg.SetMore(false)) {
		return false
	}

	s.mu.Lock()
	s.pendingSend = nil
	s.pendingRecv = nil
	s.state = repStateRecv
	s.mu.Unlock()
	return true
}

func (s *Rep) Pending() int { return s.set.totalSendLen() }
