// File: internal/socket/dealerrouter.go
// Author: momentics <momentics@gmail.com>
//
// DEALER round-robins outbound messages and fair-queues inbound ones with
// no envelope manipulation, same as PUSH/PULL but bidirectional on one
// pipe set. ROUTER prefixes every inbound message with the originating
// peer's identity frame and demultiplexes outbound sends by reading that
// identity frame back off before forwarding the rest of the message to
// the peer it names (§6 EXPANSION).

package socket

import (
	"encoding/binary"
	"sync"

	"github.com/nanozmq/zmqcore/api"
)

type Dealer struct {
	set pipeSet
}

func NewDealer() *Dealer { return &Dealer{} }

func (s *Dealer) Type() api.SocketType   { return api.Dealer }
func (s *Dealer) Attach(send, recv *Pipe) { s.set.add(send, recv) }
func (s *Dealer) Detach(send *Pipe)       { s.set.remove(send) }
func (s *Dealer) Send(msg Message) bool {
	return s.set.writeRoundRobin(msg)
}
func (s *Dealer) Recv() (Message, bool) {
	return s.set.readFairQueue()
}
func (s *Dealer) Pending() int { return s.set.totalSendLen() }

// Router assigns an anonymous identity to any peer that doesn't already
// carry one (the IDENTITY socket option is not applied to pipes, so in
// this module every peer gets an anonymous identity) and keeps a lookup
// table from identity bytes to the peer's send pipe for outbound
// demultiplexing. The identity is stamped on both the send and recv pipe
// of a peer so either can be used to recover it.
type Router struct {
	pool api.BufferPool
	set  pipeSet

	mu         sync.Mutex
	byID       map[string]*Pipe
	anonSeq    uint32
	pendingMsg *Message
	sendTarget *Pipe
}

func NewRouter(pool api.BufferPool) *Router {
	return &Router{pool: pool, byID: make(map[string]*Pipe)}
}

func (s *Router) Type() api.SocketType { return api.Router }

func (s *Router) Attach(send, recv *Pipe) {
	s.set.add(send, recv)
	s.mu.Lock()
	id := send.ID()
	if len(id) == 0 {
		s.anonSeq++
		id = make([]byte, 5)
		binary.BigEndian.PutUint32(id[1:], s.anonSeq)
		send.SetID(id)
	}
	recv.SetID(id)
	s.byID[string(id)] = send
	s.mu.Unlock()
}

func (s *Router) Detach(send *Pipe) {
	s.set.remove(send)
	s.mu.Lock()
	delete(s.byID, string(send.ID()))
	if s.sendTarget == send {
		s.sendTarget = nil
	}
	s.mu.Unlock()
}

// Recv yields the originating peer's identity frame first (MORE set),
// then the stashed payload frame on the following call.
func (s *Router) Recv() (Message, bool) {
	s.mu.Lock()
	if s.pendingMsg != nil {
		m := *s.pendingMsg
		s.pendingMsg = nil
		s.mu.Unlock()
		return m, true
	}
	s.mu.Unlock()

	recv, m, ok := s.set.readFairQueuePipe()
	if !ok {
		return Message{}, false
	}
	idBuf := s.pool.Get(len(recv.ID()))
	copy(idBuf.Bytes(), recv.ID())
	idMsg := api.NewMessage(idBuf, api.FlagMore)

	s.mu.Lock()
	s.pendingMsg = &m
	s.mu.Unlock()
	return idMsg, true
}

// Send expects the identity frame first: it looks the target peer's send
// pipe up and remembers it, then forwards every subsequent frame (until
// MORE clears) to that pipe without altering it.
func (s *Router) Send(msg Message) bool {
	s.mu.Lock()
	target := s.sendTarget
	s.mu.Unlock()

	if target == nil {
		id := msg.Data()
		s.mu.Lock()
		p := s.byID[string(id)]
		s.mu.Unlock()
		msg.Release()
		if p == nil {
			return false
		}
		s.mu.Lock()
		s.sendTarget = p
		s.mu.Unlock()
		return true
	}

	ok := target.Write(msg)
	if !msg.More() {
		s.mu.Lock()
		s.sendTarget = nil
		s.mu.Unlock()
	}
	return ok
}

func (s *Router) Pending() int { return s.set.totalSendLen() }
