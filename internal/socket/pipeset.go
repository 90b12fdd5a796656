// File: internal/socket/pipeset.go
// Author: momentics <momentics@gmail.com>
//
// pipeSet tracks the peers attached to a fan-out or fan-in pattern and
// rotates through them the way the teacher's Executor rotates through
// worker queues: an incrementing counter taken modulo the live set size,
// so no single peer is starved or favored.
// Send/Recv are always called from the owning socket's single user-facing
// goroutine, so a mutex here only ever guards against a concurrent
// Attach/Detach arriving from the reactor goroutine when a peer connects
// or drops.
//
// Each peer contributes two one-directional Pipes: send is the pipe this
// pattern writes outbound messages into (the peer's Session reads it to
// feed its Encoder), recv is the pipe this pattern reads inbound messages
// from (the peer's Session writes decoded messages into it).

package socket

import "sync"

type peerPipes struct {
	send *Pipe
	recv *Pipe
}

type pipeSet struct {
	mu      sync.Mutex
	peers   []peerPipes
	rrWrite uint64
	rrRead  uint64
}

func (s *pipeSet) add(send, recv *Pipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers = append(s.peers, peerPipes{send: send, recv: recv})
}

func (s *pipeSet) remove(send *Pipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.peers {
		if q.send == send {
			s.peers = append(s.peers[:i], s.peers[i+1:]...)
			return
		}
	}
}

func (s *pipeSet) snapshot() []peerPipes {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]peerPipes, len(s.peers))
	copy(out, s.peers)
	return out
}

// writeRoundRobin tries each attached peer's send pipe starting just
// after the last one that accepted a write, stopping at the first that
// isn't at its high-water-mark. Returns false only when every pipe
// refused.
func (s *pipeSet) writeRoundRobin(msg Message) bool {
	_, ok := s.writeRoundRobinPipe(msg)
	return ok
}

// writeRoundRobinPipe behaves like writeRoundRobin but also reports which
// send pipe accepted the message, for patterns (REQ, REP) that must
// remember where to read the matching reply from.
func (s *pipeSet) writeRoundRobinPipe(msg Message) (*Pipe, bool) {
	peers := s.snapshot()
	if len(peers) == 0 {
		return nil, false
	}
	start := int(s.rrWrite % uint64(len(peers)))
	for i := 0; i < len(peers); i++ {
		idx := (start + i) % len(peers)
		p := peers[idx].send
		if !p.Attached() {
			continue
		}
		if p.Write(msg) {
			s.rrWrite = uint64(idx + 1)
			return p, true
		}
	}
	return nil, false
}

// readFairQueue tries each attached peer's recv pipe starting just after
// the last one that yielded a message, so no single producer can
// monopolize the consumer under load.
func (s *pipeSet) readFairQueue() (Message, bool) {
	_, m, ok := s.readFairQueuePipe()
	return m, ok
}

// readFairQueuePipe behaves like readFairQueue but also reports which
// recv pipe yielded the message, for patterns (ROUTER, REP) that must tag
// it with the originating peer's identity or remember where to reply.
func (s *pipeSet) readFairQueuePipe() (*Pipe, Message, bool) {
	peers := s.snapshot()
	if len(peers) == 0 {
		return nil, Message{}, false
	}
	start := int(s.rrRead % uint64(len(peers)))
	for i := 0; i < len(peers); i++ {
		idx := (start + i) % len(peers)
		p := peers[idx].recv
		if m, ok := p.Read(); ok {
			s.rrRead = uint64(idx + 1)
			return p, m, true
		}
	}
	return nil, Message{}, false
}

// totalSendLen sums the occupancy of every attached peer's send pipe:
// messages enqueued but not yet pulled into that peer's Engine encoder.
// A facade Socket polls this during linger-bounded termination (§7).
func (s *pipeSet) totalSendLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.peers {
		n += p.send.Len()
	}
	return n
}

// broadcast writes a retained copy of msg to every attached peer's send
// pipe matching filter, skipping (and not failing on) any that refuse it
// at their high-water-mark. Used by PUB, where a slow subscriber must not
// block the others. Always consumes the caller's reference to msg.
func (s *pipeSet) broadcast(msg Message, filter func(send *Pipe) bool) {
	peers := s.snapshot()
	for _, peer := range peers {
		if filter != nil && !filter(peer.send) {
			continue
		}
		peer.send.Write(msg.Dup())
	}
	msg.Release()
}
