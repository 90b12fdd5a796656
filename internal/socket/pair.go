// File: internal/socket/pair.go
// Author: momentics <momentics@gmail.com>
//
// PAIR connects exactly two sockets with no routing decision at all: every
// Send/Recv passes straight through the one attached peer's pipes (§6
// EXPANSION).

package socket

import "github.com/nanozmq/zmqcore/api"

type Pair struct {
	send *Pipe
	recv *Pipe
}

func NewPair() *Pair { return &Pair{} }

func (p *Pair) Type() api.SocketType { return api.Pair }

// Attach binds send/recv as the pair's sole connection, replacing any
// previous one (mirroring the reference library's one-peer-at-a-time
// PAIR semantics).
func (p *Pair) Attach(send, recv *Pipe) {
	p.send = send
	p.recv = recv
}

func (p *Pair) Detach(send *Pipe) {
	if p.send == send {
		p.send = nil
		p.recv = nil
	}
}

func (p *Pair) Send(msg Message) bool {
	if p.send == nil || !p.send.Attached() {
		return false
	}
	return p.send.Write(msg)
}

func (p *Pair) Recv() (Message, bool) {
	if p.recv == nil {
		return Message{}, false
	}
	return p.recv.Read()
}

func (p *Pair) Pending() int {
	if p.send == nil {
		return 0
	}
	return p.send.Len()
}
