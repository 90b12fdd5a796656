// File: internal/socket/pushpull.go
// Author: momentics <momentics@gmail.com>
//
// PUSH round-robins outbound messages across every attached pipe; PULL
// fair-queues inbound ones. Neither inspects message content (§6 EXPANSION).
// Used by scenarios S1, S2, S4, S5, S6 (S3 uses PAIR).

package socket

import "github.com/nanozmq/zmqcore/api"

type Push struct {
	set pipeSet
}

func NewPush() *Push { return &Push{} }

func (s *Push) Type() api.SocketType   { return api.Push }
func (s *Push) Attach(send, recv *Pipe) { s.set.add(send, recv) }
func (s *Push) Detach(send *Pipe)       { s.set.remove(send) }
func (s *Push) Send(msg Message) bool {
	return s.set.writeRoundRobin(msg)
}
func (s *Push) Recv() (Message, bool) { return Message{}, false }
func (s *Push) Pending() int          { return s.set.totalSendLen() }

type Pull struct {
	set pipeSet
}

func NewPull() *Pull { return &Pull{} }

func (s *Pull) Type() api.SocketType    { return api.Pull }
func (s *Pull) Attach(send, recv *Pipe) { s.set.add(send, recv) }
func (s *Pull) Detach(send *Pipe)       { s.set.remove(send) }
func (s *Pull) Send(msg Message) bool   { return false }
func (s *Pull) Recv() (Message, bool) {
	return s.set.readFairQueue()
}
func (s *Pull) Pending() int { return 0 }
