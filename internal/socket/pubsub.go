// File: internal/socket/pubsub.go
// Author: momentics <momentics@gmail.com>
//
// PUB fans a message out to every attached peer whose subscription trie
// matches it; SUB relays subscribe/unsubscribe requests upstream as
// 1-byte-prefixed control frames (`\x01`/`\x00` + topic) and replays its
// active subscriptions to any newly attached peer (§6 EXPANSION).

package socket

import (
	"sync"

	"github.com/nanozmq/zmqcore/api"
)

const (
	subUnsubscribe byte = 0x00
	subSubscribe   byte = 0x01
)

func controlMessage(pool api.BufferPool, bit byte, topic []byte) Message {
	buf := pool.Get(1 + len(topic))
	raw := buf.Bytes()
	raw[0] = bit
	copy(raw[1:], topic)
	return api.NewMessage(buf, api.FlagCommand)
}

// Pub broadcasts to subscribers and silently absorbs the subscribe/
// unsubscribe control frames SUB peers send back upstream. Tries are
// keyed by each peer's send pipe, the same identity pipeSet uses.
type Pub struct {
	pool api.BufferPool
	set  pipeSet

	mu    sync.Mutex
	tries map[*Pipe]*subTrie
}

func NewPub(pool api.BufferPool) *Pub {
	return &Pub{pool: pool, tries: make(map[*Pipe]*subTrie)}
}

func (s *Pub) Type() api.SocketType { return api.Pub }

func (s *Pub) Attach(send, recv *Pipe) {
	s.set.add(send, recv)
	s.mu.Lock()
	s.tries[send] = &subTrie{}
	s.mu.Unlock()
}

func (s *Pub) Detach(send *Pipe) {
	s.set.remove(send)
	s.mu.Lock()
	delete(s.tries, send)
	s.mu.Unlock()
}

func (s *Pub) Send(msg Message) bool {
	s.drainControl()
	s.set.broadcast(msg, func(send *Pipe) bool {
		s.mu.Lock()
		t := s.tries[send]
		s.mu.Unlock()
		return t != nil && t.Match(msg.Data())
	})
	return true
}

// Recv is unsupported at the user-facing API (PUB sockets never receive
// application data) but still drains pending control frames so
// subscriptions stay current even if the user never calls Send again.
func (s *Pub) Recv() (Message, bool) {
	s.drainControl()
	return Message{}, false
}

func (s *Pub) Pending() int { return s.set.totalSendLen() }

func (s *Pub) drainControl() {
	for _, peer := range s.set.snapshot() {
		for {
			m, ok := peer.recv.Read()
			if !ok {
				break
			}
			s.applyControl(peer.send, m)
		}
	}
}

func (s *Pub) applyControl(send *Pipe, m Message) {
	defer m.Release()
	data := m.Data()
	if len(data) == 0 {
		return
	}
	s.mu.Lock()
	t := s.tries[send]
	s.mu.Unlock()
	if t == nil {
		return
	}
	switch data[0] {
	case subSubscribe:
		t.Add(data[1:])
	case subUnsubscribe:
		t.Remove(data[1:])
	}
}

// Sub fair-queues inbound publications and tracks locally which topics
// are wanted so a freshly attached peer (a new PUB connection) is brought
// up to date with a replay of every active subscription.
type Sub struct {
	pool api.BufferPool
	set  pipeSet

	mu        sync.Mutex
	refcounts map[string]int
}

func NewSub(pool api.BufferPool) *Sub {
	return &Sub{pool: pool, refcounts: make(map[string]int)}
}

func (s *Sub) Type() api.SocketType { return api.Sub }

func (s *Sub) Attach(send, recv *Pipe) {
	s.set.add(send, recv)
	s.mu.Lock()
	topics := make([]string, 0, len(s.refcounts))
	for t := range s.refcounts {
		topics = append(topics, t)
	}
	s.mu.Unlock()
	for _, t := range topics {
		send.Write(controlMessage(s.pool, subSubscribe, []byte(t)))
	}
}

func (s *Sub) Detach(send *Pipe) { s.set.remove(send) }

// Send is unsupported; SUB only ever relays subscribe/unsubscribe frames
// through Subscribe/Unsubscribe, never application data.
func (s *Sub) Send(msg Message) bool { return false }

func (s *Sub) Recv() (Message, bool) { return s.set.readFairQueue() }

// Pending reports subscribe/unsubscribe control frames not yet relayed
// upstream; SUB never carries outbound application data.
func (s *Sub) Pending() int { return s.set.totalSendLen() }

// Subscribe adds topic to the wanted set, relaying a subscribe frame to
// every attached peer only the first time this exact topic goes active.
func (s *Sub) Subscribe(topic []byte) {
	key := string(topic)
	s.mu.Lock()
	s.refcounts[key]++
	first := s.refcounts[key] == 1
	s.mu.Unlock()
	if !first {
		return
	}
	for _, peer := range s.set.snapshot() {
		peer.send.Write(controlMessage(s.pool, subSubscribe, topic))
	}
}

// Unsubscribe removes one reference to topic, relaying an unsubscribe
// frame only once the last reference is gone.
func (s *Sub) Unsubscribe(topic []byte) {
	key := string(topic)
	s.mu.Lock()
	n, ok := s.refcounts[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	n--
	if n <= 0 {
		delete(s.refcounts, key)
	} else {
		s.refcounts[key] = n
	}
	s.mu.Unlock()
	if n > 0 {
		return
	}
	for _, peer := range s.set.snapshot() {
		peer.send.Write(controlMessage(s.pool, subUnsubscribe, topic))
	}
}
