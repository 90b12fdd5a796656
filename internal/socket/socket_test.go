// File: internal/socket/socket_test.go
// Author: momentics <momentics@gmail.com>

package socket

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/internal/session"
	"github.com/nanozmq/zmqcore/pool"
)

// newTestPipe builds a Pipe with no peer Mailbox, suitable for driving a
// Pattern directly without a Session on the other end.
func newTestPipe(p *pool.Manager) *Pipe {
	return session.NewPipe(16, 8, 2, session.PipeSend, nil, nil)
}

func msg(p *pool.Manager, s string) Message {
	buf := p.Get(len(s))
	copy(buf.Bytes(), s)
	return api.NewMessage(buf, 0)
}

func TestPairPassesThrough(t *testing.T) {
	p := pool.NewManager()
	pair := NewPair()
	outbound, inbound := newTestPipe(p), newTestPipe(p)
	pair.Attach(outbound, inbound)

	require.True(t, pair.Send(msg(p, "hi")))
	m, ok := outbound.Read()
	require.True(t, ok)
	require.Equal(t, "hi", string(m.Data()))
	m.Release()

	require.True(t, inbound.Write(msg(p, "there")))
	m, ok = pair.Recv()
	require.True(t, ok)
	require.Equal(t, "there", string(m.Data()))
	m.Release()
}

func TestPushRoundRobinsAcrossPipes(t *testing.T) {
	p := pool.NewManager()
	push := NewPush()
	a, b := newTestPipe(p), newTestPipe(p)
	push.Attach(a, newTestPipe(p))
	push.Attach(b, newTestPipe(p))

	require.True(t, push.Send(msg(p, "1")))
	require.True(t, push.Send(msg(p, "2")))

	m, ok := a.Read()
	require.True(t, ok)
	require.Equal(t, "1", string(m.Data()))
	m.Release()

	m, ok = b.Read()
	require.True(t, ok)
	require.Equal(t, "2", string(m.Data()))
	m.Release()
}

func TestPullFairQueuesAcrossPipes(t *testing.T) {
	p := pool.NewManager()
	pull := NewPull()
	a, b := newTestPipe(p), newTestPipe(p)
	pull.Attach(newTestPipe(p), a)
	pull.Attach(newTestPipe(p), b)

	require.True(t, b.Write(msg(p, "from-b")))
	require.True(t, a.Write(msg(p, "from-a")))

	m1, ok := pull.Recv()
	require.True(t, ok)
	m2, ok := pull.Recv()
	require.True(t, ok)
	got := []string{string(m1.Data()), string(m2.Data())}
	require.ElementsMatch(t, []string{"from-a", "from-b"}, got)
	m1.Release()
	m2.Release()
}

func TestPubSubSubscriptionFiltering(t *testing.T) {
	p := pool.NewManager()
	pub := NewPub(p)
	outToSub := newTestPipe(p)   // pub's view of the subscriber's inbox
	controlFromSub := newTestPipe(p) // pub's view of the subscriber's relayed control frames
	pub.Attach(outToSub, controlFromSub)

	// Subscriber relays a subscribe control frame upstream for "weather.".
	require.True(t, controlFromSub.Write(controlMessage(p, subSubscribe, []byte("weather."))))

	require.True(t, pub.Send(msg(p, "weather.rain")))
	m, ok := outToSub.Read()
	require.True(t, ok)
	require.Equal(t, "weather.rain", string(m.Data()))
	m.Release()

	require.True(t, pub.Send(msg(p, "sports.score")))
	_, ok = outToSub.Read()
	require.False(t, ok, "unsubscribed topic must not be delivered")
}

func TestSubReplaysSubscriptionsToNewPipe(t *testing.T) {
	p := pool.NewManager()
	sub := NewSub(p)
	sub.Subscribe([]byte("a"))

	upstream := newTestPipe(p)
	sub.Attach(upstream, newTestPipe(p))

	m, ok := upstream.Read()
	require.True(t, ok)
	require.Equal(t, byte(subSubscribe), m.Data()[0])
	require.Equal(t, "a", string(m.Data()[1:]))
	m.Release()
}

func TestReqRepRoundTrip(t *testing.T) {
	p := pool.NewManager()
	req := NewReq(p)
	rep := NewRep(p)

	// The wire between req and rep: two one-way Pipes, one per direction.
	reqToRep := newTestPipe(p)
	repToReq := newTestPipe(p)
	req.Attach(reqToRep, repToReq)
	rep.Attach(repToReq, reqToRep)

	require.True(t, req.Send(msg(p, "ping")))

	got, ok := rep.Recv()
	require.True(t, ok)
	require.Equal(t, "ping", string(got.Data()))
	got.Release()

	require.True(t, rep.Send(msg(p, "pong")))

	reply, ok := req.Recv()
	require.True(t, ok)
	require.Equal(t, "pong", string(reply.Data()))
	reply.Release()
}

func TestReqRefusesSendBeforeRecv(t *testing.T) {
	p := pool.NewManager()
	req := NewReq(p)
	req.Attach(newTestPipe(p), newTestPipe(p))
	require.True(t, req.Send(msg(p, "one")))
	require.False(t, req.Send(msg(p, "two")), "must not send again before the matching Recv")
}

func TestRouterTagsAndDemuxesByIdentity(t *testing.T) {
	p := pool.NewManager()
	router := NewRouter(p)
	outToPeer := newTestPipe(p)
	inFromPeer := newTestPipe(p)
	router.Attach(outToPeer, inFromPeer)

	require.True(t, inFromPeer.Write(msg(p, "hello")))

	idFrame, ok := router.Recv()
	require.True(t, ok)
	require.True(t, idFrame.More())
	id := append([]byte(nil), idFrame.Data()...)
	idFrame.Release()

	payload, ok := router.Recv()
	require.True(t, ok)
	require.Equal(t, "hello", string(payload.Data()))
	payload.Release()

	idBuf := p.Get(len(id))
	copy(idBuf.Bytes(), id)
	require.True(t, router.Send(api.NewMessage(idBuf, api.FlagMore)))
	require.True(t, router.Send(msg(p, "reply")))

	m, ok := outToPeer.Read()
	require.True(t, ok)
	require.Equal(t, "reply", string(m.Data()))
	m.Release()
}
