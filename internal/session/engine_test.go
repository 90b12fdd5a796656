// File: internal/session/engine_test.go
// Author: momentics <momentics@gmail.com>

package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/pool"
	"github.com/nanozmq/zmqcore/reactor"
)

// fakeReactor tracks registrations without touching any real multiplexer.
type fakeReactor struct {
	pollIn, pollOut map[uintptr]bool
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{pollIn: map[uintptr]bool{}, pollOut: map[uintptr]bool{}}
}

func (r *fakeReactor) AddFD(fd uintptr, p reactor.Pollable, pollIn, pollOut bool) error {
	r.pollIn[fd] = pollIn
	r.pollOut[fd] = pollOut
	return nil
}
func (r *fakeReactor) RmFD(fd uintptr) error             { delete(r.pollIn, fd); delete(r.pollOut, fd); return nil }
func (r *fakeReactor) SetPollIn(fd uintptr) error        { r.pollIn[fd] = true; return nil }
func (r *fakeReactor) ResetPollIn(fd uintptr) error      { r.pollIn[fd] = false; return nil }
func (r *fakeReactor) SetPollOut(fd uintptr) error       { r.pollOut[fd] = true; return nil }
func (r *fakeReactor) ResetPollOut(fd uintptr) error     { r.pollOut[fd] = false; return nil }

func newPluggedPair(t *testing.T) (*Session, *Engine, *fakeReactor, *Session, *Engine, *fakeReactor) {
	t.Helper()
	p := pool.NewManager()
	connA, connB := wirePair()

	sessA, err := NewSession()
	require.NoError(t, err)
	sessB, err := NewSession()
	require.NoError(t, err)

	engA := NewEngine(connA, p, 0, api.Push)
	engB := NewEngine(connB, p, 0, api.Pull)

	reA := newFakeReactor()
	reB := newFakeReactor()
	require.NoError(t, engA.Plug(sessA, reA))
	require.NoError(t, engB.Plug(sessB, reB))
	sessA.AttachEngine(engA)
	sessB.AttachEngine(engB)

	return sessA, engA, reA, sessB, engB, reB
}

func driveHandshake(a, b *Engine) {
	for i := 0; i < 4; i++ {
		a.OnWritable()
		b.OnReadable()
		b.OnWritable()
		a.OnReadable()
	}
}

func TestEngineHandshakeReachesActive(t *testing.T) {
	_, engA, _, _, engB, _ := newPluggedPair(t)
	driveHandshake(engA, engB)
	require.Equal(t, api.EngineActive, engA.state)
	require.Equal(t, api.EngineActive, engB.state)
}

func TestEngineDeliversMessageEndToEnd(t *testing.T) {
	sessA, engA, _, sessB, engB, _ := newPluggedPair(t)
	driveHandshake(engA, engB)

	p := pool.NewManager()
	sendPipe := NewPipe(16, 8, 2, PipeSend, sessA.Mailbox(), sessA)
	recvPipe := NewPipe(16, 8, 2, PipeRecv, sessA.Mailbox(), sessA)
	sessA.AttachPipes(sendPipe, nil)

	recvOnB := NewPipe(16, 8, 2, PipeRecv, sessB.Mailbox(), sessB)
	sessB.AttachPipes(nil, recvOnB)

	buf := p.Get(5)
	copy(buf.Bytes(), "hello")
	require.True(t, sendPipe.Write(api.NewMessage(buf, 0)))

	engA.OnWritable()
	engB.OnReadable()

	m, ok := recvOnB.Read()
	require.True(t, ok)
	require.Equal(t, "hello", string(m.Data()))
	m.Release()
	_ = recvPipe
}

func TestEngineRedeliversPendingAfterRestartInput(t *testing.T) {
	sessA, engA, _, sessB, engB, reB := newPluggedPair(t)
	driveHandshake(engA, engB)

	p := pool.NewManager()
	sendPipe := NewPipe(16, 8, 2, PipeSend, sessA.Mailbox(), sessA)
	sessA.AttachPipes(sendPipe, nil)

	// hwm=1 so the second message is refused by recvOnB and must be held
	// as the Engine's pending message rather than dropped.
	recvOnB := NewPipe(16, 1, 0, PipeRecv, sessB.Mailbox(), sessB)
	sessB.AttachPipes(nil, recvOnB)

	require.True(t, sendPipe.Write(msg(t, p, "first")))
	require.True(t, sendPipe.Write(msg(t, p, "second")))

	engA.OnWritable()
	engB.OnReadable()

	require.Equal(t, api.EngineStalled, engB.state)
	require.True(t, engB.hasPending, "second message must be held pending, not dropped")
	require.False(t, reB.pollIn[engB.conn.RawFD()], "poll-in must stay disabled while stalled")

	m, ok := recvOnB.Read()
	require.True(t, ok)
	require.Equal(t, "first", string(m.Data()))
	m.Release()

	engB.RestartInput()

	require.False(t, engB.hasPending, "pending message must be delivered on restart_input")
	require.Equal(t, api.EngineActive, engB.state)
	require.True(t, reB.pollIn[engB.conn.RawFD()])

	m, ok = recvOnB.Read()
	require.True(t, ok)
	require.Equal(t, "second", string(m.Data()))
	m.Release()
}
