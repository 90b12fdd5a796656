// File: facade/socket_test.go
// Author: momentics <momentics@gmail.com>

package facade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nanozmq/zmqcore/api"
)

func TestInprocPushPullRoundTrip(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	pull, err := ctx.NewSocket(api.Pull)
	require.NoError(t, err)

	require.NoError(t, pull.Bind("inproc://rt"))
	require.NoError(t, push.Connect("inproc://rt"))

	require.NoError(t, push.Send([]byte("hello"), SendDefault))

	require.Eventually(t, func() bool {
		data, more, err := pull.Recv()
		if err != nil {
			return false
		}
		require.False(t, more)
		require.Equal(t, "hello", string(data))
		return true
	}, time.Second, time.Millisecond)
}

func TestInprocConnectBeforeBindFails(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)

	err = push.Connect("inproc://nowhere")
	require.Error(t, err)
}

func TestSocketOptionRoundTrip(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	sock, err := ctx.NewSocket(api.Pair)
	require.NoError(t, err)
	defer sock.Close()

	require.NoError(t, sock.SetOption(OptSndHWM, 42))
	v, err := sock.GetOption(OptSndHWM)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	require.NoError(t, sock.SetOption(OptLinger, 5*time.Second))
	v, err = sock.GetOption(OptLinger)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, v)

	err = sock.SetOption(OptSndHWM, "not an int")
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestSubscribeOnlyAppliesToSubSocket(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	defer push.Close()

	err = push.SetOption(OptSubscribe, []byte("topic"))
	require.ErrorIs(t, err, api.ErrNotSupported)

	sub, err := ctx.NewSocket(api.Sub)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, sub.SetOption(OptSubscribe, []byte("topic")))
}

func TestSocketSendAfterCloseFails(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	sock, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	require.NoError(t, sock.Close())

	err = sock.Send([]byte("x"), SendDefault)
	require.ErrorIs(t, err, api.ErrTerm)

	// Closing twice is a no-op, not an error.
	require.NoError(t, sock.Close())
}

func TestCloseWithZeroLingerDoesNotBlock(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	require.NoError(t, push.SetOption(OptLinger, time.Duration(0)))

	done := make(chan struct{})
	go func() {
		push.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close with zero linger blocked")
	}
}
