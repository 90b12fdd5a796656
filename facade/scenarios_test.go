// File: facade/scenarios_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end scenarios over real TCP, one per spec.md §8 S1-S6.

package facade

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nanozmq/zmqcore/api"
)

func reservePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// S1: PUSH/PULL localhost, many small messages, none dropped.
func TestScenarioPushPullHighVolume(t *testing.T) {
	ctx, err := NewContext(2)
	require.NoError(t, err)
	defer ctx.Term()

	pull, err := ctx.NewSocket(api.Pull)
	require.NoError(t, err)
	require.NoError(t, pull.Bind("tcp://127.0.0.1:0"))
	addr, err := pull.LastEndpoint()
	require.NoError(t, err)

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	require.NoError(t, push.Connect("tcp://"+addr))

	const total = 10000
	go func() {
		for i := 0; i < total; i++ {
			payload := []byte(fmt.Sprintf("m%d", i))
			for push.Send(payload, SendDefault) == api.ErrAgain {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	received := 0
	require.Eventually(t, func() bool {
		for {
			_, _, err := pull.Recv()
			if err == api.ErrAgain {
				return received == total
			}
			require.NoError(t, err)
			received++
		}
	}, 10*time.Second, 5*time.Millisecond)
	require.Equal(t, total, received)
}

// S2: a single large (2MiB) frame survives a real TCP round trip intact.
func TestScenarioLargeFrame(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	pull, err := ctx.NewSocket(api.Pull)
	require.NoError(t, err)
	require.NoError(t, pull.Bind("tcp://127.0.0.1:0"))
	addr, err := pull.LastEndpoint()
	require.NoError(t, err)

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	require.NoError(t, push.Connect("tcp://"+addr))

	payload := make([]byte, 2<<20)
	for i := range payload {
		payload[i] = byte(i)
	}

	go func() {
		for push.Send(payload, SendDefault) == api.ErrAgain {
			time.Sleep(time.Millisecond)
		}
	}()

	var got []byte
	require.Eventually(t, func() bool {
		data, _, err := pull.Recv()
		if err == api.ErrAgain {
			return false
		}
		require.NoError(t, err)
		got = data
		return true
	}, 10*time.Second, 5*time.Millisecond)
	require.Equal(t, payload, got)
}

// S3: a multi-part message's MORE flag survives the wire round trip.
func TestScenarioMultiPartMessage(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	a, err := ctx.NewSocket(api.Pair)
	require.NoError(t, err)
	require.NoError(t, a.Bind("tcp://127.0.0.1:0"))
	addr, err := a.LastEndpoint()
	require.NoError(t, err)

	b, err := ctx.NewSocket(api.Pair)
	require.NoError(t, err)
	require.NoError(t, b.Connect("tcp://"+addr))

	go func() {
		for b.Send([]byte("part1"), SendMore) == api.ErrAgain {
			time.Sleep(time.Millisecond)
		}
		for b.Send([]byte("part2"), SendDefault) == api.ErrAgain {
			time.Sleep(time.Millisecond)
		}
	}()

	var frames [][]byte
	var mores []bool
	require.Eventually(t, func() bool {
		data, more, err := a.Recv()
		if err == api.ErrAgain {
			return len(frames) >= 2
		}
		require.NoError(t, err)
		frames = append(frames, data)
		mores = append(mores, more)
		return len(frames) >= 2
	}, 5*time.Second, 5*time.Millisecond)

	require.Equal(t, [][]byte{[]byte("part1"), []byte("part2")}, frames)
	require.Equal(t, []bool{true, false}, mores)
}

// S4: a Connector dialing ahead of its peer's bind keeps retrying with
// backoff and delivers once the listener appears.
func TestScenarioReconnectBeforeListenerExists(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	port := reservePort(t)
	addr := fmt.Sprintf("tcp://127.0.0.1:%d", port)

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	require.NoError(t, push.SetOption(OptReconnectIvl, 20*time.Millisecond))
	require.NoError(t, push.SetOption(OptReconnectIvlMax, 100*time.Millisecond))
	require.NoError(t, push.Connect(addr))

	time.Sleep(150 * time.Millisecond)

	pull, err := ctx.NewSocket(api.Pull)
	require.NoError(t, err)
	require.NoError(t, pull.Bind(addr))

	go func() {
		for push.Send([]byte("hello"), SendDefault) == api.ErrAgain {
			time.Sleep(time.Millisecond)
		}
	}()

	require.Eventually(t, func() bool {
		data, _, err := pull.Recv()
		if err == api.ErrAgain {
			return false
		}
		require.NoError(t, err)
		require.Equal(t, "hello", string(data))
		return true
	}, 5*time.Second, 5*time.Millisecond)
}

// S5: a peer sending a malformed greeting is isolated to its own
// connection; the listener keeps serving legitimate peers.
func TestScenarioProtocolMismatchIsolated(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	pull, err := ctx.NewSocket(api.Pull)
	require.NoError(t, err)
	require.NoError(t, pull.Bind("tcp://127.0.0.1:0"))
	addr, err := pull.LastEndpoint()
	require.NoError(t, err)

	bad, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_, err = bad.Write([]byte("not a zmtp greeting!"))
	require.NoError(t, err)
	bad.Close()

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	require.NoError(t, push.Connect("tcp://"+addr))

	go func() {
		for push.Send([]byte("still works"), SendDefault) == api.ErrAgain {
			time.Sleep(time.Millisecond)
		}
	}()

	require.Eventually(t, func() bool {
		data, _, err := pull.Recv()
		if err == api.ErrAgain {
			return false
		}
		require.NoError(t, err)
		require.Equal(t, "still works", string(data))
		return true
	}, 5*time.Second, 5*time.Millisecond)
}

// S6: closing a PUSH socket with a generous linger blocks until every
// already-enqueued message has drained to its peer.
func TestScenarioLingerDrainsBeforeClose(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	pull, err := ctx.NewSocket(api.Pull)
	require.NoError(t, err)
	require.NoError(t, pull.Bind("tcp://127.0.0.1:0"))
	addr, err := pull.LastEndpoint()
	require.NoError(t, err)

	push, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	require.NoError(t, push.SetOption(OptLinger, 5*time.Second))
	require.NoError(t, push.Connect("tcp://"+addr))

	const total = 100
	for i := 0; i < total; i++ {
		payload := []byte(fmt.Sprintf("m%d", i))
		for push.Send(payload, SendDefault) == api.ErrAgain {
			time.Sleep(time.Millisecond)
		}
	}

	closeDone := make(chan struct{})
	go func() {
		push.Close()
		close(closeDone)
	}()

	received := 0
	require.Eventually(t, func() bool {
		for {
			_, _, err := pull.Recv()
			if err == api.ErrAgain {
				return received == total
			}
			require.NoError(t, err)
			received++
		}
	}, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, total, received)

	select {
	case <-closeDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Close with linger never returned after drain")
	}
}
