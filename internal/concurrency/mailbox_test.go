// File: internal/concurrency/mailbox_test.go
// Author: momentics <momentics@gmail.com>

package concurrency

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nanozmq/zmqcore/api"
)

func TestMailboxSendRecvOrder(t *testing.T) {
	mb, err := NewMailbox()
	require.NoError(t, err)
	defer mb.Close()

	require.NoError(t, mb.Send(api.Command{Tag: api.CmdStop, Arg: 1}))
	require.NoError(t, mb.Send(api.Command{Tag: api.CmdStop, Arg: 2}))
	require.NoError(t, mb.Send(api.Command{Tag: api.CmdStop, Arg: 3}))

	for _, want := range []int{1, 2, 3} {
		cmd, ok := mb.Recv(0)
		require.True(t, ok)
		require.Equal(t, want, cmd.Arg)
	}
	_, ok := mb.Recv(0)
	require.False(t, ok)
}

func TestMailboxSignalEdgeRearms(t *testing.T) {
	mb, err := NewMailbox()
	require.NoError(t, err)
	defer mb.Close()

	for round := 0; round < 3; round++ {
		require.NoError(t, mb.Send(api.Command{Tag: api.CmdStop}))
		require.True(t, mb.Signaler().Wait(time.Second))
		_, ok := mb.Recv(0)
		require.True(t, ok)
	}
}

func TestMailboxConcurrentProducers(t *testing.T) {
	mb, err := NewMailbox()
	require.NoError(t, err)
	defer mb.Close()

	const producers = 8
	const perProducer = 100
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				require.NoError(t, mb.Send(api.Command{Tag: api.CmdStop}))
			}
		}()
	}
	wg.Wait()

	got := 0
	for {
		_, ok := mb.Recv(50 * time.Millisecond)
		if !ok {
			break
		}
		got++
	}
	require.Equal(t, producers*perProducer, got)
}

func TestMailboxSendAfterCloseFails(t *testing.T) {
	mb, err := NewMailbox()
	require.NoError(t, err)
	require.NoError(t, mb.Close())

	err = mb.Send(api.Command{Tag: api.CmdStop})
	require.ErrorIs(t, err, api.ErrTerm)
}
