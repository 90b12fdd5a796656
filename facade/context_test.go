// File: facade/context_test.go
// Author: momentics <momentics@gmail.com>

package facade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nanozmq/zmqcore/api"
)

func TestNewContextStartsAndTerms(t *testing.T) {
	ctx, err := NewContext(2)
	require.NoError(t, err)
	require.NoError(t, ctx.Term())
	// Term is idempotent.
	require.NoError(t, ctx.Term())
}

func TestNewSocketRejectedAfterTerm(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	require.NoError(t, ctx.Term())

	_, err = ctx.NewSocket(api.Push)
	require.ErrorIs(t, err, api.ErrTerm)
}

func TestContextConfigRoundTrips(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	snap := ctx.GetConfig()
	require.Equal(t, 1, snap["io_threads"])

	reloaded := make(chan struct{}, 1)
	ctx.OnReload(func() { reloaded <- struct{}{} })
	require.NoError(t, ctx.SetConfig(map[string]any{"snd_hwm": 500}))
	select {
	case <-reloaded:
	case <-time.After(time.Second):
		t.Fatal("reload hook never fired")
	}
	require.Equal(t, 500, ctx.GetConfig()["snd_hwm"])
}

func TestContextStatsStartsAtZero(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	stats := ctx.Stats()
	require.Zero(t, stats.MessagesSent)
	require.Zero(t, stats.MessagesRecvd)
	require.Zero(t, stats.ActiveSessions)
}

func TestContextDebugDumpIncludesSocketCount(t *testing.T) {
	ctx, err := NewContext(1)
	require.NoError(t, err)
	defer ctx.Term()

	sock, err := ctx.NewSocket(api.Push)
	require.NoError(t, err)
	defer sock.Close()

	dump := ctx.DebugDump()
	require.Equal(t, 1, dump["sockets.active"])
}
