// File: internal/session/session_test.go
// Author: momentics <momentics@gmail.com>

package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nanozmq/zmqcore/api"
)

func TestSessionBeginTerminateWithoutEngine(t *testing.T) {
	s, err := NewSession()
	require.NoError(t, err)
	defer s.Mailbox().Close()

	s.BeginTerminate()
	require.Equal(t, api.SessionTerminated, s.State())
}

func TestSessionHandleCommandIgnoresUnknownPipe(t *testing.T) {
	s, err := NewSession()
	require.NoError(t, err)
	defer s.Mailbox().Close()

	// No engine attached; ActivateRead/ActivateWrite must be no-ops, not panics.
	s.HandleCommand(api.Command{Tag: api.CmdActivateRead})
	s.HandleCommand(api.Command{Tag: api.CmdActivateWrite})
	require.Equal(t, api.SessionActive, s.State())
}

func TestSessionDeliverMessageWithoutPipeReleasesIt(t *testing.T) {
	s, err := NewSession()
	require.NoError(t, err)
	defer s.Mailbox().Close()

	buf := &countingBuffer{data: make([]byte, 3)}
	ok := s.DeliverMessage(api.NewMessage(buf, 0))
	require.True(t, ok)
	require.Equal(t, 1, buf.released)
}

type countingBuffer struct {
	data     []byte
	released int
}

func (b *countingBuffer) Bytes() []byte { return b.data }
func (b *countingBuffer) Len() int      { return len(b.data) }
func (b *countingBuffer) Retain()       {}
func (b *countingBuffer) Release()      { b.released++ }
