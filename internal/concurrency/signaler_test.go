// File: internal/concurrency/signaler_test.go
// Author: momentics <momentics@gmail.com>

package concurrency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalerSendRecv(t *testing.T) {
	s, err := NewSignaler()
	require.NoError(t, err)
	defer s.Close()

	require.False(t, s.Wait(0), "no signal posted yet")

	s.Send()
	require.True(t, s.Wait(time.Second))
	s.Recv()

	require.False(t, s.Wait(0), "signal was consumed")
}

func TestSignalerWaitTimesOut(t *testing.T) {
	s, err := NewSignaler()
	require.NoError(t, err)
	defer s.Close()

	start := time.Now()
	ok := s.Wait(20 * time.Millisecond)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSignalerCrossGoroutine(t *testing.T) {
	s, err := NewSignaler()
	require.NoError(t, err)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Send()
		close(done)
	}()

	require.True(t, s.Wait(time.Second))
	s.Recv()
	<-done
}
