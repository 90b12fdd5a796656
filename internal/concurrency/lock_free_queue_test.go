// File: internal/concurrency/lock_free_queue_test.go
// Author: momentics <momentics@gmail.com>

package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockFreeQueueFIFO(t *testing.T) {
	q := NewLockFreeQueue[int](8)
	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(i))
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.Dequeue()
	require.False(t, ok)
}

func TestLockFreeQueueRejectsOverCapacity(t *testing.T) {
	q := NewLockFreeQueue[int](4)
	for i := 0; i < 4; i++ {
		require.True(t, q.Enqueue(i))
	}
	require.False(t, q.Enqueue(99))
}

func TestLockFreeQueueConcurrentProducersConsumers(t *testing.T) {
	q := NewLockFreeQueue[int](1024)
	const producers = 4
	const perProducer = 2000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.Enqueue(i) {
				}
			}
		}()
	}

	total := producers * perProducer
	got := 0
	var mu sync.Mutex
	var cwg sync.WaitGroup
	for c := 0; c < producers; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				mu.Lock()
				done := got >= total
				mu.Unlock()
				if done {
					return
				}
				if _, ok := q.Dequeue(); ok {
					mu.Lock()
					got++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	cwg.Wait()
	require.Equal(t, total, got)
}
