// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_WaitToStart(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(2)

	var count atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		pool.WaitToStart(func() {
			count.Add(1)
			runtime.Gosched()
			wg.Done()
		})
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout before all tasks were executed.")
	}
	assert.Equal(t, int32(10), count.Load())

	// No parallelism runs inline.
	pool.SetMaxParallelism(0)
	count.Store(0)
	pool.WaitToStart(func() { count.Add(1) })
	assert.Equal(t, int32(1), count.Load())
	assert.False(t, pool.StartIfAvailable(func() {}))
}

func TestPool_ParallelFor(t *testing.T) {
	for _, parallelism := range []int{0, 1, 3, -1} {
		pool := NewWithParallelism(parallelism)
		const n = 1000
		visits := make([]int32, n)
		var numCalls atomic.Int32
		pool.ParallelFor(n, 16, func(start, end int) {
			numCalls.Add(1)
			for ii := start; ii < end; ii++ {
				atomic.AddInt32(&visits[ii], 1)
			}
		})
		for ii, v := range visits {
			require.Equalf(t, int32(1), v, "parallelism=%d: unit %d visited %d times", parallelism, ii, v)
		}
		assert.Equal(t, int32(pool.NumChunks(n, 16)), numCalls.Load())
		if parallelism == 0 {
			assert.Equal(t, int32(1), numCalls.Load())
		}
		if parallelism == 3 {
			assert.Equal(t, 3, pool.NumChunks(n, 16))
		}
	}

	// Minimum chunk size is respected.
	pool := NewWithParallelism(8)
	assert.Equal(t, 2, pool.NumChunks(20, 10))
	assert.Equal(t, 0, pool.NumChunks(0, 10))

	// Nothing to do.
	pool.ParallelFor(0, 1, func(_, _ int) { t.Fatal("should not be called") })
}
