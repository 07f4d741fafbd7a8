// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segprim

import (
	"math"
	"testing"

	"github.com/gomlx/segreduce/internal/workerspool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity[T any](v T) T { return v }

func TestReduce(t *testing.T) {
	add := func(a, b float64) float64 { return a + b }
	for _, parallelism := range []int{0, 4} {
		pool := workerspool.NewWithParallelism(parallelism)
		input := []float64{1, 2, 3, 4, 5, 6}
		offsets := []int32{0, 3, 3, 6}
		output := make([]float64, 3)
		require.NoError(t, Reduce(pool, input, offsets, output, identity[float64], add, 0))
		assert.Equal(t, []float64{6, 0, 15}, output)

		// Initial value is combined once per segment, and is the result for empty segments.
		require.NoError(t, Reduce(pool, input, offsets, output, identity[float64], add, 10))
		assert.Equal(t, []float64{16, 10, 25}, output)
	}
}

func TestReduceLargeSegments(t *testing.T) {
	// Segments larger than LeafSize and many segments, to exercise the tree and the chunking.
	pool := workerspool.NewWithParallelism(3)
	const numSegments = 500
	offsets := make([]int64, numSegments+1)
	var input []int32
	for segment := range numSegments {
		length := segment % 50
		for ii := range length {
			input = append(input, int32(ii))
		}
		offsets[segment+1] = offsets[segment] + int64(length)
	}
	output := make([]int64, numSegments)
	load := func(v int32) int64 { return int64(v) }
	add := func(a, b int64) int64 { return a + b }
	require.NoError(t, Reduce(pool, input, offsets, output, load, add, 0))
	for segment, got := range output {
		length := int64(segment % 50)
		require.Equalf(t, length*(length-1)/2, got, "segment %d", segment)
	}

	maxOp := func(a, b float32) float32 {
		if b != b {
			return b
		}
		return max(a, b)
	}
	values := make([]float32, 100)
	for ii := range values {
		values[ii] = float32(ii)
	}
	values[77] = float32(math.NaN())
	result := make([]float32, 1)
	require.NoError(t, Reduce(pool, values, []int32{0, 100}, result, identity[float32], maxOp, float32(math.Inf(-1))))
	assert.True(t, math.IsNaN(float64(result[0])))
}

func TestReduceInvalidOffsets(t *testing.T) {
	pool := workerspool.NewWithParallelism(0)
	input := []float64{1, 2, 3}
	output := make([]float64, 3)
	add := func(a, b float64) float64 { return a + b }
	err := Reduce(pool, input, []int64{0, 2, 1, 3}, output, identity[float64], add, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOffsets))
	assert.Equal(t, []float64{3, 0, 5}, output)

	err = Reduce(pool, input, []int64{0, 4}, output[:1], identity[float64], add, 0)
	assert.True(t, errors.Is(err, ErrInvalidOffsets))

	err = Reduce(pool, input, []int64{0, 3}, output, identity[float64], add, 0)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidOffsets))
}
