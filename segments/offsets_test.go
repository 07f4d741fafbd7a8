// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/segreduce/types/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsets(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e *Engine) {
		offsets, err := e.Offsets(tensors.FromFlatDataAndDimensions([]int32{3, 0, 2}, 3))
		require.NoError(t, err)
		assert.Equal(t, dtypes.Int32, offsets.DType())
		assert.Equal(t, []int{4}, offsets.Shape().Dimensions)
		assert.Equal(t, []int32{0, 3, 3, 5}, tensors.CopyFlatData[int32](offsets))

		// Batched lengths: each row has its own prefix sums.
		offsets, err = e.Offsets(tensors.FromFlatDataAndDimensions([]int64{1, 2, 3, 4}, 2, 2))
		require.NoError(t, err)
		assert.Equal(t, dtypes.Int64, offsets.DType())
		assert.Equal(t, []int{2, 3}, offsets.Shape().Dimensions)
		assert.Equal(t, []int64{0, 1, 3, 0, 3, 7}, tensors.CopyFlatData[int64](offsets))

		// No segments.
		offsets, err = e.Offsets(tensors.FromFlatDataAndDimensions([]int32{}, 0))
		require.NoError(t, err)
		assert.Equal(t, []int32{0}, tensors.CopyFlatData[int32](offsets))
	})

	_, err := Offsets(tensors.FromFlatDataAndDimensions([]float32{1, 2}, 2))
	require.Error(t, err)
	_, err = Offsets(tensors.FromScalar(int32(3)))
	require.Error(t, err)
	_, err = Offsets(nil)
	require.Error(t, err)
}
