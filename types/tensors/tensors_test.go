// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"fmt"
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/segreduce/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromFlatDataAndDimensions(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	tensor := FromFlatDataAndDimensions(data, 2, 3)
	fmt.Printf("\ttensor=%s\n", tensor)
	require.NoError(t, tensor.Shape().Check(dtypes.Float32, 2, 3))
	require.True(t, tensor.IsContiguous())

	// Data is copied.
	data[0] = 100
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, CopyFlatData[float32](tensor))
	require.Panics(t, func() { _ = CopyFlatData[float64](tensor) })
	require.Panics(t, func() { _ = FromFlatDataAndDimensions(data, 4, 2) })

	empty := FromFlatDataAndDimensions([]float64{}, 0)
	require.True(t, empty.Ok())
	assert.Equal(t, 0, empty.Size())
	assert.Len(t, CopyFlatData[float64](empty), 0)

	scalar := FromScalar(bfloat16.FromFloat32(3))
	assert.True(t, scalar.IsScalar())
	assert.Equal(t, bfloat16.FromFloat32(3), ToScalar[bfloat16.BFloat16](scalar))
}

func TestFromShape(t *testing.T) {
	tensor := FromShape(shapes.Make(dtypes.Float16, 3))
	assert.Equal(t, []float16.Float16{0, 0, 0}, CopyFlatData[float16.Float16](tensor))
	MutableFlatData(tensor, func(flat []float16.Float16) {
		flat[1] = float16.Fromfloat32(2)
	})
	assert.Equal(t, []float64{0, 2, 0}, tensor.Float64s())
}

func TestStrides(t *testing.T) {
	// Transposed view of a [2, 3] matrix.
	data := []float64{1, 2, 3, 4, 5, 6}
	transposed := FromFlatDataAndStrides(data, 0, []int{3, 2}, []int{1, 3})
	require.False(t, transposed.IsContiguous())
	assert.Equal(t, []int{1, 3}, transposed.LayoutStrides())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, CopyFlatData[float64](transposed))
	require.Panics(t, func() { ConstFlatData(transposed, func(_ []float64) {}) })

	contiguous := transposed.Contiguous()
	require.True(t, contiguous.IsContiguous())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, Flat[float64](contiguous))

	// Row-major strides given explicitly are contiguous.
	rowMajor := FromFlatDataAndStrides(data, 0, []int{2, 3}, []int{3, 1})
	assert.True(t, rowMajor.IsContiguous())

	// Offset views are not.
	tail := FromFlatDataAndStrides(data, 3, []int{3}, []int{1})
	assert.False(t, tail.IsContiguous())
	assert.Equal(t, []float64{4, 5, 6}, CopyFlatData[float64](tail))

	require.Panics(t, func() { _ = FromFlatDataAndStrides(data, 2, []int{3, 2}, []int{1, 3}) })
}

func TestInDelta(t *testing.T) {
	nan := float32(math.NaN())
	t0 := FromFlatDataAndDimensions([]float32{1, nan, float32(math.Inf(1))}, 3)
	t1 := FromFlatDataAndDimensions([]float32{1.0001, nan, float32(math.Inf(1))}, 3)
	assert.True(t, t0.InDelta(t1, 1e-3))
	assert.False(t, t0.InDelta(t1, 1e-6))

	t2 := FromFlatDataAndDimensions([]float32{1, 0, float32(math.Inf(1))}, 3)
	assert.False(t, t0.InDelta(t2, 1e-3))
	t3 := FromFlatDataAndDimensions([]float32{1, nan, float32(math.Inf(1))}, 1, 3)
	assert.False(t, t0.InDelta(t3, 1e-3))
}

func TestLocalClone(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]int32{3, 1, 2}, 3)
	clone := tensor.LocalClone()
	MutableFlatData(clone, func(flat []int32) { flat[0] = 7 })
	assert.Equal(t, []int32{3, 1, 2}, CopyFlatData[int32](tensor))
	assert.Equal(t, []int32{7, 1, 2}, CopyFlatData[int32](clone))
}
