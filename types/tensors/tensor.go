// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implements a `Tensor`, a representation of a multi-dimensional array stored in host memory.
//
// Tensors are multidimensional arrays (from scalar with 0 dimensions, to arbitrarily large dimensions), defined
// by their shape (a data type and its axes dimensions) and their actual content, a flat Go slice of the
// underlying dtype.
//
// There are various ways to construct a Tensor:
//
//   - FromShape(shape shapes.Shape): creates a tensor with the given shape, and zero values.
//
//   - FromScalar[T dtypes.Supported](value T): creates a scalar Tensor.
//
//   - FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int): creates a Tensor with the
//     given dimensions, and set the flattened values with the given data. Example:
//
//     t := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2) // Tensor with [[1,2], [3,4]]
//
//   - FromFlatDataAndStrides[T dtypes.Supported](data []T, dimensions, strides []int): creates a strided view
//     over data, without copying. Such a tensor may be non-contiguous, see Tensor.IsContiguous and
//     Tensor.Contiguous.
//
// Tensors returned by the segments package are owned by the caller. They are not safe for concurrent mutation.
package tensors

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/segreduce/types/shapes"
)

// Tensor represents a multidimensional array, defined by its shape -- a data type (dtypes.DType) and its axes'
// dimensions -- and its actual content stored as a flat (1D) slice of values.
//
// A Tensor can be a strided view over its storage (see FromFlatDataAndStrides), in which case
// its elements are not necessarily contiguous in memory.
type Tensor struct {
	// shape of the tensor.
	shape shapes.Shape

	// flat holds the slice with actual data, a []T for the Go type of the dtype.
	flat any

	// strides is nil for row-major contiguous tensors, otherwise it holds the
	// number of elements to skip in flat for each axis.
	strides []int

	// offset into flat of the first element, only used by strided views.
	offset int
}

// newTensor returns a Tensor object initialized only with the shape, but no actual storage.
func newTensor(shape shapes.Shape) *Tensor {
	return &Tensor{shape: shape}
}

// Shape of the tensor, includes DType.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType returns the DType of the tensor's shape.
func (t *Tensor) DType() dtypes.DType {
	return t.shape.DType
}

// Rank returns the rank of the tensor's shape.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// IsScalar returns whether the tensor represents a scalar value.
func (t *Tensor) IsScalar() bool { return t.shape.IsScalar() }

// Size returns the number of elements of the tensor.
func (t *Tensor) Size() int { return t.shape.Size() }

// Memory returns the number of bytes used by the elements of the tensor.
func (t *Tensor) Memory() uintptr { return t.shape.Memory() }

// Ok returns whether the tensor is in a valid state: it has a valid shape and storage.
func (t *Tensor) Ok() bool {
	return t != nil && t.shape.Ok() && t.flat != nil
}

// AssertValid panics if the tensor is nil or in an invalid state.
func (t *Tensor) AssertValid() {
	if t == nil {
		exceptions.Panicf("tensor is nil")
	}
	if !t.shape.Ok() {
		exceptions.Panicf("tensor has invalid shape")
	}
	if t.flat == nil {
		exceptions.Panicf("tensor has no storage")
	}
}

// IsContiguous returns whether the elements of the tensor are stored contiguously in row-major order,
// starting at the beginning of its storage.
func (t *Tensor) IsContiguous() bool {
	if t.strides == nil {
		return true
	}
	if t.offset != 0 {
		return false
	}
	rowMajor := t.shape.Strides()
	for axis, dim := range t.shape.Dimensions {
		// Strides of axes with dimension 1 are irrelevant.
		if dim > 1 && t.strides[axis] != rowMajor[axis] {
			return false
		}
	}
	return true
}

// LayoutStrides return the strides for each axis. This can be handy when manipulating the flat data.
//
// For contiguous tensors these are the row-major strides.
func (t *Tensor) LayoutStrides() (strides []int) {
	if t.strides != nil {
		return slices.Clone(t.strides)
	}
	return t.shape.Strides()
}

// storageIndex returns the position in the flat storage for the given indices.
func (t *Tensor) storageIndex(indices []int) int {
	pos := t.offset
	for axis, idx := range indices {
		pos += idx * t.strides[axis]
	}
	return pos
}
