// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/segreduce/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// FromShape returns a Tensor with the given shape, with the data initialized with zeros.
func FromShape(shape shapes.Shape) (t *Tensor) {
	if !shape.Ok() {
		panic(errors.New("invalid shape"))
	}
	t = newTensor(shape)
	flatV := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), shape.Size(), shape.Size())
	t.flat = flatV.Interface()
	return
}

// FromScalar creates a tensor with the given scalar.
// The `DType` is inferred from the value.
func FromScalar[T dtypes.Supported](value T) (t *Tensor) {
	return FromFlatDataAndDimensions([]T{value})
}

// FromFlatDataAndDimensions creates a tensor with the given dimensions, filled with the flattened values given in `data`.
// The data is copied to the Tensor.
// The `DType` is inferred from the `data` type.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) (t *Tensor) {
	dtype := dtypes.FromGenericsType[T]()
	shape := shapes.Make(dtype, dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("FromFlatDataAndDimensions(%s): data size is %d, but dimensions size is %d", shape, len(data), shape.Size())
	}
	t = newTensor(shape)
	t.flat = slices.Clone(data)
	if t.flat.([]T) == nil {
		t.flat = make([]T, 0)
	}
	return
}

// FromFlatDataAndStrides creates a strided view over data, without copying it: changes to data are
// visible in the tensor.
//
// strides holds the number of elements to skip in data to move one position in each axis, and
// offset is the position in data of the first element.
func FromFlatDataAndStrides[T dtypes.Supported](data []T, offset int, dimensions, strides []int) (t *Tensor) {
	dtype := dtypes.FromGenericsType[T]()
	shape := shapes.Make(dtype, dimensions...)
	if len(strides) != shape.Rank() {
		exceptions.Panicf("FromFlatDataAndStrides(%s): got %d strides for rank %d", shape, len(strides), shape.Rank())
	}
	t = newTensor(shape)
	t.flat = data
	t.offset = offset
	t.strides = slices.Clone(strides)
	if shape.Size() > 0 {
		last := offset
		for axis, dim := range dimensions {
			if strides[axis] < 0 {
				exceptions.Panicf("FromFlatDataAndStrides(%s): negative strides (%v) not supported", shape, strides)
			}
			last += (dim - 1) * strides[axis]
		}
		if offset < 0 || last >= len(data) {
			exceptions.Panicf("FromFlatDataAndStrides(%s): strides %v with offset %d go beyond the data of size %d",
				shape, strides, offset, len(data))
		}
	}
	return
}

// ConstFlatData calls accessFn with the flattened data as a slice of the Go type corresponding to the DType type.
// Even scalar values have a flattened data representation of one element.
//
// The tensor must be contiguous (see Tensor.IsContiguous), and accessFn must not modify the values.
// It panics if the tensor is in an invalid state or if the generic type doesn't match the DType of the tensor.
func ConstFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	accessFn(flatOf[T](t, "ConstFlatData"))
}

// MutableFlatData calls accessFn with the flattened data as a slice of the Go type corresponding to the DType type.
//
// The tensor must be contiguous, see Tensor.IsContiguous.
// It panics if the tensor is in an invalid state or if the generic type doesn't match the DType of the tensor.
func MutableFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	accessFn(flatOf[T](t, "MutableFlatData"))
}

// Flat returns the underlying flat storage of a contiguous tensor.
//
// The returned slice aliases the tensor: callers must only write to it if they own the tensor.
// It panics if the tensor is not contiguous or if the generic type doesn't match the DType of the tensor.
func Flat[T dtypes.Supported](t *Tensor) []T {
	return flatOf[T](t, "Flat")
}

func flatOf[T dtypes.Supported](t *Tensor, method string) []T {
	t.AssertValid()
	if t.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("%s[%T] is incompatible with Tensor's dtype %s -- expected dtype %s",
			method, v, t.shape.DType, dtypes.FromGenericsType[T]())
	}
	if !t.IsContiguous() {
		exceptions.Panicf("%s: tensor %s is not contiguous, use Tensor.Contiguous() first", method, t.shape)
	}
	return t.flat.([]T)[:t.shape.Size()]
}

// ToScalar returns the scalar value of the Tensor.
//
// It will panic if the given generic type doesn't match the DType of the tensor, or if the tensor is not a scalar.
func ToScalar[T dtypes.Supported](t *Tensor) T {
	t.AssertValid()
	if t.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("ToScalar[%T] is incompatible with Tensor's dtype %s", v, t.shape.DType)
	}
	if !t.shape.IsScalar() {
		var v T
		exceptions.Panicf("ToScalar[%T] requires scalar Tensor, got shape %s instead", v, t.shape)
	}
	return t.flat.([]T)[t.offset]
}

// CopyFlatData returns a copy of the flat data of the Tensor, in row-major order. It works for strided tensors.
//
// It will panic if the given generic type doesn't match the DType of the tensor.
func CopyFlatData[T dtypes.Supported](t *Tensor) []T {
	t.AssertValid()
	if t.IsContiguous() {
		var flatCopy []T
		ConstFlatData(t, func(flat []T) {
			flatCopy = slices.Clone(flat)
		})
		return flatCopy
	}
	if t.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("CopyFlatData[%T] is incompatible with Tensor's dtype %s", v, t.shape.DType)
	}
	storage := t.flat.([]T)
	flatCopy := make([]T, 0, t.shape.Size())
	for indices := range t.shape.Iter() {
		flatCopy = append(flatCopy, storage[t.storageIndex(indices)])
	}
	return flatCopy
}

// Contiguous returns the tensor itself if it is already contiguous, or a new contiguous copy otherwise.
func (t *Tensor) Contiguous() *Tensor {
	t.AssertValid()
	if t.IsContiguous() {
		return t
	}
	clone := FromShape(t.shape)
	srcV, dstV := reflect.ValueOf(t.flat), reflect.ValueOf(clone.flat)
	dstIdx := 0
	for indices := range t.shape.Iter() {
		dstV.Index(dstIdx).Set(srcV.Index(t.storageIndex(indices)))
		dstIdx++
	}
	return clone
}

// LocalClone creates a contiguous clone of the Tensor.
func (t *Tensor) LocalClone() *Tensor {
	t.AssertValid()
	if !t.IsContiguous() {
		return t.Contiguous()
	}
	clone := newTensor(t.shape.Clone())
	flatV := reflect.ValueOf(t.flat)
	size := t.shape.Size()
	cloneFlatV := reflect.MakeSlice(flatV.Type(), size, size)
	reflect.Copy(cloneFlatV, flatV.Slice(0, size))
	clone.flat = cloneFlatV.Interface()
	return clone
}

// Float64s returns a copy of the tensor values converted to float64, in row-major order.
//
// It works for all float and integer dtypes, including Float16 and BFloat16.
func (t *Tensor) Float64s() []float64 {
	t.AssertValid()
	src := t
	if !t.IsContiguous() {
		src = t.Contiguous()
	}
	size := src.shape.Size()
	values := make([]float64, size)
	switch flat := src.flat.(type) {
	case []float32:
		for ii := range values {
			values[ii] = float64(flat[ii])
		}
	case []float64:
		copy(values, flat)
	case []float16.Float16:
		for ii := range values {
			values[ii] = float64(flat[ii].Float32())
		}
	case []bfloat16.BFloat16:
		for ii := range values {
			values[ii] = float64(flat[ii].Float32())
		}
	case []int32:
		for ii := range values {
			values[ii] = float64(flat[ii])
		}
	case []int64:
		for ii := range values {
			values[ii] = float64(flat[ii])
		}
	default:
		flatV := reflect.ValueOf(src.flat)
		for ii := range values {
			values[ii] = flatV.Index(ii).Convert(reflect.TypeOf(float64(0))).Float()
		}
	}
	return values
}

// InDelta checks whether Abs(t - otherTensor) <= delta for every element.
// NaNs are considered equal to each other.
// If the shapes are different it returns false.
func (t *Tensor) InDelta(otherTensor *Tensor, delta float64) bool {
	t.AssertValid()
	otherTensor.AssertValid()
	if t == otherTensor {
		return true
	}
	if !t.shape.Equal(otherTensor.shape) {
		return false
	}
	values0, values1 := t.Float64s(), otherTensor.Float64s()
	for ii, v0 := range values0 {
		v1 := values1[ii]
		if math.IsNaN(v0) || math.IsNaN(v1) {
			if math.IsNaN(v0) != math.IsNaN(v1) {
				return false
			}
			continue
		}
		if math.IsInf(v0, 0) || math.IsInf(v1, 0) {
			if v0 != v1 {
				return false
			}
			continue
		}
		if math.Abs(v0-v1) > delta {
			return false
		}
	}
	return true
}

// MaxSizeForString is the largest Local tensor that is actually returned by String() is requested.
var MaxSizeForString = 500

// String converts to string, if not too large.
func (t *Tensor) String() string {
	if !t.Ok() {
		return "<invalid tensor>"
	}
	if t.shape.Size() > MaxSizeForString {
		return fmt.Sprintf("%s: (... too large, %d values ...)", t.shape, t.shape.Size())
	}
	parts := make([]string, 0, t.shape.Size())
	for _, v := range t.Float64s() {
		parts = append(parts, fmt.Sprintf("%g", v))
	}
	return fmt.Sprintf("%s: [%s]", t.shape, strings.Join(parts, " "))
}
