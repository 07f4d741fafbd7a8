// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Float enumerates the Go types supported for values.
type Float interface {
	float32 | float64 | float16.Float16 | bfloat16.BFloat16
}

// Index enumerates the Go types supported for lengths and offsets.
type Index interface {
	int32 | int64
}

// kernelFn is the type of the functions handled by kernelDispatcher.
type kernelFn func(call *segmentCall)

const maxDTypes = 32

// kernelDispatcher selects the kernel instantiation matching the values and lengths dtypes.
type kernelDispatcher struct {
	Name  string
	fnMap [maxDTypes][maxDTypes]kernelFn
}

func newKernelDispatcher(name string) *kernelDispatcher {
	return &kernelDispatcher{Name: name}
}

// Dispatch calls the kernel registered for the values and lengths dtypes.
func (d *kernelDispatcher) Dispatch(valuesDType, lengthsDType dtypes.DType, call *segmentCall) {
	fn := d.lookup(valuesDType, lengthsDType)
	if fn == nil {
		exceptions.Panicf("values dtype %s with lengths dtype %s not supported by %s", valuesDType, lengthsDType, d.Name)
	}
	fn(call)
}

// IsSupported returns whether a kernel is registered for the pair of dtypes.
func (d *kernelDispatcher) IsSupported(valuesDType, lengthsDType dtypes.DType) bool {
	return d.lookup(valuesDType, lengthsDType) != nil
}

func (d *kernelDispatcher) lookup(valuesDType, lengthsDType dtypes.DType) kernelFn {
	if valuesDType >= maxDTypes || lengthsDType >= maxDTypes {
		return nil
	}
	return d.fnMap[valuesDType][lengthsDType]
}

// Register a kernel for a pair of dtypes. It overwrites any previous registration.
func (d *kernelDispatcher) Register(valuesDType, lengthsDType dtypes.DType, fn kernelFn) {
	if valuesDType >= maxDTypes || lengthsDType >= maxDTypes {
		exceptions.Panicf("dtypes (%s, %s) not supported by %s", valuesDType, lengthsDType, d.Name)
	}
	d.fnMap[valuesDType][lengthsDType] = fn
}

var (
	forwardGeneralDispatcher  = newKernelDispatcher("ForwardGeneral")
	forwardFastPathDispatcher = newKernelDispatcher("ForwardFastPath")
	backwardDispatcher        = newKernelDispatcher("Backward")
)

// numeric converts between the storage type T of the values and the compute type C used for accumulation.
type numeric[T Float, C constraints.Float] struct {
	load  func(v T) C
	store func(v C) T
}

func identity[T any](v T) T { return v }

var (
	float32Numeric = numeric[float32, float32]{load: identity[float32], store: identity[float32]}
	float64Numeric = numeric[float64, float64]{load: identity[float64], store: identity[float64]}
	float16Numeric = numeric[float16.Float16, float32]{
		load:  func(v float16.Float16) float32 { return v.Float32() },
		store: float16.Fromfloat32,
	}
	bfloat16Numeric = numeric[bfloat16.BFloat16, float32]{
		load:  func(v bfloat16.BFloat16) float32 { return v.Float32() },
		store: bfloat16.FromFloat32,
	}
)

func init() {
	registerKernels[float32, float32, int32](float32Numeric)
	registerKernels[float32, float32, int64](float32Numeric)
	registerKernels[float64, float64, int32](float64Numeric)
	registerKernels[float64, float64, int64](float64Numeric)
	registerKernels[float16.Float16, float32, int32](float16Numeric)
	registerKernels[float16.Float16, float32, int64](float16Numeric)
	registerKernels[bfloat16.BFloat16, float32, int32](bfloat16Numeric)
	registerKernels[bfloat16.BFloat16, float32, int64](bfloat16Numeric)
}

func registerKernels[T Float, C constraints.Float, L Index](num numeric[T, C]) {
	valuesDType, lengthsDType := dtypes.FromGenericsType[T](), dtypes.FromGenericsType[L]()
	forwardGeneralDispatcher.Register(valuesDType, lengthsDType, func(call *segmentCall) {
		execForwardGeneral[T, C, L](call, num)
	})
	forwardFastPathDispatcher.Register(valuesDType, lengthsDType, func(call *segmentCall) {
		execForwardFastPath[T, C, L](call, num)
	})
	backwardDispatcher.Register(valuesDType, lengthsDType, func(call *segmentCall) {
		execBackward[T, C, L](call, num)
	})
}
