// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/segreduce/types/tensors"
	"github.com/pkg/errors"
)

// Offsets returns the exclusive prefix sums of the lengths along their last axis, with an extra leading 0.
// See Engine.Offsets.
func Offsets(lengths *tensors.Tensor) (*tensors.Tensor, error) {
	return Default().Offsets(lengths)
}

// Offsets returns the exclusive prefix sums of the lengths along their last axis, with an extra leading 0.
//
// For lengths shaped [..., S] the offsets are shaped [..., S+1] and have the same dtype: offsets[..., 0] = 0 and
// offsets[..., i+1] = offsets[..., i] + lengths[..., i]. Segment i of a row spans [offsets[i], offsets[i+1]).
//
// Lengths must be Int32 or Int64, with rank >= 1. Values are not validated: negative lengths yield
// non-monotonic offsets.
func (e *Engine) Offsets(lengths *tensors.Tensor) (offsets *tensors.Tensor, err error) {
	err = exceptions.TryCatch[error](func() {
		if err := checkLengths(lengths); err != nil {
			panic(err)
		}
		offsets = e.buildOffsets(lengths)
	})
	if err != nil {
		return nil, errors.WithMessage(err, "segments.Offsets")
	}
	return offsets, nil
}

func checkLengths(lengths *tensors.Tensor) error {
	if lengths == nil || !lengths.Ok() {
		return errors.New("lengths tensor is nil or invalid")
	}
	if lengths.DType() != dtypes.Int32 && lengths.DType() != dtypes.Int64 {
		return errors.Errorf("lengths must be Int32 or Int64, got %s", lengths.DType())
	}
	if lengths.Rank() < 1 {
		return errors.Errorf("lengths must have rank >= 1, got shape %s", lengths.Shape())
	}
	if !lengths.IsContiguous() {
		return errors.Errorf("lengths must be contiguous, call Tensor.Contiguous() first")
	}
	return nil
}

// buildOffsets assumes the lengths have been checked with checkLengths.
func (e *Engine) buildOffsets(lengths *tensors.Tensor) *tensors.Tensor {
	switch lengths.DType() {
	case dtypes.Int32:
		return buildOffsets[int32](e, lengths)
	case dtypes.Int64:
		return buildOffsets[int64](e, lengths)
	}
	exceptions.Panicf("lengths dtype %s not supported", lengths.DType())
	return nil
}

func buildOffsets[L Index](e *Engine, lengths *tensors.Tensor) *tensors.Tensor {
	shape := lengths.Shape()
	segmentsAxis := shape.Rank() - 1
	numRows, numSegments, _ := shape.SplitAtAxis(segmentsAxis)
	offsets := tensors.FromShape(shape.WithDim(segmentsAxis, numSegments+1))
	lengthsFlat := tensors.Flat[L](lengths)
	offsetsFlat := tensors.Flat[L](offsets)
	e.workers.ParallelFor(numRows, e.config.MinChunk, func(start, end int) {
		for row := start; row < end; row++ {
			rowLengths := lengthsFlat[row*numSegments : (row+1)*numSegments]
			rowOffsets := offsetsFlat[row*(numSegments+1) : (row+1)*(numSegments+1)]
			var sum L
			rowOffsets[0] = 0
			for i, length := range rowLengths {
				sum += length
				rowOffsets[i+1] = sum
			}
		}
	})
	return offsets
}
