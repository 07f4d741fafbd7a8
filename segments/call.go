// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"math"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/segreduce/types/shapes"
	"github.com/gomlx/segreduce/types/tensors"
	"github.com/pkg/errors"
)

// segmentCall holds the validated parameters of one Forward or Backward call, shared by its workers.
type segmentCall struct {
	engine    *Engine
	reduction Reduction
	axis      int
	opts      callOptions
	indexing  segmentIndexing

	values, lengths, offsets *tensors.Tensor
	outputShape              shapes.Shape

	// output is written by the forward kernels, and read by the backward kernel.
	output *tensors.Tensor

	// gradOutput and gradInput are only used by Backward.
	gradOutput, gradInput *tensors.Tensor

	latch abortLatch
}

// newSegmentCall validates the inputs common to Forward and Backward, and builds the offsets.
// All errors returned are precondition violations, found before any kernel is launched.
func (e *Engine) newSegmentCall(values, lengths *tensors.Tensor, axis int, reduction Reduction, opts []Option) (*segmentCall, error) {
	if !reduction.IsValid() {
		return nil, errors.Errorf("invalid reduction %s", reduction)
	}
	if values == nil || !values.Ok() {
		return nil, errors.New("values tensor is nil or invalid")
	}
	if err := checkLengths(lengths); err != nil {
		return nil, err
	}
	if !values.DType().IsFloat() || !forwardGeneralDispatcher.IsSupported(values.DType(), lengths.DType()) {
		return nil, errors.Errorf("values dtype %s not supported, it must be Float32, Float64, Float16 or BFloat16", values.DType())
	}
	if values.Rank() < 1 {
		return nil, errors.Errorf("values must have rank >= 1, got shape %s", values.Shape())
	}
	if !values.IsContiguous() {
		return nil, errors.New("values must be contiguous, call Tensor.Contiguous() first")
	}
	adjustedAxis, err := values.Shape().AdjustAxis(axis)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid axis for values shaped %s", values.Shape())
	}
	axis = adjustedAxis

	// Lengths are either shared by all outer positions, or they match the values' dimensions before the axis.
	lengthsShape := lengths.Shape()
	if lengthsShape.Rank() > 1 {
		if lengthsShape.Rank() != axis+1 {
			return nil, errors.Errorf("lengths shaped %s must have rank 1 or rank %d (axis+1) for values shaped %s and axis %d",
				lengthsShape, axis+1, values.Shape(), axis)
		}
		for ii := range axis {
			if lengthsShape.Dimensions[ii] != values.Shape().Dimensions[ii] {
				return nil, errors.Errorf("lengths shaped %s leading dimensions don't match values shaped %s before axis %d",
					lengthsShape, values.Shape(), axis)
			}
		}
	}

	c := &segmentCall{
		engine:    e,
		reduction: reduction,
		axis:      axis,
		opts:      newCallOptions(opts),
		indexing:  newSegmentIndexing(values.Shape(), axis, lengthsShape),
		values:    values,
		lengths:   lengths,
	}
	c.outputShape = values.Shape().WithDim(axis, c.indexing.numSegments)

	maxIndex := int64(math.MaxInt64)
	if lengths.DType() == dtypes.Int32 {
		maxIndex = math.MaxInt32
	}
	if int64(c.indexing.axisSize) > maxIndex {
		return nil, errors.Errorf("values axis %d has %d elements, more than what lengths of dtype %s can index",
			axis, c.indexing.axisSize, lengths.DType())
	}

	if !c.opts.unsafe {
		if err := c.checkLengthSums(); err != nil {
			return nil, err
		}
	}
	c.offsets = e.buildOffsets(lengths)
	return c, nil
}

// checkLengthSums verifies that lengths are non-negative and that each row sums to the extent of the reduced axis.
func (c *segmentCall) checkLengthSums() error {
	if c.lengths.DType() == dtypes.Int32 {
		return checkLengthSums(c, tensors.Flat[int32](c.lengths))
	}
	return checkLengthSums(c, tensors.Flat[int64](c.lengths))
}

func checkLengthSums[L Index](c *segmentCall, lengths []L) error {
	numSegments, axisSize := c.indexing.numSegments, int64(c.indexing.axisSize)
	numRows := 1
	if numSegments > 0 {
		numRows = len(lengths) / numSegments
	}
	for row := range numRows {
		var sum int64
		for segment, length := range lengths[row*numSegments : (row+1)*numSegments] {
			if length < 0 {
				return errors.Wrapf(ErrNegativeLength, "lengths[%d] of row %d is %d", segment, row, length)
			}
			if int64(length) > axisSize-sum {
				return errors.Errorf("lengths of row %d sum to more than the %d elements of values axis %d",
					row, axisSize, c.axis)
			}
			sum += int64(length)
		}
		if sum != axisSize {
			return errors.Errorf("lengths of row %d sum to %d, but values axis %d has %d elements",
				row, sum, c.axis, axisSize)
		}
	}
	return nil
}

// segmentBounds returns the range [begin, end) of a segment along the reduced axis.
//
// If the segment has a negative length or falls out of the axis, the call is aborted and ok is false.
func segmentBounds[L Index](c *segmentCall, lengths, offsets []L, outer, segment int) (begin, end int, ok bool) {
	ix := &c.indexing
	length := int(lengths[ix.lengthIndex(outer, segment)])
	if length < 0 {
		c.latch.abort(errors.Wrapf(ErrNegativeLength, "segment %d of outer position %d has length %d", segment, outer, length))
		return 0, 0, false
	}
	offsetIdx := ix.offsetIndex(outer, segment)
	begin, end = int(offsets[offsetIdx]), int(offsets[offsetIdx+1])
	if begin < 0 || end > ix.axisSize || end-begin != length {
		c.latch.abort(errors.Wrapf(ErrSegmentOutOfBounds, "segment %d of outer position %d spans [%d, %d), values axis has %d elements",
			segment, outer, begin, end, ix.axisSize))
		return 0, 0, false
	}
	return begin, end, true
}
