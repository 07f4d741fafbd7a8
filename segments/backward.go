// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/segreduce/types/tensors"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// Backward computes the gradient of Forward with respect to values, using the Default engine. See Engine.Backward.
func Backward(gradOutput, output, values, lengths *tensors.Tensor, reduction Reduction, axis int, opts ...Option) (*tensors.Tensor, error) {
	return Default().Backward(gradOutput, output, values, lengths, reduction, axis, opts...)
}

// MustBackward is like Backward, but panics on error.
func MustBackward(gradOutput, output, values, lengths *tensors.Tensor, reduction Reduction, axis int, opts ...Option) *tensors.Tensor {
	gradInput, err := Backward(gradOutput, output, values, lengths, reduction, axis, opts...)
	if err != nil {
		panic(err)
	}
	return gradInput
}

// Backward computes the gradient with respect to values of a Forward call, given the gradient with respect to its
// output (gradOutput), and the output itself.
//
// The output must be the unmodified result of Forward called with the same values, lengths, reduction, axis and
// options. The returned gradient is shaped like values, and it is zero for positions outside any segment.
//
// Per reduction:
//
//   - ReductionMax, ReductionMin: positions equal to the output, or NaN, receive the upstream gradient. If there
//     are two or more such positions, the positive gradients are divided by their count. Non-positive gradients
//     are not divided.
//   - ReductionSum: the upstream gradient is broadcast to every position of the segment.
//   - ReductionMean: the upstream gradient divided by the segment length is broadcast.
//   - ReductionProd: upstream*output/x. Positions where x is 0 or NaN receive instead the upstream gradient
//     multiplied by the product of the other elements of the segment.
func (e *Engine) Backward(gradOutput, output, values, lengths *tensors.Tensor, reduction Reduction, axis int, opts ...Option) (gradInput *tensors.Tensor, err error) {
	err = exceptions.TryCatch[error](func() {
		gradInput, err = e.backward(gradOutput, output, values, lengths, reduction, axis, opts)
		if err != nil {
			panic(err)
		}
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "segments.Backward(%s)", reduction)
	}
	return gradInput, nil
}

func (e *Engine) backward(gradOutput, output, values, lengths *tensors.Tensor, reduction Reduction, axis int, opts []Option) (*tensors.Tensor, error) {
	c, err := e.newSegmentCall(values, lengths, axis, reduction, opts)
	if err != nil {
		return nil, err
	}
	for _, named := range []struct {
		name   string
		tensor *tensors.Tensor
	}{{"gradOutput", gradOutput}, {"output", output}} {
		if named.tensor == nil || !named.tensor.Ok() {
			return nil, errors.Errorf("%s tensor is nil or invalid", named.name)
		}
		if !named.tensor.Shape().Equal(c.outputShape) {
			return nil, errors.Errorf("%s shaped %s, but %d segments of values shaped %s along axis %d require shape %s",
				named.name, named.tensor.Shape(), c.indexing.numSegments, values.Shape(), c.axis, c.outputShape)
		}
		if !named.tensor.IsContiguous() {
			return nil, errors.Errorf("%s must be contiguous, call Tensor.Contiguous() first", named.name)
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("segments.Backward(%s): values=%s, lengths=%s, axis=%d, %s",
			reduction, values.Shape(), lengths.Shape(), c.axis, &c.indexing)
	}
	c.output = output
	c.gradOutput = gradOutput
	c.gradInput = tensors.FromShape(values.Shape())
	backwardDispatcher.Dispatch(values.DType(), lengths.DType(), c)
	if err := c.latch.err(); err != nil {
		return nil, err
	}
	return c.gradInput, nil
}

// execBackward runs one work unit per output cell: each writes the gradient of the positions of its segment.
func execBackward[T Float, C constraints.Float, L Index](c *segmentCall, num numeric[T, C]) {
	values := tensors.Flat[T](c.values)
	lengths := tensors.Flat[L](c.lengths)
	offsets := tensors.Flat[L](c.offsets)
	output := tensors.Flat[T](c.output)
	gradOutput := tensors.Flat[T](c.gradOutput)
	gradInput := tensors.Flat[T](c.gradInput)
	prodSeed := C(1)
	if c.opts.hasInitial {
		prodSeed = C(c.opts.initial)
	}
	ix := &c.indexing

	c.engine.workers.ParallelFor(ix.numUnits(), c.engine.config.MinChunk, func(start, end int) {
		for flat := start; flat < end; flat++ {
			if c.latch.isAborted() {
				return
			}
			outer, segment, lane := ix.decompose(flat)
			begin, finish, ok := segmentBounds(c, lengths, offsets, outer, segment)
			if !ok {
				return
			}
			length := finish - begin
			if length == 0 {
				continue
			}
			switch c.reduction {
			case ReductionMax, ReductionMin:
				out := num.load(output[flat])
				numActive := 0
				for pos := begin; pos < finish; pos++ {
					idx := ix.valueIndex(outer, pos, lane)
					x := num.load(values[idx])
					if x == out || isNaN(x) {
						gradInput[idx] = gradOutput[flat]
						numActive++
					}
				}
				if numActive >= 2 {
					// Ties share the gradient, but only positive gradients are divided.
					divisor := C(numActive)
					for pos := begin; pos < finish; pos++ {
						idx := ix.valueIndex(outer, pos, lane)
						if g := num.load(gradInput[idx]); g > 0 {
							gradInput[idx] = num.store(g / divisor)
						}
					}
				}

			case ReductionSum:
				for pos := begin; pos < finish; pos++ {
					gradInput[ix.valueIndex(outer, pos, lane)] = gradOutput[flat]
				}

			case ReductionMean:
				g := num.store(num.load(gradOutput[flat]) / C(length))
				for pos := begin; pos < finish; pos++ {
					gradInput[ix.valueIndex(outer, pos, lane)] = g
				}

			case ReductionProd:
				g := num.load(gradOutput[flat])
				out := num.load(output[flat])
				for pos := begin; pos < finish; pos++ {
					idx := ix.valueIndex(outer, pos, lane)
					x := num.load(values[idx])
					if x != 0 && !isNaN(x) {
						gradInput[idx] = num.store(g * out / x)
						continue
					}
					exclusive := prodSeed
					for other := begin; other < finish; other++ {
						if other != pos {
							exclusive *= num.load(values[ix.valueIndex(outer, other, lane)])
						}
					}
					gradInput[idx] = num.store(g * exclusive)
				}
			}
		}
	})
}
