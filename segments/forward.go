// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/segreduce/types/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Strategy used to execute a forward reduction.
type Strategy int

const (
	// StrategyGeneral uses one work unit per output cell, each folding its segment sequentially.
	StrategyGeneral Strategy = iota

	// StrategyFastPath is used for 1-D values with 1-D lengths: a tree reduction per segment,
	// followed by a finishing pass.
	StrategyFastPath
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case StrategyGeneral:
		return "General"
	case StrategyFastPath:
		return "FastPath"
	}
	return "Strategy(?)"
}

// Strategy returns the strategy Forward would use for the given values and lengths.
func (e *Engine) Strategy(values, lengths *tensors.Tensor) Strategy {
	if e.config.FastPath && values != nil && lengths != nil && values.Rank() == 1 && lengths.Rank() == 1 {
		return StrategyFastPath
	}
	return StrategyGeneral
}

// Forward reduces each segment of values along the axis, using the Default engine. See Engine.Forward.
func Forward(values, lengths *tensors.Tensor, axis int, reduction Reduction, opts ...Option) (*tensors.Tensor, error) {
	return Default().Forward(values, lengths, axis, reduction, opts...)
}

// MustForward is like Forward, but panics on error.
func MustForward(values, lengths *tensors.Tensor, axis int, reduction Reduction, opts ...Option) *tensors.Tensor {
	output, err := Forward(values, lengths, axis, reduction, opts...)
	if err != nil {
		panic(err)
	}
	return output
}

// Forward reduces each segment of values along the axis.
//
// The axis of values (negative values are counted from the end) is split into segments with the given lengths,
// taken from the last axis of lengths. The output has the same shape as values, except the axis has
// one entry per segment.
//
// Lengths must be non-negative and sum to the extent of the axis (on each outer position, if lengths are batched),
// unless WithUnsafe is given. Precondition violations are returned before any work starts. A negative length found
// during the reduction aborts the call with an error wrapping ErrNegativeLength.
func (e *Engine) Forward(values, lengths *tensors.Tensor, axis int, reduction Reduction, opts ...Option) (output *tensors.Tensor, err error) {
	err = exceptions.TryCatch[error](func() {
		output, err = e.forward(values, lengths, axis, reduction, opts)
		if err != nil {
			panic(err)
		}
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "segments.Forward(%s)", reduction)
	}
	return output, nil
}

func (e *Engine) forward(values, lengths *tensors.Tensor, axis int, reduction Reduction, opts []Option) (*tensors.Tensor, error) {
	c, err := e.newSegmentCall(values, lengths, axis, reduction, opts)
	if err != nil {
		return nil, err
	}
	strategy := e.Strategy(values, lengths)
	if klog.V(2).Enabled() {
		klog.Infof("segments.Forward(%s): values=%s, lengths=%s, axis=%d, %s, strategy=%s",
			reduction, values.Shape(), lengths.Shape(), c.axis, &c.indexing, strategy)
	}
	c.output = tensors.FromShape(c.outputShape)
	if strategy == StrategyFastPath {
		forwardFastPathDispatcher.Dispatch(values.DType(), lengths.DType(), c)
	} else {
		forwardGeneralDispatcher.Dispatch(values.DType(), lengths.DType(), c)
	}
	if err := c.latch.err(); err != nil {
		return nil, err
	}
	return c.output, nil
}
