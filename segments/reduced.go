// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"github.com/gomlx/segreduce/types/tensors"
)

// Reduced is the immutable result of a forward reduction, holding what is needed to compute its gradient.
type Reduced struct {
	engine                  *Engine
	values, lengths, output *tensors.Tensor
	axis                    int
	reduction               Reduction
	opts                    []Option
}

// Reduce runs Forward using the Default engine, and returns a snapshot that can compute the gradient.
// See Engine.Reduce.
func Reduce(values, lengths *tensors.Tensor, axis int, reduction Reduction, opts ...Option) (*Reduced, error) {
	return Default().Reduce(values, lengths, axis, reduction, opts...)
}

// Reduce runs Forward and returns a snapshot of its inputs and output, so the gradient can be computed later with
// Reduced.Gradient, even if the caller changes its values or lengths.
func (e *Engine) Reduce(values, lengths *tensors.Tensor, axis int, reduction Reduction, opts ...Option) (*Reduced, error) {
	output, err := e.Forward(values, lengths, axis, reduction, opts...)
	if err != nil {
		return nil, err
	}
	return &Reduced{
		engine:    e,
		values:    values.LocalClone(),
		lengths:   lengths.LocalClone(),
		output:    output,
		axis:      axis,
		reduction: reduction,
		opts:      append([]Option(nil), opts...),
	}, nil
}

// Output returns a copy of the result of the reduction.
func (r *Reduced) Output() *tensors.Tensor {
	return r.output.LocalClone()
}

// Reduction used.
func (r *Reduced) Reduction() Reduction {
	return r.reduction
}

// Gradient returns the gradient with respect to the values, given the gradient with respect to the output.
func (r *Reduced) Gradient(gradOutput *tensors.Tensor) (*tensors.Tensor, error) {
	return r.engine.Backward(gradOutput, r.output, r.values, r.lengths, r.reduction, r.axis, r.opts...)
}
