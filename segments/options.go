// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

// Option configures one Forward, Backward or Reduce call.
type Option func(opts *callOptions)

type callOptions struct {
	initial    float64
	hasInitial bool
	unsafe     bool
}

func newCallOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithInitial sets the initial value of each segment's accumulator.
//
// Empty segments reduce to the initial value. For ReductionMean the initial value is added to the
// sum before dividing by the segment length.
//
// Backward must be called with the same option used in Forward.
func WithInitial(value float64) Option {
	return func(opts *callOptions) {
		opts.initial = value
		opts.hasInitial = true
	}
}

// WithUnsafe skips the verification that the lengths of each row sum to the extent of the reduced axis.
//
// Negative lengths and segments out of bounds are still caught by the kernels, and reported as
// ErrNegativeLength or ErrSegmentOutOfBounds. Length sums smaller than the axis extent silently
// ignore the trailing values.
func WithUnsafe() Option {
	return func(opts *callOptions) {
		opts.unsafe = true
	}
}
