// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"math"

	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// combinator holds the associative binary operation of a reduction and its identity.
// It is shared by the general and the fast path strategies.
type combinator[C constraints.Float] struct {
	reduction Reduction
	identity  C
	combine   func(acc, x C) C
}

func newCombinator[C constraints.Float](reduction Reduction) combinator[C] {
	switch reduction {
	case ReductionMax:
		return combinator[C]{reduction: reduction, identity: C(math.Inf(-1)), combine: maxPropagateNaN[C]}
	case ReductionMin:
		return combinator[C]{reduction: reduction, identity: C(math.Inf(1)), combine: minPropagateNaN[C]}
	case ReductionSum, ReductionMean:
		return combinator[C]{reduction: reduction, identity: 0, combine: func(acc, x C) C { return acc + x }}
	case ReductionProd:
		return combinator[C]{reduction: reduction, identity: 1, combine: func(acc, x C) C { return acc * x }}
	}
	exceptions.Panicf("segments: unknown reduction %s", reduction)
	return combinator[C]{}
}

// seed returns the starting value of each segment's accumulator.
func (c combinator[C]) seed(opts *callOptions) C {
	if opts.hasInitial {
		return C(opts.initial)
	}
	return c.identity
}

// finalize converts the accumulated value of a segment with the given length into its result.
// Only ReductionMean changes the accumulated value.
func (c combinator[C]) finalize(acc C, length int, opts *callOptions) C {
	if c.reduction != ReductionMean {
		return acc
	}
	if length == 0 {
		if opts.hasInitial {
			return C(opts.initial)
		}
		return C(math.NaN())
	}
	if isNaN(acc) {
		return acc
	}
	return acc / C(length)
}

func isNaN[C constraints.Float](v C) bool {
	return v != v
}

// maxPropagateNaN returns the max, or NaN if any of the operands is NaN.
func maxPropagateNaN[C constraints.Float](a, b C) C {
	if isNaN(a) || a > b {
		return a
	}
	return b
}

// minPropagateNaN returns the min, or NaN if any of the operands is NaN.
func minPropagateNaN[C constraints.Float](a, b C) C {
	if isNaN(a) || a < b {
		return a
	}
	return b
}
