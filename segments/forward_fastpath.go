// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"github.com/gomlx/segreduce/internal/segprim"
	"github.com/gomlx/segreduce/types/tensors"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// execForwardFastPath reduces 1-D values with 1-D lengths: a tree reduction per segment into a buffer of the compute
// type, followed by a finishing pass that checks the lengths, divides the means and stores the results.
func execForwardFastPath[T Float, C constraints.Float, L Index](c *segmentCall, num numeric[T, C]) {
	values := tensors.Flat[T](c.values)
	lengths := tensors.Flat[L](c.lengths)
	offsets := tensors.Flat[L](c.offsets)
	output := tensors.Flat[T](c.output)
	numSegments := c.indexing.numSegments

	// Means are summed first, and divided in the finishing pass.
	primitive := c.reduction
	if primitive == ReductionMean {
		primitive = ReductionSum
	}
	comb := newCombinator[C](primitive)
	accumulated := make([]C, numSegments)
	primErr := segprim.Reduce(c.engine.workers, values, offsets, accumulated, num.load, comb.combine, comb.seed(&c.opts))

	finisher := newCombinator[C](c.reduction)
	c.engine.workers.ParallelFor(numSegments, c.engine.config.MinChunk, func(start, end int) {
		for segment := start; segment < end; segment++ {
			if c.latch.isAborted() {
				return
			}
			length := int(lengths[segment])
			if length < 0 {
				c.latch.abort(errors.Wrapf(ErrNegativeLength, "segment %d has length %d", segment, length))
				return
			}
			output[segment] = num.store(finisher.finalize(accumulated[segment], length, &c.opts))
		}
	})
	if primErr != nil {
		c.latch.abort(errors.Wrapf(ErrSegmentOutOfBounds, "%v", primErr))
	}
}
