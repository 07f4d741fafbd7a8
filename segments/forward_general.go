// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"github.com/gomlx/segreduce/types/tensors"
	"golang.org/x/exp/constraints"
)

// execForwardGeneral runs one work unit per output cell: each folds its segment of values sequentially.
func execForwardGeneral[T Float, C constraints.Float, L Index](c *segmentCall, num numeric[T, C]) {
	values := tensors.Flat[T](c.values)
	lengths := tensors.Flat[L](c.lengths)
	offsets := tensors.Flat[L](c.offsets)
	output := tensors.Flat[T](c.output)
	comb := newCombinator[C](c.reduction)
	seed := comb.seed(&c.opts)
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
			acc := seed
			for pos := begin; pos < finish; pos++ {
				acc = comb.combine(acc, num.load(values[ix.valueIndex(outer, pos, lane)]))
			}
			output[flat] = num.store(comb.finalize(acc, finish-begin, &c.opts))
		}
	})
}
