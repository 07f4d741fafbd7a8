// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package segprim implements a generic segmented-reduce primitive: given a binary associative
// operator, an initial value and segment boundaries, it produces one reduced value per segment.
//
// It knows nothing about the reduction being computed: NaN policies, means and empty-segment rules
// are the caller's business, expressed through the operator and the initial value.
//
// Within a segment elements are combined pairwise (a reduction tree), so the order of combination
// differs from a left-to-right fold. Operators must be associative.
package segprim

import (
	"sync"

	"github.com/gomlx/segreduce/internal/workerspool"
	"github.com/pkg/errors"
)

// Index is the constraint for the offsets type.
type Index interface {
	int32 | int64
}

// LeafSize is the number of elements folded sequentially at the leaves of the reduction tree.
const LeafSize = 16

// MinSegmentsPerChunk is the minimum number of segments handled by one worker.
const MinSegmentsPerChunk = 64

// ErrInvalidOffsets is returned (wrapped) when a segment has end < start or goes beyond the input.
var ErrInvalidOffsets = errors.New("invalid segment offsets")

// Reduce computes, for each segment i delimited by offsets[i] and offsets[i+1]:
//
//	output[i] = op(initial, load(input[offsets[i]]) ⊕ ... ⊕ load(input[offsets[i+1]-1]))
//
// where ⊕ is op applied in a tree order. Empty segments get initial.
//
// len(output) is the number of segments and len(offsets) must be len(output)+1.
// load converts an input element to the accumulator type.
//
// Segments with invalid boundaries are left with initial, and the first one found is reported in the
// returned error, wrapping ErrInvalidOffsets. Other segments are still reduced.
func Reduce[In any, Acc any, I Index](pool *workerspool.Pool, input []In, offsets []I, output []Acc,
	load func(In) Acc, op func(a, b Acc) Acc, initial Acc) error {
	numSegments := len(output)
	if len(offsets) != numSegments+1 {
		return errors.Errorf("segprim.Reduce: got %d offsets for %d segments, wanted %d", len(offsets), numSegments, numSegments+1)
	}
	var (
		mu              sync.Mutex
		firstErr        error
		firstErrSegment = numSegments
	)
	pool.ParallelFor(numSegments, MinSegmentsPerChunk, func(start, end int) {
		for segment := start; segment < end; segment++ {
			begin, finish := int(offsets[segment]), int(offsets[segment+1])
			if begin < 0 || finish < begin || finish > len(input) {
				output[segment] = initial
				mu.Lock()
				if segment < firstErrSegment {
					firstErrSegment = segment
					firstErr = errors.Wrapf(ErrInvalidOffsets, "segment %d has range [%d, %d) for an input of %d elements",
						segment, begin, finish, len(input))
				}
				mu.Unlock()
				continue
			}
			if begin == finish {
				output[segment] = initial
				continue
			}
			output[segment] = op(initial, treeReduce(input[begin:finish], load, op))
		}
	})
	return firstErr
}

// treeReduce reduces a non-empty slice, splitting it in halves until LeafSize.
func treeReduce[In any, Acc any](input []In, load func(In) Acc, op func(a, b Acc) Acc) Acc {
	if len(input) <= LeafSize {
		acc := load(input[0])
		for _, value := range input[1:] {
			acc = op(acc, load(value))
		}
		return acc
	}
	half := len(input) / 2
	return op(treeReduce(input[:half], load, op), treeReduce(input[half:], load, op))
}
