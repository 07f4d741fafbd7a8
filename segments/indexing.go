// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"fmt"

	"github.com/gomlx/segreduce/types/shapes"
)

// segmentIndexing maps work units (one per output cell) to positions in the values, lengths, offsets and
// output flat arrays.
//
// Values are seen as [outerSize, axisSize, innerSize], and the output as [outerSize, numSegments, innerSize].
// Lengths are [outerSize, numSegments], or [numSegments] if shared by all outer positions, and offsets have
// one extra entry per row.
type segmentIndexing struct {
	outerSize, axisSize, innerSize int
	numSegments                    int

	// Strides between rows of lengths and offsets: 0 if the lengths are shared by all outer positions.
	lengthsRowStride, offsetsRowStride int
}

func newSegmentIndexing(valuesShape shapes.Shape, axis int, lengthsShape shapes.Shape) segmentIndexing {
	ix := segmentIndexing{numSegments: lengthsShape.Dim(-1)}
	ix.outerSize, ix.axisSize, ix.innerSize = valuesShape.SplitAtAxis(axis)
	if lengthsShape.Rank() > 1 {
		ix.lengthsRowStride = ix.numSegments
		ix.offsetsRowStride = ix.numSegments + 1
	}
	return ix
}

// numUnits is the number of work units, equal to the size of the output.
func (ix *segmentIndexing) numUnits() int {
	return ix.outerSize * ix.numSegments * ix.innerSize
}

// decompose a flat output index into its outer, segment and lane (inner) coordinates.
func (ix *segmentIndexing) decompose(flat int) (outer, segment, lane int) {
	row := flat / ix.innerSize
	lane = flat % ix.innerSize
	outer = row / ix.numSegments
	segment = row % ix.numSegments
	return
}

func (ix *segmentIndexing) lengthIndex(outer, segment int) int {
	return outer*ix.lengthsRowStride + segment
}

func (ix *segmentIndexing) offsetIndex(outer, segment int) int {
	return outer*ix.offsetsRowStride + segment
}

// valueIndex returns the flat index into values of the given position along the reduced axis.
func (ix *segmentIndexing) valueIndex(outer, position, lane int) int {
	return (outer*ix.axisSize+position)*ix.innerSize + lane
}

func (ix *segmentIndexing) String() string {
	return fmt.Sprintf("[outer=%d, axis=%d, inner=%d] -> %d segments", ix.outerSize, ix.axisSize, ix.innerSize, ix.numSegments)
}
