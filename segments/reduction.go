// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

// Reduction selects how each segment is reduced to a single value.
type Reduction int

const (
	// ReductionUndefined is the zero value, and it is not a valid reduction.
	ReductionUndefined Reduction = iota

	// ReductionMax takes the maximum value of the segment. NaNs propagate.
	ReductionMax

	// ReductionMin takes the minimum value of the segment. NaNs propagate.
	ReductionMin

	// ReductionSum sums the values of the segment.
	ReductionSum

	// ReductionMean averages the values of the segment. Empty segments are NaN, unless an initial value is given.
	ReductionMean

	// ReductionProd multiplies the values of the segment.
	ReductionProd
)

//go:generate go tool enumer -type Reduction -trimprefix=Reduction -output=gen_reduction_enumer.go reduction.go

// IsValid returns whether the reduction is one of the defined reduction kinds (and not ReductionUndefined).
func (i Reduction) IsValid() bool {
	return i.IsAReduction() && i != ReductionUndefined
}
