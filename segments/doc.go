// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package segments implements segmented reductions and their gradients.
//
// Given a values tensor and a lengths tensor, one axis of values is partitioned into contiguous
// segments of variable length, and each segment is reduced to one value with one of the Reduction
// kinds: ReductionMax, ReductionMin, ReductionSum, ReductionMean or ReductionProd.
//
// Example:
//
//	values := tensors.FromFlatDataAndDimensions([]float32{1, 2, 3, 4, 5, 6}, 6)
//	lengths := tensors.FromFlatDataAndDimensions([]int32{3, 3}, 2)
//	reduced, err := segments.Reduce(values, lengths, 0, segments.ReductionSum)
//	// reduced.Output() -> [6, 15]
//	grad, err := reduced.Gradient(tensors.FromFlatDataAndDimensions([]float32{1, 1}, 2))
//	// grad -> [1, 1, 1, 1, 1, 1]
//
// The reduction axis of values is given by the caller. The segment axis of lengths is always its
// last axis: lengths is either a vector (shared by all positions before the values' axis) or it has
// the values' dimensions before the axis followed by the number of segments.
//
// Values can be Float32, Float64, Float16 or BFloat16. Lengths can be Int32 or Int64.
// Reduced precision values are accumulated in float32.
//
// Empty segments reduce to the initial value if one is given (see WithInitial), otherwise to the
// identity of the reduction (-Inf for max, +Inf for min, 0 for sum, 1 for prod), except for
// ReductionMean that returns NaN.
//
// Work is executed by an Engine, which owns a pool of workers. The package level functions use
// Default, configured by the environment variable SEGREDUCE_CONFIG (see ParseConfig).
package segments
