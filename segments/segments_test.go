// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"math"
	"testing"

	"github.com/gomlx/segreduce/types/tensors"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfigs cover sequential execution, parallel execution with tiny chunks, and the general strategy for 1-D inputs.
var testConfigs = []string{
	"parallelism=0",
	"parallelism=4,minchunk=1",
	"parallelism=4,minchunk=1,nofastpath",
}

func forEachEngine(t *testing.T, testFn func(t *testing.T, e *Engine)) {
	for _, config := range testConfigs {
		t.Run(config, func(t *testing.T) {
			testFn(t, must.M1(New(config)))
		})
	}
}

// assertValues compares the tensor values with want, where NaNs must match NaNs and infinities must match exactly.
func assertValues(t *testing.T, want []float64, got *tensors.Tensor, delta float64) {
	t.Helper()
	require.NotNil(t, got)
	gotValues := got.Float64s()
	require.Len(t, gotValues, len(want), "got %s", got)
	for ii, w := range want {
		g := gotValues[ii]
		switch {
		case math.IsNaN(w):
			assert.Truef(t, math.IsNaN(g), "element #%d: want NaN, got %g", ii, g)
		case math.IsInf(w, 0):
			assert.Equalf(t, w, g, "element #%d", ii)
		default:
			assert.InDeltaf(t, w, g, delta, "element #%d: want %g, got %g", ii, w, g)
		}
	}
}

var nan = math.NaN()

func TestReduction(t *testing.T) {
	r, err := ReductionString("mean")
	require.NoError(t, err)
	assert.Equal(t, ReductionMean, r)
	r, err = ReductionString("Prod")
	require.NoError(t, err)
	assert.Equal(t, ReductionProd, r)
	_, err = ReductionString("median")
	require.Error(t, err)

	assert.Equal(t, "Max", ReductionMax.String())
	assert.True(t, ReductionMin.IsValid())
	assert.False(t, ReductionUndefined.IsValid())
	assert.False(t, Reduction(17).IsValid())
	assert.Len(t, ReductionValues(), 6)
}
