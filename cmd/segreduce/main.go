// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// segreduce benchmarks segmented reductions on random data, and prints a summary of the timings.
//
// Example:
//
//	segreduce -dtype=float16 -reduction=max -segments=10000 -max_len=64 -iters=100 -grad
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/segreduce/segments"
	"github.com/gomlx/segreduce/types/tensors"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
	"github.com/x448/float16"
	"k8s.io/klog/v2"
)

var (
	flagDType       = flag.String("dtype", "float32", "DType of the values: float32, float64, float16 or bfloat16.")
	flagReduction   = flag.String("reduction", "sum", "Reduction to benchmark: max, min, sum, mean or prod.")
	flagNumSegments = flag.Int("segments", 10_000, "Number of segments.")
	flagMaxLen      = flag.Int("max_len", 32, "Segment lengths are sampled uniformly from [0, max_len].")
	flagOuter       = flag.Int("outer", 1, "Size of the axes before the reduced axis. "+
		"If both -outer and -inner are 1, values are 1-D.")
	flagInner  = flag.Int("inner", 1, "Size of the axes after the reduced axis.")
	flagIters  = flag.Int("iters", 20, "Number of iterations to time.")
	flagConfig = flag.String("config", "", "Engine configuration, e.g. \"parallelism=4,nofastpath\". "+
		"Defaults to the contents of $"+segments.ConfigEnvVar+".")
	flagGrad = flag.Bool("grad", false, "Also benchmark the backward (gradient) computation.")
	flagSeed = flag.Uint64("seed", 42, "Seed for the random values and lengths.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	dtype, err := dtypes.DTypeString(*flagDType)
	if err != nil {
		klog.Fatalf("Invalid -dtype=%q: %v", *flagDType, err)
	}
	reduction, err := segments.ReductionString(*flagReduction)
	if err != nil || !reduction.IsValid() {
		klog.Fatalf("Invalid -reduction=%q, valid values are %v", *flagReduction, segments.ReductionStrings()[1:])
	}
	if *flagNumSegments < 0 || *flagMaxLen < 0 || *flagOuter < 1 || *flagInner < 1 || *flagIters < 1 {
		klog.Fatalf("-segments and -max_len must be >= 0, -outer, -inner and -iters must be >= 1")
	}
	engine := segments.Default()
	if *flagConfig != "" {
		engine = must.M1(segments.New(*flagConfig))
	}

	rng := rand.New(rand.NewPCG(*flagSeed, 0))
	values, lengths := randomInputs(rng, dtype)
	strategy := engine.Strategy(values, lengths)
	axis := 0
	if values.Rank() > 1 {
		axis = 1
	}
	klog.V(1).Infof("values=%s, lengths=%s, reduction=%s, strategy=%s, %s",
		values.Shape(), lengths.Shape(), reduction, strategy, engine)

	forwardTimes := make([]time.Duration, 0, *flagIters)
	var backwardTimes []time.Duration
	var output *tensors.Tensor
	term := termenv.NewOutput(os.Stdout)
	term.HideCursor()
	bar := newProgressBar(*flagIters)
	for range *flagIters {
		start := time.Now()
		output = must.M1(engine.Forward(values, lengths, axis, reduction))
		forwardTimes = append(forwardTimes, time.Since(start))
		if *flagGrad {
			gradOutput := tensors.FromShape(output.Shape())
			start = time.Now()
			_ = must.M1(engine.Backward(gradOutput, output, values, lengths, reduction, axis))
			backwardTimes = append(backwardTimes, time.Since(start))
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	term.ShowCursor()

	fmt.Println(titleStyle.Render(fmt.Sprintf("Segmented %s", reduction)))
	table := newPlainTable(false, lipgloss.Right, lipgloss.Left)
	table.Row("engine", engine.Config().String())
	table.Row("strategy", strategy.String())
	table.Row("values", values.Shape().String())
	table.Row("lengths", lengths.Shape().String())
	table.Row("output", output.Shape().String())
	table.Row("# values", humanize.Comma(int64(values.Size())))
	table.Row("# segments", humanize.Comma(int64(output.Size())))
	table.Row("values bytes", humanize.Bytes(uint64(values.Memory())))
	addTimings(table, "forward", forwardTimes, values.Memory())
	if *flagGrad {
		addTimings(table, "backward", backwardTimes, values.Memory())
	}
	fmt.Println(table.Render())
}

// randomInputs returns values shaped [outer, axis, inner] (or [axis] if outer and inner are 1),
// and lengths shaped [segments], shared by all outer positions.
func randomInputs(rng *rand.Rand, dtype dtypes.DType) (values, lengths *tensors.Tensor) {
	lengthsData := make([]int32, *flagNumSegments)
	axisSize := 0
	for ii := range lengthsData {
		lengthsData[ii] = int32(rng.IntN(*flagMaxLen + 1))
		axisSize += int(lengthsData[ii])
	}
	lengths = tensors.FromFlatDataAndDimensions(lengthsData, len(lengthsData))

	dims := []int{axisSize}
	if *flagOuter > 1 || *flagInner > 1 {
		dims = []int{*flagOuter, axisSize, *flagInner}
	}
	size := *flagOuter * axisSize * *flagInner
	data := make([]float32, size)
	for ii := range data {
		// Values close to 1, so products don't overflow.
		data[ii] = 0.95 + 0.1*rng.Float32()
	}
	switch dtype {
	case dtypes.Float32:
		values = tensors.FromFlatDataAndDimensions(data, dims...)
	case dtypes.Float64:
		values = tensors.FromFlatDataAndDimensions(convert(data, func(v float32) float64 { return float64(v) }), dims...)
	case dtypes.Float16:
		values = tensors.FromFlatDataAndDimensions(convert(data, float16.Fromfloat32), dims...)
	case dtypes.BFloat16:
		values = tensors.FromFlatDataAndDimensions(convert(data, bfloat16.FromFloat32), dims...)
	default:
		klog.Fatalf("-dtype=%s not supported, use float32, float64, float16 or bfloat16", dtype)
	}
	return
}

func convert[T any](data []float32, fn func(float32) T) []T {
	converted := make([]T, len(data))
	for ii, v := range data {
		converted[ii] = fn(v)
	}
	return converted
}

func newProgressBar(iters int) *progressbar.ProgressBar {
	return progressbar.NewOptions(iters,
		progressbar.OptionSetDescription("Benchmarking"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("iters"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionClearOnFinish(),
	)
}

// addTimings adds the median and total durations, and the median throughput.
func addTimings(table *lgtable.Table, name string, times []time.Duration, numBytes uintptr) {
	var total time.Duration
	for _, d := range times {
		total += d
	}
	sorted := slices.Clone(times)
	slices.Sort(sorted)
	median := sorted[len(sorted)/2]
	table.Row(name+" median", median.String())
	table.Row(name+" total", total.String())
	if median > 0 {
		throughput := float64(numBytes) / median.Seconds()
		table.Row(name+" throughput", humanize.Bytes(uint64(throughput))+"/s")
	}
}
