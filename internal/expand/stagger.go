package expand

import (
	"strconv"

	"github.com/monerosim/monerosim/internal/randstream"
	"github.com/monerosim/monerosim/pkg/scenario"
)

// batchSizes yields the doubling-capped-at-200 batch size sequence:
// 5, 10, 20, 40, 80, 160, 200, 200, … (spec.md §4.1).
func batchSizes() func() int {
	size := 5
	return func() int {
		cur := size
		size *= 2
		if size > 200 {
			size = 200
		}
		return cur
	}
}

// batchedOffsets produces `count` offsets from base: batch k (size per
// batchSizes()) starts at k*20min, with 5s spacing within the batch.
func batchedOffsets(count int) []float64 {
	offsets := make([]float64, 0, count)
	next := batchSizes()
	batchStart := 0.0
	produced := 0
	for produced < count {
		size := next()
		if produced+size > count {
			size = count - produced
		}
		for j := 0; j < size; j++ {
			offsets = append(offsets, batchStart+float64(j)*5)
		}
		produced += size
		batchStart += 20 * 60
	}
	return offsets
}

// linearOffsets produces an arithmetic progression 0, Δ, 2Δ, ….
func linearOffsets(count int, delta float64) []float64 {
	offsets := make([]float64, count)
	for i := range offsets {
		offsets[i] = float64(i) * delta
	}
	return offsets
}

// ApplyStagger expands a StaggerSpec into `count` absolute times from
// `base`, per spec.md §4.1. scenarioSeed and streamName feed the
// deterministic per-agent stream for StaggerRandomRange.
func ApplyStagger(spec scenario.StaggerSpec, base float64, count int, scenarioSeed int64, streamName string) []float64 {
	switch spec.Kind {
	case scenario.StaggerAuto:
		if count >= 50 {
			return addBase(batchedOffsets(count), base)
		}
		return addBase(linearOffsets(count, 5), base)
	case scenario.StaggerBatched:
		return addBase(batchedOffsets(count), base)
	case scenario.StaggerRandomRange:
		out := make([]float64, count)
		for i := 0; i < count; i++ {
			s := randstream.New(scenarioSeed, streamName, indexID(i))
			out[i] = base + s.UniformOffset(spec.Lo, spec.Hi)
		}
		return out
	case scenario.StaggerLinear:
		fallthrough
	default:
		return addBase(linearOffsets(count, spec.Delta), base)
	}
}

func addBase(offsets []float64, base float64) []float64 {
	out := make([]float64, len(offsets))
	for i, o := range offsets {
		out[i] = base + o
	}
	return out
}

func indexID(i int) string {
	return "idx:" + strconv.Itoa(i)
}
