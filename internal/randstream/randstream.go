// Package randstream derives deterministic, named random sub-streams from
// a scenario seed so that two runs of the same scenario with the same seed
// produce byte-identical artifacts (spec.md §5, §9).
//
// Every stochastic choice in the pipeline — stagger jitter, bandwidth
// sampling, random-range staggers, activity-batch dithering — draws from
// a stream keyed by (scenario_seed, stream_name, agent_id?). The stream
// name and any agent id are hashed into a 64-bit seed for gonum's MT19937
// generator, following the wrapping pattern used throughout the pack for
// giving a PRNG a named, swappable identity rather than reaching for
// math/rand's global source directly.
package randstream

import (
	"math/rand"

	"gonum.org/v1/gonum/mathext/prng"

	"github.com/monerosim/monerosim/internal/contenthash"
)

// mt19937Source adapts gonum's MT19937 to math/rand.Source64.
type mt19937Source struct {
	mt *prng.MT19937
}

func newMT19937Source(seed uint64) *mt19937Source {
	mt := prng.NewMT19937()
	mt.Seed(seed)
	return &mt19937Source{mt: mt}
}

func (s *mt19937Source) Seed(seed int64)  { s.mt.Seed(uint64(seed)) }
func (s *mt19937Source) Int63() int64     { return int64(s.mt.Uint64() >> 1) }
func (s *mt19937Source) Uint64() uint64   { return s.mt.Uint64() }

// Stream is a named, deterministic random source.
type Stream struct {
	*rand.Rand
	Name string
}

// New derives a deterministic stream from a scenario seed, a stream name,
// and an optional agent id (pass "" when the stream is not per-agent).
// The same three inputs always produce the same stream.
func New(scenarioSeed int64, streamName string, agentID string) *Stream {
	key := contenthash.StreamSeed(scenarioSeed, streamName, agentID)
	return &Stream{
		Rand: rand.New(newMT19937Source(key)),
		Name: streamName,
	}
}

// UniformOffset draws a uniform float64 in [lo, hi).
func (s *Stream) UniformOffset(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.Float64()*(hi-lo)
}

// JitterFraction draws a uniform offset in [-frac, +frac] of base.
func (s *Stream) JitterFraction(base float64, frac float64) float64 {
	return base + s.UniformOffset(-frac*base, frac*base)
}

// TruncatedNormal draws from a normal distribution with the given mean and
// stddev, resampling if the result falls outside [min, max] (truncated
// normal, as required for GML bandwidth sampling in spec.md §6).
func (s *Stream) TruncatedNormal(mean, stddev, min, max float64) float64 {
	for i := 0; i < 64; i++ {
		v := s.NormFloat64()*stddev + mean
		if v >= min && v <= max {
			return v
		}
	}
	// Fall back to a clamp if resampling didn't converge (degenerate bounds).
	v := s.NormFloat64()*stddev + mean
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
