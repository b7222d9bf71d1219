// Package trajectory records sampled ball positions and derives a smooth
// curve through them for rendering.
package trajectory

import (
	"github.com/zeusync/pitchsim/internal/core/physics"
	"github.com/zeusync/pitchsim/pkg/sequence"
)

// DefaultCapacity is the sample cap used when none is configured.
const DefaultCapacity = 1000

// Sample is one logged ball position, T seconds after release.
type Sample struct {
	T        float64      `json:"t"`
	Position physics.Vec3 `json:"position"`
}

// Sampler is a capacity-bounded, insertion-ordered log of samples.
// Once full, further samples are dropped; nothing already logged is evicted.
// It is not safe for concurrent use.
type Sampler struct {
	samples []Sample
	cap     int
}

// NewSampler creates a sampler holding at most capacity samples.
// A non-positive capacity selects DefaultCapacity.
func NewSampler(capacity int) *Sampler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sampler{
		samples: make([]Sample, 0, min(capacity, 256)),
		cap:     capacity,
	}
}

// Append logs s and reports whether it was kept.
func (s *Sampler) Append(sample Sample) bool {
	if len(s.samples) >= s.cap {
		return false
	}
	s.samples = append(s.samples, sample)
	return true
}

// Len is the number of samples logged so far.
func (s *Sampler) Len() int { return len(s.samples) }

// Cap is the most samples the log will hold.
func (s *Sampler) Cap() int { return s.cap }

// Reset empties the log, keeping its capacity.
func (s *Sampler) Reset() {
	s.samples = s.samples[:0]
}

// Samples returns a copy of the log in insertion order.
func (s *Sampler) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Positions returns a copy of the logged positions in insertion order.
func (s *Sampler) Positions() []physics.Vec3 {
	return sequence.Map(sequence.From(s.samples), func(sm Sample) physics.Vec3 {
		return sm.Position
	}).Collect()
}

// Curve builds the smoothed polyline through the whole log.
func (s *Sampler) Curve(divisions int) []physics.Vec3 {
	return Curve(s.Positions(), divisions)
}
