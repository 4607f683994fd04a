// Package safety holds the hard parameter limits applied to every
// synthesized layer.
//
// All clamps are total: NaN clamps to the lower bound and infinities
// clamp to the nearest bound, so an adapted value is always usable.
package safety

import "math"

// Range is a closed interval [Min, Max].
type Range struct {
	Min, Max float64
}

// Limits enforced by the adaptation layer and the modulators.
var (
	// Carrier is the audible carrier band in Hz.
	Carrier = Range{Min: 60, Max: 800}
	// Beat is the binaural or isochronic beat band in Hz.
	Beat = Range{Min: 0.5, Max: 100}
	// PhaseDuration bounds an adapted phase duration in seconds.
	PhaseDuration = Range{Min: 30, Max: 3600}
	// Volume bounds an adapted layer level.
	Volume = Range{Min: 0, Max: 0.95}
	// FMDepth bounds frequency modulation depth in Hz.
	FMDepth = Range{Min: 0, Max: 50}
	// FMRate bounds frequency modulation rate in Hz.
	FMRate = Range{Min: 0.01, Max: 20}
	// PanRate bounds the bilateral panning rate in Hz.
	PanRate = Range{Min: 0.1, Max: 50}
	// PanDepth bounds the bilateral panning depth.
	PanDepth = Range{Min: 0, Max: 1}
	// DutyCycle bounds the isochronic duty cycle.
	DutyCycle = Range{Min: 0.1, Max: 0.9}
	// NoiseCoherence bounds the pink-noise coherence factor.
	NoiseCoherence = Range{Min: 0, Max: 0.5}
	// CoherenceThreshold bounds a coherence threshold.
	CoherenceThreshold = Range{Min: 0, Max: 1}
)

// Clamp limits v to r. NaN maps to r.Min.
func (r Range) Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < r.Min:
		return r.Min
	case v > r.Max:
		return r.Max
	}
	return v
}

// Contains reports whether v lies inside r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}
