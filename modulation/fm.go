package modulation

import (
	"math"

	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/safety"
	"github.com/thesyncim/entrain/util"
)

// Biorhythm component rates in Hz.
const (
	breathRate = 0.25
	hrvRate    = 0.1
)

// FM adds depth·s(t) to each instantaneous frequency, where s is a sine at
// rate Hz reshaped by the intention and scaled by its warmth factor.
// Release blends a slower sine with a 2.1× partial; Focus adds a third
// harmonic. Only the first min(len(freqs), len(t)) entries are modulated.
func (m *Modulator) FM(freqs []float64, depth, rate float64, t []float64, in intent.Intention) []float64 {
	out := make([]float64, len(freqs))
	copy(out, freqs)
	if len(freqs) == 0 || len(t) == 0 {
		return out
	}
	depth = m.clamp("fm depth", safety.FMDepth, depth)
	rate = m.clamp("fm rate", safety.FMRate, rate)
	warmth := in.Profile().WarmthFactor

	n := min(len(freqs), len(t))
	for i := 0; i < n; i++ {
		r := 2 * math.Pi * rate * t[i]
		var shape float64
		switch in {
		case intent.Release:
			shape = math.Sin(0.8*r) + 0.3*math.Sin(2.1*r)
		case intent.Focus:
			shape = math.Sin(r) + 0.2*math.Sin(3*r)
		default:
			shape = math.Sin(r)
		}
		out[i] += depth * shape * warmth
	}
	return out
}

// BiorhythmFM modulates freqs with a blend of the primary rate, a 0.25 Hz
// breathing cycle and a 0.1 Hz heart-rate-variability cycle. With
// circadianSync, the primary component is lifted during the day window
// [0.25, 0.75] of timeOfDay and damped to 0.7 at night.
func (m *Modulator) BiorhythmFM(freqs []float64, depth, rate float64, t []float64, circadianSync bool, timeOfDay float64) []float64 {
	out := make([]float64, len(freqs))
	copy(out, freqs)
	if len(freqs) == 0 || len(t) == 0 {
		return out
	}
	depth = m.clamp("fm depth", safety.FMDepth, depth)
	rate = m.clamp("fm rate", safety.FMRate, rate)

	circadian := 1.0
	if circadianSync {
		tod := util.Clamp(timeOfDay, 0, 1)
		if math.IsNaN(timeOfDay) {
			tod = 0.5
		}
		if tod >= 0.25 && tod <= 0.75 {
			circadian = 1 + 0.3*math.Sin(2*math.Pi*(tod-0.25)*2)
		} else {
			circadian = 0.7
		}
	}

	n := min(len(freqs), len(t))
	for i := 0; i < n; i++ {
		primary := circadian * math.Sin(2*math.Pi*rate*t[i])
		breath := math.Sin(2 * math.Pi * breathRate * t[i])
		hrv := 0.5 * math.Sin(2*math.Pi*hrvRate*t[i])
		out[i] += depth * (primary + 0.3*breath + 0.2*hrv) / 1.5
	}
	return out
}
