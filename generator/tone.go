package generator

import (
	"math"

	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/safety"
)

// CarrierFrequency applies the safety band and the intention's shift and
// warmth to freq, clamping before and after the adjustment.
func CarrierFrequency(freq float64, in intent.Intention) float64 {
	p := in.Profile()
	f := safety.Carrier.Clamp(freq)
	f = (f + p.CarrierShift) * p.WarmthFactor
	return safety.Carrier.Clamp(f)
}

// CarrierWave returns int(duration·sampleRate) samples of a unit sine at
// the intention-adjusted carrier frequency, starting at phase radians.
func (g *Generator) CarrierWave(freq, duration, sampleRate float64, in intent.Intention, phase float64) ([]float64, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, ErrInvalidDuration
	}
	if !(sampleRate > 0) {
		return nil, ErrInvalidSampleRate
	}
	if !safety.Carrier.Contains(freq) {
		g.logger.Warn("carrier clamped",
			"kind", "parameter_out_of_range", "requested", freq, "range_min", safety.Carrier.Min, "range_max", safety.Carrier.Max)
	}
	return Tone(CarrierFrequency(freq, in), sampleRate, int(duration*sampleRate), phase), nil
}

// Tone returns n samples of a unit sine at freq Hz starting at phase
// radians. No limits are applied to freq.
func Tone(freq, sampleRate float64, n int, phase float64) []float64 {
	out := make([]float64, max(n, 0))
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = math.Sin(w*float64(i) + phase)
	}
	return out
}

// AccumulatePhase integrates per-sample instantaneous frequencies (Hz)
// into phase (radians), starting at phase0. Sample i carries the phase
// reached before frequency i is applied.
func AccumulatePhase(freqs []float64, sampleRate, phase0 float64) []float64 {
	out := make([]float64, len(freqs))
	acc := phase0
	step := 2 * math.Pi / sampleRate
	for i, f := range freqs {
		out[i] = acc
		acc += f * step
	}
	return out
}
