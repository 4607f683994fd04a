package modulation

import (
	"math"

	"github.com/thesyncim/entrain/safety"
)

// fadeSeconds is the length of each isochronic edge ramp.
const fadeSeconds = 0.001

// Isochronic gates wave with a pulse train at pulseFreq Hz. dutyCycle is
// the fraction of each period during which the tone sounds. With
// fadeEdges, each edge becomes a 1 ms linear ramp centred on the edge.
// A non-positive pulseFreq returns an unmodified copy.
func (m *Modulator) Isochronic(wave []float64, pulseFreq, sampleRate, dutyCycle float64, fadeEdges bool) []float64 {
	out := make([]float64, len(wave))
	copy(out, wave)
	if len(wave) == 0 || !(pulseFreq > 0) || !(sampleRate > 0) {
		return out
	}
	pulse := m.clamp("isochronic pulse", safety.Beat, pulseFreq)
	duty := m.clamp("isochronic duty cycle", safety.DutyCycle, dutyCycle)

	train := make([]float64, len(wave))
	for i := range train {
		phase := math.Mod(pulse*float64(i)/sampleRate, 1)
		if phase < duty {
			train[i] = 1
		}
	}

	if fade := int(sampleRate * fadeSeconds); fadeEdges && fade > 1 {
		var edges []int
		for i := 1; i < len(train); i++ {
			if train[i] != train[i-1] {
				edges = append(edges, i)
			}
		}
		for _, e := range edges {
			start := max(e-fade/2, 0)
			end := min(e+fade/2, len(train))
			if end-start < 2 {
				continue
			}
			from, to := train[e-1], train[e]
			span := float64(end - start - 1)
			for i := start; i < end; i++ {
				train[i] = from + (to-from)*float64(i-start)/span
			}
		}
	}

	for i := range out {
		out[i] *= train[i]
	}
	return out
}
