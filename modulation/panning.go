package modulation

import (
	"math"

	"github.com/thesyncim/entrain/safety"
)

// PanMono places a mono waveform in the stereo field and sweeps it
// between the ears at panFreq Hz. depth 0 holds the image centred.
func (m *Modulator) PanMono(mono []float64, panFreq, sampleRate, depth float64) (left, right []float64) {
	return m.PanStereo(mono, mono, panFreq, sampleRate, depth)
}

// PanStereo applies equal-power sweeping gains to an existing stereo
// pair. The output length is the shorter of the two inputs.
func (m *Modulator) PanStereo(left, right []float64, panFreq, sampleRate, depth float64) (l, r []float64) {
	n := min(len(left), len(right))
	l = make([]float64, n)
	r = make([]float64, n)
	if n == 0 {
		return l, r
	}
	rate := m.clamp("bilateral pan rate", safety.PanRate, panFreq)
	d := m.clamp("bilateral pan depth", safety.PanDepth, depth)

	w := 2 * math.Pi * rate / sampleRate
	for i := 0; i < n; i++ {
		pan := d * math.Sin(w*float64(i))
		l[i] = left[i] * math.Sqrt(0.5*(1-pan))
		r[i] = right[i] * math.Sqrt(0.5*(1+pan))
	}
	return l, r
}
