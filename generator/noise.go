package generator

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/internal/spectrum"
	"github.com/thesyncim/entrain/safety"
)

// Tolerances used when matching spectrum bins to resonant frequencies.
const (
	schumannTolerance  = 0.10
	solfeggioTolerance = 0.05
	goldenTolerance    = 0.05

	dominantLow   = 10.0
	dominantHigh  = 1000.0
	dominantCount = 3
	goldenOrder   = 3
)

// PinkNoise returns n samples of 1/f noise whose spectrum is coloured by
// the intention profile. Bins near Schumann resonances, Solfeggio tones
// and the golden-ratio ladder around the dominant low-frequency
// components are boosted, more strongly as coherence rises.
func (g *Generator) PinkNoise(n int, sampleRate float64, in intent.Intention, coherence float64) ([]float64, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if !(sampleRate > 0) {
		return nil, ErrInvalidSampleRate
	}
	if n == 0 {
		return []float64{}, nil
	}
	c := safety.NoiseCoherence.Clamp(coherence)
	if c != coherence {
		g.logger.Warn("pink noise coherence clamped",
			"kind", "parameter_out_of_range", "requested", coherence, "applied", c)
	}
	p := in.Profile()

	m := spectrum.NextPow2(n)
	coeff := spectrum.Forward(g.uniform(m), m)
	coeff[0] = 0
	for k := 1; k < len(coeff); k++ {
		f := spectrum.BinFrequency(k, m, sampleRate)
		coeff[k] *= complex(1/(math.Sqrt(f)*p.SpectralWeight), 0)
	}

	schumannGain := p.SchumannBoost * (1 + c)
	solfeggioGain := p.SolfeggioBoost * (1 + 0.7*c)
	goldenGain := p.GoldenHarmonics * (1 + 0.3*c)
	ladder := goldenLadder(dominantBins(coeff, m, sampleRate))

	// Nothing above the widest golden rung can match any table.
	limit := dominantHigh * math.Pow(intent.GoldenRatio, goldenOrder) * (1 + goldenTolerance)
	for k := 1; k < len(coeff); k++ {
		f := spectrum.BinFrequency(k, m, sampleRate)
		if f > limit {
			break
		}
		gain := 1.0
		if near(f, intent.SchumannResonances[:], schumannTolerance) {
			gain *= schumannGain
		}
		if near(f, intent.SolfeggioFrequencies[:], solfeggioTolerance) {
			gain *= solfeggioGain
		}
		if near(f, ladder, goldenTolerance) {
			gain *= goldenGain
		}
		if gain != 1 {
			coeff[k] *= complex(gain, 0)
		}
	}

	out := spectrum.Inverse(coeff, m)[:n]
	normalize(out, NoisePeak)
	return out, nil
}

// near reports whether f lies within a relative tolerance of any target.
func near(f float64, targets []float64, tol float64) bool {
	for _, t := range targets {
		if math.Abs(f-t) <= tol*t {
			return true
		}
	}
	return false
}

// dominantBins returns the frequencies of the strongest bins within the
// low-frequency band.
func dominantBins(coeff []complex128, m int, sampleRate float64) []float64 {
	type bin struct {
		freq, mag float64
	}
	var bins []bin
	for k := 1; k < len(coeff); k++ {
		f := spectrum.BinFrequency(k, m, sampleRate)
		if f < dominantLow {
			continue
		}
		if f > dominantHigh {
			break
		}
		re, im := real(coeff[k]), imag(coeff[k])
		bins = append(bins, bin{freq: f, mag: re*re + im*im})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].mag > bins[j].mag })
	out := make([]float64, 0, dominantCount)
	for i := 0; i < len(bins) && i < dominantCount; i++ {
		out = append(out, bins[i].freq)
	}
	return out
}

// goldenLadder expands each fundamental into f·φ^k for k in [-3, 3].
func goldenLadder(fundamentals []float64) []float64 {
	out := make([]float64, 0, len(fundamentals)*(2*goldenOrder+1))
	for _, f0 := range fundamentals {
		for k := -goldenOrder; k <= goldenOrder; k++ {
			out = append(out, f0*math.Pow(intent.GoldenRatio, float64(k)))
		}
	}
	return out
}

// BrownNoise returns n samples of integrated white noise. The Release
// intention applies the warmth factor as a gain before normalization.
func (g *Generator) BrownNoise(n int, in intent.Intention) ([]float64, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	out := g.brown(n, in)
	normalize(out, NoisePeak)
	return out, nil
}

func (g *Generator) brown(n int, in intent.Intention) []float64 {
	out := g.uniform(n)
	var acc float64
	for i, v := range out {
		acc += v
		out[i] = acc
	}
	if in == intent.Release {
		floats.Scale(in.Profile().WarmthFactor, out)
	}
	return out
}
