// Package coherence measures how well a set of signals hang together and
// nudges them toward alignment when they do not.
//
// The coherence score of a signal set is the mean absolute Pearson
// correlation over all pairs, averaged with the mean magnitude-squared
// coherence (Welch estimate) over all pairs. Both halves lie in [0, 1].
package coherence

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"

	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/internal/spectrum"
	"github.com/thesyncim/entrain/safety"
)

const (
	welchSegment = 4096
	lagWindow    = 1 << 17
	blendFactor  = 0.1
	weakCorr     = 0.5
)

// Analyzer scores and adjusts signal coherence. An Analyzer configured
// with an intention relaxes or tightens thresholds accordingly.
type Analyzer struct {
	logger       *slog.Logger
	intention    intent.Intention
	hasIntention bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the analyzer logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithIntention makes thresholds intention-aware.
func WithIntention(in intent.Intention) Option {
	return func(a *Analyzer) {
		a.intention = in
		a.hasIntention = true
	}
}

// New returns an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{logger: slog.Default().With(slog.String("component", "coherence"))}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Threshold clamps threshold to [0, 1] and applies the intention bias:
// Release and Integrate relax it by 10%, Focus tightens it by 10%.
func (a *Analyzer) Threshold(threshold float64) float64 {
	th := safety.CoherenceThreshold.Clamp(threshold)
	if !a.hasIntention {
		return th
	}
	switch a.intention {
	case intent.Release, intent.Integrate:
		th *= 0.9
	case intent.Focus:
		th *= 1.1
	}
	return th
}

// Check reports whether the coherence score of signals reaches the
// (intention-adjusted) threshold. Fewer than two signals, or empty
// signals, are coherent.
func (a *Analyzer) Check(signals [][]float64, threshold float64) bool {
	score := a.Score(signals)
	th := a.Threshold(threshold)
	ok := score >= th
	a.logger.Debug("coherence check", "score", score, "threshold", th, "coherent", ok)
	return ok
}

// Score returns the combined coherence score of signals in [0, 1].
func (a *Analyzer) Score(signals [][]float64) float64 {
	trimmed, ok := a.trim(signals)
	if !ok {
		return 1
	}
	var corrSum, mscSum float64
	var pairs int
	for i := 0; i < len(trimmed); i++ {
		for j := i + 1; j < len(trimmed); j++ {
			corrSum += math.Abs(pearson(trimmed[i], trimmed[j]))
			mscSum += meanMSC(trimmed[i], trimmed[j])
			pairs++
		}
	}
	return (corrSum/float64(pairs) + mscSum/float64(pairs)) / 2
}

// trim cuts all signals to the shortest length. It returns false when the
// set is trivially coherent.
func (a *Analyzer) trim(signals [][]float64) ([][]float64, bool) {
	if len(signals) < 2 {
		return nil, false
	}
	n := len(signals[0])
	uneven := false
	for _, s := range signals[1:] {
		if len(s) != n {
			uneven = true
		}
		n = min(n, len(s))
	}
	if n == 0 {
		return nil, false
	}
	if uneven {
		a.logger.Warn("signal lengths differ, trimming for coherence analysis", "length", n)
	}
	out := make([][]float64, len(signals))
	for i, s := range signals {
		out[i] = s[:n]
	}
	return out, true
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// meanMSC is the bin-averaged Welch magnitude-squared coherence of x and
// y using Hann-windowed, half-overlapping segments. Bins with no energy
// in either signal are ignored.
func meanMSC(x, y []float64) float64 {
	n := len(x)
	seg := min(welchSegment, spectrum.NextPow2(n))
	if seg > n {
		seg /= 2
	}
	if seg < 2 {
		return 0
	}
	hop := seg / 2
	win := make([]float64, seg)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	bins := seg/2 + 1
	sxx := make([]float64, bins)
	syy := make([]float64, bins)
	sxy := make([]complex128, bins)
	bx := make([]float64, seg)
	by := make([]float64, seg)
	for start := 0; start+seg <= n; start += hop {
		for i := 0; i < seg; i++ {
			bx[i] = x[start+i] * win[i]
			by[i] = y[start+i] * win[i]
		}
		fx := spectrum.Forward(bx, seg)
		fy := spectrum.Forward(by, seg)
		for k := 0; k < bins; k++ {
			xr, xi := real(fx[k]), imag(fx[k])
			yr, yi := real(fy[k]), imag(fy[k])
			sxx[k] += xr*xr + xi*xi
			syy[k] += yr*yr + yi*yi
			sxy[k] += fx[k] * complex(yr, -yi)
		}
	}

	var sum float64
	var used int
	for k := 0; k < bins; k++ {
		den := sxx[k] * syy[k]
		if !(den > 0) || math.IsInf(den, 0) {
			continue
		}
		re, im := real(sxy[k]), imag(sxy[k])
		sum += math.Min((re*re+im*im)/den, 1)
		used++
	}
	if used == 0 {
		return 0
	}
	return sum / float64(used)
}
