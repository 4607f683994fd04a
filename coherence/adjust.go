package coherence

import (
	"math"

	"github.com/thesyncim/entrain/internal/spectrum"
)

// Adjustment describes the outcome of Adjust.
type Adjustment struct {
	Before  float64
	After   float64
	Applied bool
}

// Adjust returns copies of signals moved toward coherence with the first
// signal. When the set already meets threshold the copies are unchanged.
// Otherwise each later signal of matching length is rolled by the
// cross-correlation lag against the reference (searched within a quarter
// of the analysis window) and, if still weakly correlated, blended 10%
// toward the reference.
func (a *Analyzer) Adjust(signals [][]float64, threshold float64) ([][]float64, Adjustment) {
	out := make([][]float64, len(signals))
	for i, s := range signals {
		out[i] = append([]float64(nil), s...)
	}
	if len(signals) < 2 {
		return out, Adjustment{Before: 1, After: 1}
	}

	before := a.Score(out)
	if before >= a.Threshold(threshold) {
		return out, Adjustment{Before: before, After: before}
	}

	ref := out[0]
	for i := 1; i < len(out); i++ {
		sig := out[i]
		if len(sig) != len(ref) || len(ref) < 4 {
			continue
		}
		w := min(len(ref), lagWindow)
		if lag := spectrum.Lag(ref[:w], sig[:w], w/4-1); lag != 0 {
			sig = spectrum.Roll(sig, lag)
		}
		if r := pearson(ref, sig); math.Abs(r) < weakCorr {
			for k := range sig {
				sig[k] = (1-blendFactor)*sig[k] + blendFactor*ref[k]
			}
		}
		out[i] = sig
	}

	after := a.Score(out)
	a.logger.Info("coherence adjustment", "initial", before, "final", after)
	return out, Adjustment{Before: before, After: after, Applied: true}
}
