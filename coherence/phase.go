package coherence

import (
	"math"
	"math/cmplx"

	"github.com/thesyncim/entrain/internal/spectrum"
)

// PhaseRelationship returns the mean, over all signal pairs, of the mean
// resultant length of the pair's instantaneous phase difference. 1 means
// a perfectly locked phase relationship, 0 an unrelated one. Fewer than
// two signals score 1.
func (a *Analyzer) PhaseRelationship(signals [][]float64) float64 {
	trimmed, ok := a.trim(signals)
	if !ok {
		return 1
	}
	phases := make([][]float64, len(trimmed))
	for i, s := range trimmed {
		an := spectrum.Analytic(s)
		ph := make([]float64, len(an))
		for k, v := range an {
			ph[k] = cmplx.Phase(v)
		}
		phases[i] = ph
	}

	var total float64
	var pairs int
	for i := 0; i < len(phases); i++ {
		for j := i + 1; j < len(phases); j++ {
			var sc, ss float64
			for k := range phases[i] {
				d := wrap(phases[i][k] - phases[j][k])
				sc += math.Cos(d)
				ss += math.Sin(d)
			}
			n := float64(len(phases[i]))
			total += math.Hypot(sc/n, ss/n)
			pairs++
		}
	}
	score := total / float64(pairs)
	a.logger.Debug("phase relationship", "score", score)
	return score
}

// wrap maps an angle to [-π, π).
func wrap(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}
