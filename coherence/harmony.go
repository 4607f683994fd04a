package coherence

import (
	"fmt"
	"math"
	"slices"

	"github.com/thesyncim/entrain/intent"
)

const (
	gcdTolerance      = 0.1
	minFundamental    = 0.5
	multipleSlack     = 0.1
	ratioTolerance    = 0.05
	harmonyQuorum     = 0.5
	harmonicQuorum    = 0.3
	octaveLogSlack    = 0.05
	goldenTolerance   = 0.05
	intervalTolerance = 0.05
)

// beatRatios are the simple ratios accepted between beat frequencies.
var beatRatios = []float64{1.5, 2, 2.5, 3, 4, 5}

// musicalIntervals are the just intervals recognised by HarmonicAnalysis.
var musicalIntervals = []float64{3.0 / 2, 4.0 / 3, 5.0 / 3, 5.0 / 4, 6.0 / 5}

// positiveSorted returns the distinct positive finite values of freqs in
// ascending order.
func positiveSorted(freqs []float64) []float64 {
	out := make([]float64, 0, len(freqs))
	for _, f := range freqs {
		if f > 0 && !math.IsInf(f, 0) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// gcdFloat is Euclid's algorithm with a tolerance for real-valued input.
func gcdFloat(a, b float64) float64 {
	for math.Abs(b) > gcdTolerance {
		a, b = b, math.Mod(a, b)
	}
	return math.Abs(a)
}

// IntermodulationHarmony reports whether a set of beat frequencies
// forms a harmonic family, either as near-integer multiples of a common
// fundamental of at least 0.5 Hz, or with at least half of all pairwise
// ratios close to a simple ratio. The message describes the finding.
func IntermodulationHarmony(beats []float64) (bool, string) {
	if len(beats) < 2 {
		return true, "single or no frequencies, trivially harmonic"
	}
	freqs := positiveSorted(beats)
	if len(freqs) < 2 {
		return true, "single unique frequency, trivially harmonic"
	}

	fundamental := freqs[0]
	for _, f := range freqs[1:] {
		g := gcdFloat(f, fundamental)
		if g < minFundamental {
			continue
		}
		series := true
		for _, h := range freqs {
			q := h / g
			if math.Abs(q-math.Round(q)) >= multipleSlack {
				series = false
				break
			}
		}
		if series {
			return true, fmt.Sprintf("harmonic series detected with fundamental ~%.2fHz", g)
		}
	}

	var matched, total int
	for i, lo := range freqs {
		for _, hi := range freqs[i+1:] {
			total++
			if matchesRatio(hi/lo, beatRatios, ratioTolerance) {
				matched++
			}
		}
	}
	if float64(matched) >= float64(total)*harmonyQuorum {
		return true, fmt.Sprintf("good harmonic relationships detected (%d/%d harmonic ratios)", matched, total)
	}
	return false, fmt.Sprintf("limited harmonic relationships (%d/%d harmonic ratios)", matched, total)
}

func matchesRatio(ratio float64, targets []float64, tol float64) bool {
	for _, t := range targets {
		if math.Abs(ratio-t)/t < tol {
			return true
		}
	}
	return false
}

// HarmonicAnalysis reports whether at least 30% of frequency pairs are
// related by an octave multiple, the golden ratio, or a just interval.
func HarmonicAnalysis(freqs []float64) bool {
	valid := make([]float64, 0, len(freqs))
	for _, f := range freqs {
		if f > 0 && !math.IsInf(f, 0) {
			valid = append(valid, f)
		}
	}
	if len(valid) < 2 {
		return true
	}
	slices.Sort(valid)

	var octaves, golden, intervals int
	for i, lo := range valid {
		for _, hi := range valid[i+1:] {
			ratio := hi / lo
			l := math.Log2(ratio)
			if math.Abs(l-math.Round(l)) < octaveLogSlack {
				octaves++
			}
			if math.Abs(ratio-intent.GoldenRatio)/intent.GoldenRatio < goldenTolerance {
				golden++
			}
			if matchesRatio(ratio, musicalIntervals, intervalTolerance) {
				intervals++
			}
		}
	}
	pairs := len(valid) * (len(valid) - 1) / 2
	return float64(octaves+golden+intervals)/float64(pairs) >= harmonicQuorum
}
