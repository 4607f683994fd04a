package entrain

import (
	"math"

	"github.com/thesyncim/entrain/util"
)

const channels = 2

// Peak targets.
const (
	phasePeak    = 0.9
	clipGuard    = 0.98
	clipGuardOut = 0.9
)

// normalizeChannels removes each channel's DC offset and scales all
// channels by one common gain when the joint peak exceeds targetPeak.
func normalizeChannels(chs [][]float64, targetPeak float64) (peakBefore, gain float64) {
	gain = 1
	for _, ch := range chs {
		if len(ch) == 0 {
			continue
		}
		var sum float64
		for _, v := range ch {
			sum += v
		}
		mean := sum / float64(len(ch))
		for i := range ch {
			ch[i] -= mean
		}
		peakBefore = max(peakBefore, util.Peak(ch))
	}
	if peakBefore == 0 || peakBefore <= targetPeak {
		return peakBefore, gain
	}
	gain = targetPeak / peakBefore
	for _, ch := range chs {
		for i := range ch {
			ch[i] *= gain
		}
	}
	return peakBefore, gain
}

// normalizeInterleaved is normalizeChannels for an interleaved buffer.
func normalizeInterleaved(samples []float32, nch int, targetPeak float32) (peakBefore, gain float32) {
	gain = 1
	frames := len(samples) / nch
	if frames == 0 || targetPeak <= 0 {
		return 0, gain
	}
	for c := 0; c < nch; c++ {
		var sum float64
		for i := c; i < len(samples); i += nch {
			sum += float64(samples[i])
		}
		mean := float32(sum / float64(frames))
		for i := c; i < len(samples); i += nch {
			samples[i] -= mean
		}
	}
	peakBefore = util.Peak(samples)
	if peakBefore == 0 || peakBefore <= targetPeak {
		return peakBefore, gain
	}
	gain = targetPeak / peakBefore
	scale(samples, gain)
	return peakBefore, gain
}

func scale(samples []float32, gain float32) {
	for i := range samples {
		samples[i] *= gain
	}
}

// sanitize replaces NaN and Inf samples with zero and returns how many
// were replaced.
func sanitize(samples []float32) int {
	if util.Finite(samples) {
		return 0
	}
	n := 0
	for i, v := range samples {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			samples[i] = 0
			n++
		}
	}
	return n
}

// interleave packs left and right into one stereo buffer.
func interleave(left, right []float64) []float32 {
	n := min(len(left), len(right))
	out := make([]float32, n*channels)
	for i := 0; i < n; i++ {
		out[2*i] = float32(left[i])
		out[2*i+1] = float32(right[i])
	}
	return out
}

// deinterleave splits the first frames frames of a stereo buffer.
func deinterleave(samples []float32, frames int) (left, right []float64) {
	frames = min(frames, len(samples)/channels)
	left = make([]float64, frames)
	right = make([]float64, frames)
	for i := range left {
		left[i] = float64(samples[2*i])
		right[i] = float64(samples[2*i+1])
	}
	return left, right
}

// mixMono adds gain·mono to both channels of dst, frame by frame, for as
// many frames as both hold.
func mixMono(dst []float32, mono []float64, gain float64) {
	n := min(len(dst)/channels, len(mono))
	for i := 0; i < n; i++ {
		v := float32(mono[i] * gain)
		dst[2*i] += v
		dst[2*i+1] += v
	}
}

// downmix replaces both channels with their mean.
func downmix(left, right []float64) {
	for i := range left {
		m := (left[i] + right[i]) / 2
		left[i], right[i] = m, m
	}
}
