package modulation

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/entrain/intent"
)

var mod = New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

func sine(freq, sr float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}
	return out
}

func timeline(sr float64, n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / sr
	}
	return t
}

func TestIsochronicZeroPulseIsIdentity(t *testing.T) {
	wave := sine(200, 44100, 4410)
	for _, pulse := range []float64{0, -3, math.NaN()} {
		got := mod.Isochronic(wave, pulse, 44100, 0.5, true)
		assert.Equal(t, wave, got)
	}
	got := mod.Isochronic(wave, 0, 44100, 0.5, true)
	got[0] = 42
	assert.NotEqual(t, wave[0], got[0], "result must not alias input")
}

func TestIsochronicGating(t *testing.T) {
	const sr = 1000.0
	ones := make([]float64, 1000)
	for i := range ones {
		ones[i] = 1
	}
	got := mod.Isochronic(ones, 10, sr, 0.5, false)
	require.Len(t, got, len(ones))
	// 10 Hz at 1 kHz: 100-sample periods, first half open.
	assert.Equal(t, 1.0, got[10])
	assert.Equal(t, 0.0, got[60])
	assert.Equal(t, 1.0, got[110])

	var open int
	for _, v := range got {
		if v == 1 {
			open++
		}
	}
	assert.Equal(t, 500, open)
}

func TestIsochronicFadeIsBounded(t *testing.T) {
	const sr = 44100.0
	ones := make([]float64, 44100)
	for i := range ones {
		ones[i] = 1
	}
	got := mod.Isochronic(ones, 7.83, sr, 0.5, true)
	var ramps int
	for _, v := range got {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
		if v > 0 && v < 1 {
			ramps++
		}
	}
	assert.Positive(t, ramps)
}

func TestIsochronicClampsDuty(t *testing.T) {
	ones := make([]float64, 1000)
	for i := range ones {
		ones[i] = 1
	}
	a := mod.Isochronic(ones, 10, 1000, 2, false)
	b := mod.Isochronic(ones, 10, 1000, 0.9, false)
	assert.Equal(t, b, a)
}

func TestPanEqualPower(t *testing.T) {
	mono := sine(300, 44100, 44100)
	l, r := mod.PanMono(mono, 2, 44100, 1)
	require.Len(t, l, len(mono))
	require.Len(t, r, len(mono))
	for i := range mono {
		require.InDelta(t, mono[i]*mono[i], l[i]*l[i]+r[i]*r[i], 1e-12)
	}

	// At a quarter of the 2 Hz cycle the image is hard right.
	q := 44100 / 8
	assert.InDelta(t, 0, l[q], 1e-3)
}

func TestPanZeroDepthCentres(t *testing.T) {
	mono := sine(300, 44100, 1000)
	l, r := mod.PanMono(mono, 5, 44100, 0)
	assert.Equal(t, l, r)
}

func TestPanStereoUsesShorterInput(t *testing.T) {
	l, r := mod.PanStereo(make([]float64, 10), make([]float64, 7), 0, 44100, 2)
	assert.Len(t, l, 7)
	assert.Len(t, r, 7)
}

func TestFMClampsDepth(t *testing.T) {
	const sr = 1000.0
	n := 4000
	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = 200
	}
	got := mod.FM(freqs, 1000, 5, timeline(sr, n), intent.Neutral)
	var maxDev float64
	for i := range got {
		maxDev = math.Max(maxDev, math.Abs(got[i]-200))
	}
	assert.InDelta(t, 50, maxDev, 1e-6)
	assert.Equal(t, 200.0, freqs[0], "input must not be modified")
}

func TestFMIntentionShapes(t *testing.T) {
	n := 2000
	freqs := make([]float64, n)
	tl := timeline(1000, n)
	neutral := mod.FM(freqs, 10, 1, tl, intent.Neutral)
	release := mod.FM(freqs, 10, 1, tl, intent.Release)
	focus := mod.FM(freqs, 10, 1, tl, intent.Focus)
	assert.NotEqual(t, neutral, release)
	assert.NotEqual(t, neutral, focus)

	// t=0.25 s with rate 1 Hz puts the neutral sine at its crest.
	assert.InDelta(t, 10, neutral[250], 1e-9)
}

func TestFMLengthMismatch(t *testing.T) {
	freqs := []float64{100, 100, 100}
	got := mod.FM(freqs, 10, 1, []float64{0.25}, intent.Neutral)
	require.Len(t, got, 3)
	assert.InDelta(t, 110, got[0], 1e-9)
	assert.Equal(t, 100.0, got[2])
	assert.Empty(t, mod.FM(nil, 10, 1, nil, intent.Neutral))
}

func TestBiorhythmFM(t *testing.T) {
	n := 20000
	freqs := make([]float64, n)
	tl := timeline(1000, n)

	plain := mod.BiorhythmFM(freqs, 30, 2, tl, false, 0.5)
	night := mod.BiorhythmFM(freqs, 30, 2, tl, true, 0.9)
	noon := mod.BiorhythmFM(freqs, 30, 2, tl, true, 0.5)

	peak := func(x []float64) float64 {
		var p float64
		for _, v := range x {
			p = math.Max(p, math.Abs(v))
		}
		return p
	}
	assert.Less(t, peak(night), peak(plain))
	// Noon sits at the zero crossing of the circadian sine, so it matches the unsynced curve.
	for i := range plain {
		require.InDelta(t, plain[i], noon[i], 1e-9)
	}
	assert.LessOrEqual(t, peak(plain), 30.0)

	// Time of day outside [0, 1] is pinned to the nearest end of the night window.
	assert.Equal(t, night, mod.BiorhythmFM(freqs, 30, 2, tl, true, 3))
	assert.Equal(t, night, mod.BiorhythmFM(freqs, 30, 2, tl, true, -1))
}

func TestClampsReportedToLogger(t *testing.T) {
	var buf bytes.Buffer
	m := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	m.FM([]float64{200}, 1000, 5, []float64{0}, intent.Neutral)
	assert.Contains(t, buf.String(), "fm depth clamped")
	assert.Contains(t, buf.String(), "kind=parameter_out_of_range")

	buf.Reset()
	m.PanStereo([]float64{1}, []float64{1}, 2, 44100, 0.5)
	assert.Empty(t, buf.String())
}
