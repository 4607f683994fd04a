// Package testsignal provides deterministic mono test signals and sample
// hashes for analysis and reproducibility tests.
package testsignal

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

const (
	VariantSineV1    = "sine_v1"
	VariantAMTonesV1 = "am_tones_v1"
	VariantChirpV1   = "chirp_v1"
	VariantNoiseV1   = "noise_v1"
)

var signalVariants = []string{
	VariantSineV1,
	VariantAMTonesV1,
	VariantChirpV1,
	VariantNoiseV1,
}

func Variants() []string {
	out := make([]string, len(signalVariants))
	copy(out, signalVariants)
	return out
}

func Generate(variant string, sampleRate, samples int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if samples < 0 {
		return nil, fmt.Errorf("invalid sample count: %d", samples)
	}

	switch variant {
	case VariantSineV1:
		return Sine(200, sampleRate, samples, 0), nil
	case VariantAMTonesV1:
		return generateAMTones(sampleRate, samples), nil
	case VariantChirpV1:
		return generateChirp(sampleRate, samples), nil
	case VariantNoiseV1:
		return Noise(samples, 17), nil
	default:
		return nil, fmt.Errorf("unknown signal variant %q", variant)
	}
}

// Sine returns a unit sine at freq Hz starting at phase radians.
func Sine(freq float64, sampleRate, samples int, phase float64) []float64 {
	out := make([]float64, samples)
	w := 2 * math.Pi * freq / float64(sampleRate)
	for i := range out {
		out[i] = math.Sin(w*float64(i) + phase)
	}
	return out
}

// Noise returns uniform noise in [-1, 1] that depends only on salt.
func Noise(samples, salt int) []float64 {
	out := make([]float64, samples)
	for i := range out {
		out[i] = deterministicNoise(i, salt)
	}
	return out
}

func HashFloat32LE(samples []float32) string {
	h := sha256.New()
	var b [4]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(s))
		_, _ = h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func generateAMTones(sampleRate, samples int) []float64 {
	signal := make([]float64, samples)
	freqs := []float64{136.1, 210.42, 432}
	modFreqs := []float64{0.25, 0.1, 7.83}
	for i := range signal {
		t := float64(i) / float64(sampleRate)
		var val float64
		for fi, freq := range freqs {
			depth := 0.5 + 0.5*math.Sin(2*math.Pi*modFreqs[fi]*t)
			val += 0.3 * depth * math.Sin(2*math.Pi*freq*t)
		}
		signal[i] = clipSample(val)
	}
	return signal
}

func generateChirp(sampleRate, samples int) []float64 {
	signal := make([]float64, samples)
	duration := float64(samples) / float64(sampleRate)
	if duration <= 0 {
		return signal
	}
	f0 := 60.0
	f1 := 800.0
	k := math.Log(f1/f0) / duration
	for i := range signal {
		t := float64(i) / float64(sampleRate)
		phase := 2 * math.Pi * f0 * (math.Exp(k*t) - 1) / k
		signal[i] = clipSample(0.85 * math.Sin(phase))
	}
	return signal
}

func deterministicNoise(sampleIdx, salt int) float64 {
	x := uint32(sampleIdx*1664525 + salt*1013904223 + 2246822519)
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return math.Max(float64(int32(x))/2147483647.0, -1)
}

func clipSample(v float64) float64 {
	if v > 0.98 {
		return 0.98
	}
	if v < -0.98 {
		return -0.98
	}
	return v
}
