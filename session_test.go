package entrain

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/entrain/container/wav"
	"github.com/thesyncim/entrain/internal/testsignal"
	"github.com/thesyncim/entrain/util"
	"github.com/thesyncim/entrain/weaver"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

func newSession(t *testing.T, cfg Config, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithSeed(1)}, opts...)
	s, err := NewSession(cfg, opts...)
	require.NoError(t, err)
	return s
}

// shortConfig is a small session at a low sample rate: three 30 s phases
// covering static, ramp and noise layers.
func shortConfig() Config {
	return Config{
		SampleRate: 8000,
		Phases: []Phase{
			{Name: "a", Duration: 30, Layers: []Layer{{Carrier: 200, Beat: ptr(10)}}},
			{Name: "b", Type: PhaseRamp, Duration: 30, AnimationType: "theta_gateway", Layers: []Layer{
				{Carrier: 220, StartBeat: ptr(10), EndBeat: ptr(6), FMDepth: 2, FMRate: 0.5},
				{Carrier: 150, CarrierType: CarrierPink, StartBeat: ptr(10), EndBeat: ptr(6)},
			}},
			{Name: "c", Duration: 30, Isochronic: true, IsochronicFreq: 6, Bilateral: true, BilateralFreq: 1,
				Layers: []Layer{{Carrier: 180, CarrierType: CarrierWhite, Beat: ptr(6)}, {Carrier: 240, Beat: ptr(6), Harmonics: []float64{2}}}},
		},
		AmbientLayers:  []AmbientLayer{{}, {Type: "brown_noise", Level: ptr(0.05)}},
		PinkNoiseLevel: 0.05,
	}
}

// crossingRate returns the rate of upward zero crossings of x in Hz.
func crossingRate(x []float64, sampleRate float64) float64 {
	n := 0
	for i := 1; i < len(x); i++ {
		if x[i-1] < 0 && x[i] >= 0 {
			n++
		}
	}
	return float64(n) * sampleRate / float64(len(x))
}

func TestBinauralScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("renders a 60 s session")
	}
	s := newSession(t, Config{
		Phases: []Phase{{Duration: 60, Layers: []Layer{{Carrier: 200, Beat: ptr(10)}}}},
	})
	require.NoError(t, s.Build())
	assert.Equal(t, StateBuilt, s.State())
	require.Equal(t, 2646000, s.Frames())

	left, right := deinterleave(s.Samples(), s.Frames())
	mid := len(left) / 6
	fl := crossingRate(left[mid:len(left)-mid], 44100)
	fr := crossingRate(right[mid:len(right)-mid], 44100)
	assert.InDelta(t, 200, fl, 0.5)
	assert.InDelta(t, 210, fr, 0.5)
	assert.InDelta(t, 10, fr-fl, 0.5)
}

func TestBuildInvariants(t *testing.T) {
	cfg := shortConfig()
	cfg.IncludeIntegration = true
	cfg.IntegrationDuration = 30
	s := newSession(t, cfg)
	require.NoError(t, s.Build())

	x := s.Samples()
	require.Len(t, x, 4*30*8000*channels)
	assert.True(t, util.Finite(x))
	assert.LessOrEqual(t, util.Peak(x), float32(0.98))

	m := s.Metadata()
	assert.Equal(t, "built", m.State)
	assert.Equal(t, 3, m.PhasesBuilt)
	assert.Len(t, m.CoherenceScores, 3)
	assert.Equal(t, "neutral", m.Intention)
	assert.Equal(t, uint64(1), m.Seed)
	assert.InDelta(t, 120, m.TotalDuration, 1e-9)
	assert.Empty(t, m.Checks(PhaseGenerationFailure))
	assert.Empty(t, m.Checks(BufferOverflow))
	assert.NotEmpty(t, m.Adaptations)
	assert.GreaterOrEqual(t, m.PhaseAlignment, 0.0)
	assert.LessOrEqual(t, m.PhaseAlignment, 1.0)

	tail := x[len(x)-2*100:]
	assert.Less(t, util.Peak(tail), float32(0.1), "integration tone fades out")
}

func TestWorkersDeterministic(t *testing.T) {
	var hashes []string
	for _, workers := range []int{1, 3} {
		s := newSession(t, shortConfig(), WithWorkers(workers))
		require.NoError(t, s.Build())
		hashes = append(hashes, testsignal.HashFloat32LE(s.Samples()))
	}
	assert.Equal(t, hashes[0], hashes[1])

	other := newSession(t, shortConfig(), WithSeed(2))
	require.NoError(t, other.Build())
	assert.NotEqual(t, hashes[0], testsignal.HashFloat32LE(other.Samples()))
}

func TestConfigSeed(t *testing.T) {
	cfg := shortConfig()
	seed := uint64(99)
	cfg.Seed = &seed
	s, err := NewSession(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, uint64(99), s.Seed())

	s = newSession(t, cfg, WithSeed(5))
	assert.Equal(t, uint64(5), s.Seed())
}

func TestPhaseFailureSkipped(t *testing.T) {
	s := newSession(t, shortConfig())
	s.beforeRender = func(phase int) {
		if phase == 1 {
			panic("synthesis exploded")
		}
	}
	require.NoError(t, s.Build())
	assert.Equal(t, 2*30*8000, s.Frames())

	m := s.Metadata()
	assert.Equal(t, 2, m.PhasesBuilt)
	failures := m.Checks(PhaseGenerationFailure)
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Phase)
	assert.Contains(t, failures[0].Message, "synthesis exploded")
}

func TestAllPhasesFail(t *testing.T) {
	s := newSession(t, shortConfig())
	s.beforeRender = func(int) { panic("no") }
	err := s.Build()
	require.ErrorIs(t, err, ErrNoAudio)
	assert.ErrorIs(t, err, ErrPhaseGeneration)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, 2, s.PhaseIndex())
	assert.Len(t, s.Metadata().Checks(PhaseGenerationFailure), 3)

	assert.ErrorIs(t, s.Build(), ErrAlreadyBuilt)
	assert.ErrorIs(t, s.Save(filepath.Join(t.TempDir(), "x.wav"), 16), ErrNotBuilt)
}

func TestBuildTwice(t *testing.T) {
	s := newSession(t, Config{SampleRate: 8000, Phases: []Phase{{Duration: 30, Carrier: 300}}})
	require.NoError(t, s.Build())
	assert.ErrorIs(t, s.Build(), ErrAlreadyBuilt)
}

func TestPureToneIsMono(t *testing.T) {
	s := newSession(t, Config{
		SampleRate:     8000,
		Phases:         []Phase{{Duration: 30, Carrier: 300, Harmonics: []float64{2}}},
		PinkNoiseLevel: 0.1,
	})
	require.NoError(t, s.Build())
	left, right := deinterleave(s.Samples(), s.Frames())
	assert.Equal(t, left, right)
	assert.InDelta(t, 1.0, s.Metadata().CoherenceScores[0], 1e-9)
}

func TestMonauralDownmix(t *testing.T) {
	cfg := Config{
		SampleRate:    8000,
		NeuralProfile: weaver.ProfileSpec{CurrentState: "agitated"},
		Phases:        []Phase{{Duration: 30, Layers: []Layer{{Carrier: 200, Beat: ptr(2)}}}},
	}
	s := newSession(t, cfg)
	require.NoError(t, s.Build())
	left, right := deinterleave(s.Samples(), s.Frames())
	assert.Equal(t, left, right)

	cfg.Phases[0].Monaural = true
	s = newSession(t, cfg)
	require.NoError(t, s.Build())
	left, right = deinterleave(s.Samples(), s.Frames())
	assert.NotEqual(t, left, right, "monaural flag keeps the binaural pair")
}

func TestLowCoherenceRecorded(t *testing.T) {
	s := newSession(t, Config{
		SampleRate: 8000,
		Phases:     []Phase{{Duration: 30, Layers: []Layer{{Carrier: 200, Beat: ptr(10)}}}},
	})
	require.NoError(t, s.Build())
	m := s.Metadata()
	checks := m.Checks(CoherenceBelowThreshold)
	require.Len(t, checks, 1)
	assert.Equal(t, 0, checks[0].Phase)
	assert.NotEmpty(t, m.Checks(FinalCoherence))
}

func TestHarmonicWarning(t *testing.T) {
	s := newSession(t, Config{
		SampleRate: 8000,
		Phases: []Phase{{Duration: 30, Layers: []Layer{
			{Carrier: 200, Beat: ptr(7.83)},
			{Carrier: 300, Beat: ptr(10)},
		}}},
	})
	require.NoError(t, s.Build())
	assert.Len(t, s.Metadata().Checks(HarmonicWarning), 1)
}

func TestUnrelatedCarriersWarn(t *testing.T) {
	s := newSession(t, Config{
		SampleRate: 8000,
		Phases: []Phase{{Duration: 30, Layers: []Layer{
			{Carrier: 200, Beat: ptr(10)},
			{Carrier: 283, Beat: ptr(10)},
			{CarrierType: CarrierPink, Carrier: 411, Beat: ptr(10)},
		}}},
	})
	require.NoError(t, s.Build())
	checks := s.Metadata().Checks(HarmonicWarning)
	require.Len(t, checks, 1)
	assert.Contains(t, checks[0].Message, "[200 283]")
}

func TestSaveRoundTrip(t *testing.T) {
	s := newSession(t, shortConfig())
	path := filepath.Join(t.TempDir(), "session.wav")
	assert.ErrorIs(t, s.Save(path, 16), ErrNotBuilt)
	require.NoError(t, s.Build())
	assert.ErrorIs(t, s.Save(path, 24), wav.ErrInvalidBitDepth)
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "rejected save must not create a file")

	for _, bits := range []int{16, 32} {
		require.NoError(t, s.Save(path, bits))
		f, err := os.Open(path)
		require.NoError(t, err)
		h, got, err := wav.Decode(f)
		require.NoError(t, f.Close())
		require.NoError(t, err)

		assert.Equal(t, uint32(8000), h.SampleRate)
		assert.Equal(t, uint16(2), h.Channels)
		assert.Equal(t, bits, h.BitDepth)
		require.Equal(t, s.Frames(), h.Frames)
		want := s.Samples()
		for i := 0; i < len(want); i += 997 {
			assert.InDelta(t, float64(want[i])*wav.Headroom, float64(got[i]), 1.0/32767+1e-6)
		}
	}
}

func TestSaveMetadata(t *testing.T) {
	s := newSession(t, shortConfig())
	path := filepath.Join(t.TempDir(), "session.json")
	assert.ErrorIs(t, s.SaveMetadata(path), ErrNotBuilt)
	require.NoError(t, s.Build())
	require.NoError(t, s.SaveMetadata(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m Metadata
	require.NoError(t, json.Unmarshal(data, &m))
	_, err = uuid.Parse(m.ID)
	assert.NoError(t, err)
	assert.Equal(t, s.Metadata().SafetyChecks, m.SafetyChecks)
	assert.Equal(t, 2, m.Channels)
	assert.Equal(t, "standard", m.NeuralProfile.Sensitivity)
	assert.Contains(t, string(data), `"kind": "coherence_below_threshold"`)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "phase_generating", StatePhaseGenerating.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.Equal(t, "final_coherence", FinalCoherence.String())
}
