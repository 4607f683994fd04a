package entrain

import (
	"fmt"
	"math"

	"github.com/thesyncim/entrain/generator"
	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/safety"
	"github.com/thesyncim/entrain/util"
)

// alignmentWindow bounds the frames used for the phase alignment score.
const alignmentWindow = 1 << 16

// mixAmbient adds the ambient layers and the pink noise bed under every
// rendered frame.
func (s *Session) mixAmbient() error {
	frames := s.Frames()
	sr := s.cfg.SampleRate
	in := s.weaver.Intention()

	for i, a := range s.cfg.AmbientLayers {
		kind := waveform(a.Type)
		level := DefaultAmbientLevel
		if a.Level != nil {
			level = *a.Level
		}
		key := "ambient"
		if kind != CarrierSine {
			key = kind + "_noise"
		}
		level = s.weaver.AdaptVolume(key, level)
		if level <= 0 {
			continue
		}

		var wave []float64
		var err error
		gen := s.newGenerator(streamAmbient + uint64(i))
		switch kind {
		case CarrierSine:
			freq := a.Freq
			if freq == 0 {
				freq = DefaultAmbientFrequency
			}
			if !safety.Carrier.Contains(freq) {
				s.check(ParameterOutOfRange, SessionLevel, "ambient tone %.2fHz clamped to carrier band", freq)
			}
			wave, err = gen.CarrierWave(freq, float64(frames)/sr, sr, intent.Neutral, 0)
		case CarrierPink:
			wave, err = gen.PinkNoise(frames, sr, in, layerNoiseCoherence)
		case CarrierBrown:
			wave, err = gen.BrownNoise(frames, in)
		case CarrierWhite:
			wave, err = gen.WhiteNoise(frames)
		}
		if err != nil {
			return err
		}
		mixMono(s.samples, wave, level)
		s.logger.Debug("ambient layer mixed", "type", kind, "level", level)
	}

	if s.cfg.PinkNoiseLevel > 0 {
		level := s.weaver.AdaptVolume("pink_noise", s.cfg.PinkNoiseLevel)
		if level > 0 {
			bed, err := s.newGenerator(streamBed).PinkNoise(frames, sr, in, bedNoiseCoherence)
			if err != nil {
				return err
			}
			mixMono(s.samples, bed, level)
			s.logger.Debug("pink noise bed mixed", "level", level)
		}
	}
	return nil
}

// appendIntegration appends the exponentially fading integration tone.
func (s *Session) appendIntegration() {
	n := s.integrationFrames
	if len(s.samples)+n*channels > cap(s.samples) {
		s.check(BufferOverflow, SessionLevel, "integration exceeds reserved buffer of %d frames", cap(s.samples)/channels)
	}
	tone := generator.Tone(integrationFrequency, s.cfg.SampleRate, n, 0)
	for i := range tone {
		tone[i] *= s.integrationLevel * math.Exp(-integrationDecay*float64(i)/float64(n))
	}
	s.samples = append(s.samples, interleave(tone, tone)...)
	s.meta.Adaptations = append(s.meta.Adaptations,
		fmt.Sprintf("integration: %.1fs at %.0fHz", float64(n)/s.cfg.SampleRate, integrationFrequency))
	s.logger.Info("integration appended", "frames", n, "level", s.integrationLevel)
}

// finalize sanitizes, normalizes and clip-guards the buffer and records
// the final coherence and phase alignment.
func (s *Session) finalize() {
	if bad := sanitize(s.samples); bad > 0 {
		s.check(NumericAnomaly, SessionLevel, "%d non-finite samples replaced with zero", bad)
	}
	if peak, gain := normalizeInterleaved(s.samples, channels, phasePeak); gain != 1 {
		s.logger.Debug("buffer normalized", "peak", peak, "gain", gain)
	}

	left, right := deinterleave(s.samples, s.Frames())
	pair := [][]float64{left, right}
	if score := s.analyzer.Score(pair); score < s.analyzer.Threshold(coherenceTarget) {
		s.check(FinalCoherence, SessionLevel, "final coherence %.3f below target %.2f", score, coherenceTarget)
	}
	w := min(len(left), alignmentWindow)
	s.meta.PhaseAlignment = s.analyzer.PhaseRelationship([][]float64{left[:w], right[:w]})

	if peak := float64(util.Peak(s.samples)); peak > clipGuard {
		scale(s.samples, clipGuardOut/float32(peak))
		s.check(ClippingPrevention, SessionLevel, "peak %.3f above %.2f, scaled to %.2f", peak, clipGuard, clipGuardOut)
	}
}
