package entrain

import (
	"fmt"
	"math"

	"github.com/thesyncim/entrain/coherence"
	"github.com/thesyncim/entrain/generator"
)

type phaseResult struct {
	audio     []float32
	coherence float64
	checks    []SafetyCheck
	err       error
}

func (r *phaseResult) check(kind CheckKind, phase int, format string, args ...any) {
	r.checks = append(r.checks, SafetyCheck{Kind: kind, Phase: phase, Message: fmt.Sprintf(format, args...)})
}

// renderPhase synthesizes one planned phase into interleaved stereo.
// A panic during synthesis is returned as an ErrPhaseGeneration error.
func (s *Session) renderPhase(p PhasePlan, gen *generator.Generator) (res phaseResult) {
	defer func() {
		if r := recover(); r != nil {
			res = phaseResult{checks: res.checks, err: fmt.Errorf("%w: %v", ErrPhaseGeneration, r)}
		}
	}()
	if s.beforeRender != nil {
		s.beforeRender(p.Index)
	}
	n := p.Frames
	if n <= 0 {
		return phaseResult{err: fmt.Errorf("%w: phase %q has no frames", ErrPhaseGeneration, p.Name)}
	}

	var beats []float64
	for _, l := range p.Layers {
		if l.Beat.Kind != NoBeat {
			beats = append(beats, l.Beat.Mean())
		}
	}
	if ok, msg := coherence.IntermodulationHarmony(beats); !ok {
		res.check(HarmonicWarning, p.Index, "%s", msg)
	}
	if carriers := p.toneCarriers(); !coherence.HarmonicAnalysis(carriers) {
		res.check(HarmonicWarning, p.Index, "carriers %v share no octave, golden or just-interval relation", carriers)
	}

	var t []float64
	if p.needsTimeline() {
		t = make([]float64, n)
		for i := range t {
			t[i] = float64(i) / s.cfg.SampleRate
		}
	}

	left := make([]float64, n)
	right := make([]float64, n)
	for i, l := range p.Layers {
		ll, lr, err := s.renderLayer(p, l, n, t, gen)
		if err != nil {
			res.err = fmt.Errorf("%w: layer %d: %w", ErrPhaseGeneration, i, err)
			return res
		}
		for j := range left {
			left[j] += ll[j]
			right[j] += lr[j]
		}
	}

	pair := [][]float64{left, right}
	res.coherence = s.analyzer.Score(pair)
	if res.coherence < s.analyzer.Threshold(coherenceTarget) {
		out, adj := s.analyzer.Adjust(pair, coherenceTarget)
		left, right = out[0], out[1]
		res.check(CoherenceBelowThreshold, p.Index, "coherence %.3f below %.2f, adjusted to %.3f", adj.Before, coherenceTarget, adj.After)
		res.coherence = adj.After
	}

	normalizeChannels([][]float64{left, right}, phasePeak)

	if p.IsochronicFreq > 0 {
		left = s.modulator.Isochronic(left, p.IsochronicFreq, s.cfg.SampleRate, p.DutyCycle, true)
		right = s.modulator.Isochronic(right, p.IsochronicFreq, s.cfg.SampleRate, p.DutyCycle, true)
	}
	if p.BilateralFreq > 0 {
		left, right = s.modulator.PanStereo(left, right, p.BilateralFreq, s.cfg.SampleRate, p.BilateralDepth)
	}
	if p.Monaural {
		downmix(left, right)
	}

	res.audio = interleave(left, right)
	return res
}

// toneCarriers returns the carrier frequencies of the sine layers.
func (p PhasePlan) toneCarriers() []float64 {
	var out []float64
	for _, l := range p.Layers {
		if l.Waveform == CarrierSine {
			out = append(out, l.Carrier)
		}
	}
	return out
}

func (p PhasePlan) needsTimeline() bool {
	for _, l := range p.Layers {
		if l.Beat.Kind == Ramp || (l.FMDepth > 0 && l.FMRate > 0) {
			return true
		}
	}
	return false
}

// renderLayer returns the left and right signals of one layer. A layer
// without a beat returns the same mono slice for both ears.
func (s *Session) renderLayer(p PhasePlan, l LayerPlan, n int, t []float64, gen *generator.Generator) (left, right []float64, err error) {
	sr := s.cfg.SampleRate
	in := s.weaver.Intention()

	var base []float64
	switch l.Waveform {
	case CarrierPink:
		base, err = gen.PinkNoise(n, sr, in, layerNoiseCoherence)
	case CarrierBrown:
		base, err = gen.BrownNoise(n, in)
	case CarrierWhite:
		base, err = gen.WhiteNoise(n)
	}
	if err != nil {
		return nil, nil, err
	}

	if l.Beat.Kind == NoBeat {
		if base != nil {
			return base, base, nil
		}
		mono := generator.Tone(l.Carrier, sr, n, 0)
		for _, h := range l.Harmonics {
			for i, v := range generator.Tone(h*l.Carrier, sr, n, 0) {
				mono[i] += v / h
			}
		}
		return mono, mono, nil
	}

	var beat []float64
	if l.Beat.Kind == Ramp {
		beat = s.weaver.Transition(t, l.Beat.Start, l.Beat.End, p.Curve)
	}
	lf := make([]float64, n)
	rf := make([]float64, n)
	for i := range lf {
		lf[i] = l.Carrier
		if beat != nil {
			rf[i] = l.Carrier + beat[i]
		} else {
			rf[i] = l.Carrier + l.Beat.Start
		}
	}
	if l.FMDepth > 0 && l.FMRate > 0 {
		if l.FMShape == FMBiorhythm {
			tod := DefaultTimeOfDay
			if s.cfg.Biorhythm.TimeOfDay != nil {
				tod = *s.cfg.Biorhythm.TimeOfDay
			}
			lf = s.modulator.BiorhythmFM(lf, l.FMDepth, l.FMRate, t, s.cfg.Biorhythm.CircadianSync, tod)
			rf = s.modulator.BiorhythmFM(rf, l.FMDepth, l.FMRate, t, s.cfg.Biorhythm.CircadianSync, tod)
		} else {
			lf = s.modulator.FM(lf, l.FMDepth, l.FMRate, t, in)
			rf = s.modulator.FM(rf, l.FMDepth, l.FMRate, t, in)
		}
	}
	phL := generator.AccumulatePhase(lf, sr, 0)
	phR := generator.AccumulatePhase(rf, sr, 0)

	left, right = lf, rf
	for i := range left {
		if base != nil {
			left[i] = base[i] * math.Cos(phL[i])
			right[i] = base[i] * math.Cos(phR[i])
			continue
		}
		left[i] = math.Sin(phL[i])
		right[i] = math.Sin(phR[i])
		for _, h := range l.Harmonics {
			left[i] += math.Sin(h*phL[i]) / h
			right[i] += math.Sin(h*phL[i]+phR[i]-phL[i]) / h
		}
	}
	return left, right, nil
}
