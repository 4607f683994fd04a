package entrain

import (
	"fmt"
	"math"

	"github.com/thesyncim/entrain/safety"
	"github.com/thesyncim/entrain/weaver"
)

// Adaptation constants applied while planning phases.
const (
	layerNoiseCoherence = 0.1
	bedNoiseCoherence   = 0.2
	sensitiveDuty       = 0.7
	standardDuty        = 0.5
	sensitivePanScale   = 0.8
	deepDeltaBeat       = 4.0
	lowCoherence        = 0.5
	coherenceTarget     = 0.7

	integrationFrequency = 528.0
	integrationLevel     = 0.05
	integrationDecay     = 2.0

	reserveFactor            = 1.1
	integrationReserveFactor = 1.3
)

// PhasePlan is a configured phase after adaptation to the listener. It
// holds everything needed to render the phase.
type PhasePlan struct {
	Index          int
	Name           string
	Kind           string
	Duration       float64
	Frames         int
	Curve          weaver.Curve
	Layers         []LayerPlan
	IsochronicFreq float64
	DutyCycle      float64
	BilateralFreq  float64
	BilateralDepth float64
	Monaural       bool
	Adaptations    []string
}

// LayerPlan is an adapted layer.
type LayerPlan struct {
	Waveform  string
	Carrier   float64
	Beat      Beat
	FMDepth   float64
	FMRate    float64
	FMShape   string
	Harmonics []float64
}

// Plan returns the adapted phase plans the session will render.
func (s *Session) Plan() []PhasePlan {
	out := make([]PhasePlan, len(s.plans))
	copy(out, s.plans)
	return out
}

func (s *Session) planPhases() []PhasePlan {
	plans := make([]PhasePlan, len(s.cfg.Phases))
	for i, p := range s.cfg.Phases {
		plans[i] = s.planPhase(i, p)
	}
	return plans
}

func (s *Session) planPhase(idx int, p Phase) PhasePlan {
	w := s.weaver
	prof := w.Profile()
	pp := PhasePlan{
		Index:    idx,
		Name:     p.Name,
		Kind:     p.kind(),
		Duration: w.AdaptDuration(p.Duration),
	}
	if pp.Name == "" {
		pp.Name = fmt.Sprintf("phase_%d", idx+1)
	}
	pp.Frames = int(pp.Duration * s.cfg.SampleRate)
	if pp.Duration != p.Duration {
		pp.note("duration %.1fs -> %.1fs", p.Duration, pp.Duration)
	}

	if pp.Kind == PhaseRamp {
		c, ok := weaver.ParseCurve(p.AnimationType)
		if !ok {
			s.logger.Warn("unknown animation type, using linear", "phase", idx, "value", p.AnimationType)
		}
		pp.Curve = c
	}

	ramp := pp.Kind == PhaseRamp
	layers := p.layers()
	raws := make([]Beat, len(layers))
	carriers := make([]float64, len(layers))
	var beatValues []float64
	for li, l := range layers {
		raws[li], _ = l.beat(ramp, "")
		carriers[li] = l.carrier()
		switch raws[li].Kind {
		case Static:
			beatValues = append(beatValues, raws[li].Start)
		case Ramp:
			beatValues = append(beatValues, raws[li].Start, raws[li].End)
		}
	}
	adaptedCarriers := w.AdaptCarriers(carriers)
	adaptedBeats := w.AdaptBeats(beatValues)

	deep := false
	for li, l := range layers {
		raw := raws[li]
		lp := LayerPlan{
			Waveform: waveform(l.CarrierType),
			Carrier:  adaptedCarriers[li],
			FMDepth:  l.FMDepth,
			FMRate:   l.FMRate,
			FMShape:  l.FMShape,
		}
		if lp.FMShape == "" {
			lp.FMShape = FMStandard
		}
		if lp.Carrier != carriers[li] {
			pp.note("layer %d carrier %.2fHz -> %.2fHz", li, carriers[li], lp.Carrier)
		}
		switch raw.Kind {
		case Static:
			lp.Beat = StaticBeat(adaptedBeats[0])
			adaptedBeats = adaptedBeats[1:]
		case Ramp:
			lp.Beat = RampBeat(adaptedBeats[0], adaptedBeats[1])
			adaptedBeats = adaptedBeats[2:]
		}
		if raw.Kind != NoBeat && lp.Beat != raw {
			pp.note("layer %d beat %s -> %s", li, raw, lp.Beat)
		}
		if lp.Beat.Kind != NoBeat && lp.Beat.Final() < deepDeltaBeat {
			deep = true
		}
		for _, h := range l.Harmonics {
			if h*lp.Carrier > safety.Carrier.Max {
				s.logger.Warn("harmonic above carrier band dropped",
					"kind", "parameter_out_of_range", "phase", idx, "multiple", h, "frequency", h*lp.Carrier)
				pp.note("layer %d harmonic x%g dropped above %.0fHz", li, h, safety.Carrier.Max)
				continue
			}
			lp.Harmonics = append(lp.Harmonics, h)
		}
		pp.Layers = append(pp.Layers, lp)
	}

	if p.Isochronic && p.IsochronicFreq > 0 {
		pp.IsochronicFreq = p.IsochronicFreq
		pp.DutyCycle = standardDuty
		if prof.SensitivityFactor() > 1 {
			pp.DutyCycle = sensitiveDuty
			pp.note("isochronic duty cycle %.1f for sensitive listener", sensitiveDuty)
		}
	}
	if p.Bilateral && p.BilateralFreq > 0 {
		pp.BilateralFreq = p.BilateralFreq
		if prof.SensitivityFactor() > 1 {
			pp.BilateralFreq *= sensitivePanScale
			pp.note("bilateral rate %.2fHz -> %.2fHz", p.BilateralFreq, pp.BilateralFreq)
		}
		pp.BilateralDepth = DefaultBilateralDepth
		if p.BilateralDepth != nil {
			pp.BilateralDepth = *p.BilateralDepth
		}
	}
	if !p.Monaural && deep && prof.Coherence() < lowCoherence {
		pp.Monaural = true
		pp.note("monaural downmix for deep beat at coherence %.2f", prof.Coherence())
	}
	return pp
}

func (p *PhasePlan) note(format string, args ...any) {
	p.Adaptations = append(p.Adaptations, fmt.Sprintf("%s: ", p.Name)+fmt.Sprintf(format, args...))
}

// integrationPlan returns the adapted integration length and level.
func (s *Session) integrationPlan() (frames int, level float64) {
	if !s.cfg.IncludeIntegration {
		return 0, 0
	}
	d := s.weaver.AdaptDuration(s.cfg.IntegrationDuration)
	return int(d * s.cfg.SampleRate), s.weaver.AdaptVolume("integration", integrationLevel)
}

// reserve returns the buffer capacity in frames for the planned session.
func (s *Session) reserve() int {
	var frames int
	for _, p := range s.plans {
		frames += p.Frames
	}
	total := math.Ceil(float64(frames) * reserveFactor)
	total += math.Ceil(float64(s.integrationFrames) * integrationReserveFactor)
	return int(total)
}
