// Package weaver adapts session parameters to a listener.
//
// A Weaver combines an intention with a NeuralProfile and rewrites the
// raw carrier, beat, duration and volume values of a session so they suit
// that listener, always finishing inside the safety limits. It also shapes
// the beat trajectory of ramp phases through a family of transition
// curves. A Weaver is immutable once created and safe for concurrent use.
//
// The single-value methods and their batch forms (AdaptCarriers,
// AdaptBeats, AdaptVolumes) are both public entry points. Session
// planning uses the carrier and beat batches; AdaptVolumes serves callers
// that hold a mix as a map of named levels.
package weaver

import (
	"log/slog"
	"strings"

	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/safety"
)

// Weaver adapts parameters for one intention and profile.
type Weaver struct {
	intention intent.Intention
	ip        intent.Profile
	profile   NeuralProfile
	logger    *slog.Logger
}

// Option configures a Weaver.
type Option func(*Weaver)

// WithLogger sets the weaver logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Weaver) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Weaver for the given intention and profile.
func New(in intent.Intention, p NeuralProfile, opts ...Option) *Weaver {
	w := &Weaver{
		intention: in,
		ip:        in.Profile(),
		profile:   p,
		logger:    slog.Default().With(slog.String("component", "weaver")),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger.Info("weaver initialized",
		"intention", in.String(),
		"sensitivity", p.Sensitivity.String(),
		"experience", p.Experience.String())
	return w
}

// Intention returns the weaver's intention.
func (w *Weaver) Intention() intent.Intention { return w.intention }

// Profile returns the weaver's neural profile.
func (w *Weaver) Profile() NeuralProfile { return w.profile }

// AdaptCarrier shifts f by the intention, a sensitivity adjustment of
// -20·(sensitivity_factor-1) Hz and ±5 Hz for beginners or advanced
// listeners, scales it by warmth and clamps it to the carrier band.
func (w *Weaver) AdaptCarrier(f float64) float64 {
	sensitivityAdj := (w.profile.SensitivityFactor() - 1) * -20
	var experienceAdj float64
	switch w.profile.Experience {
	case Beginner:
		experienceAdj = -5
	case Advanced, Expert:
		experienceAdj = 5
	}
	adapted := (f + w.ip.CarrierShift + sensitivityAdj + experienceAdj) * w.ip.WarmthFactor
	return w.clamp("carrier", safety.Carrier, adapted)
}

// AdaptCarriers applies AdaptCarrier to each frequency.
func (w *Weaver) AdaptCarriers(freqs []float64) []float64 {
	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = w.AdaptCarrier(f)
	}
	return out
}

// AdaptBeat scales f for the listener's state and experience and clamps
// it to the beat band.
func (w *Weaver) AdaptBeat(f float64) float64 {
	adapted := f
	switch w.profile.State {
	case Agitated:
		adapted *= 0.8
	case Anxious:
		adapted *= 0.7
	case Tired:
		adapted *= 1.1
	}
	switch w.profile.Experience {
	case Beginner:
		adapted *= 0.9
	case Expert:
		adapted *= 1.1
	}
	return w.clamp("beat", safety.Beat, adapted)
}

// AdaptBeats applies AdaptBeat to each frequency.
func (w *Weaver) AdaptBeats(freqs []float64) []float64 {
	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = w.AdaptBeat(f)
	}
	return out
}

// AdaptDuration scales a phase duration in seconds by the intention's
// duration modifier, the sensitivity duration extension and the
// experience factor, clamped to the phase duration limits.
func (w *Weaver) AdaptDuration(base float64) float64 {
	adapted := base * w.ip.DurationModifier * w.profile.DurationExtension()
	switch w.profile.Experience {
	case Beginner:
		adapted *= 1.1
	case Expert:
		adapted *= 0.95
	}
	return w.clamp("phase duration", safety.PhaseDuration, adapted)
}

// AdaptVolume scales a level by 1/sensitivity_factor and the state
// multiplier, and additionally by the noise tolerance when key names a
// noise component.
func (w *Weaver) AdaptVolume(key string, level float64) float64 {
	adapted := level / w.profile.SensitivityFactor()
	switch w.profile.State {
	case Agitated:
		adapted *= 0.7
	case Anxious:
		adapted *= 0.6
	case Focused:
		adapted *= 1.1
	}
	if strings.Contains(strings.ToLower(key), "noise") {
		adapted *= w.profile.NoiseTolerance()
	}
	return w.clamp("volume "+key, safety.Volume, adapted)
}

// AdaptVolumes applies AdaptVolume to every entry of levels and returns a
// new map.
func (w *Weaver) AdaptVolumes(levels map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(levels))
	for k, v := range levels {
		out[k] = w.AdaptVolume(k, v)
	}
	return out
}

func (w *Weaver) clamp(name string, r safety.Range, v float64) float64 {
	c := r.Clamp(v)
	if c != v {
		w.logger.Warn(name+" clamped", "kind", "parameter_out_of_range", "requested", v, "applied", c)
	}
	return c
}
