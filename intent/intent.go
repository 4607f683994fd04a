// Package intent defines the listener intentions that steer parameter
// adaptation and signal colouring, together with the reference frequency
// tables they draw on.
package intent

import "strings"

// Intention is the stated purpose of a session.
type Intention int

// Supported intentions. The zero value is Neutral.
const (
	Neutral Intention = iota
	Release
	Focus
	Integrate
	Creativity
	Healing
)

var intentionNames = [...]string{
	Neutral:    "neutral",
	Release:    "release",
	Focus:      "focus",
	Integrate:  "integrate",
	Creativity: "creativity",
	Healing:    "healing",
}

// String returns the lower-case intention name.
func (i Intention) String() string {
	if i < 0 || int(i) >= len(intentionNames) {
		return "unknown"
	}
	return intentionNames[i]
}

// Parse returns the intention named s. An empty name selects Neutral.
// Unknown names return Neutral and false.
func Parse(s string) (Intention, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Neutral, true
	}
	for i, name := range intentionNames {
		if name == s {
			return Intention(i), true
		}
	}
	return Neutral, false
}

// All returns every intention in declaration order.
func All() []Intention {
	out := make([]Intention, len(intentionNames))
	for i := range out {
		out[i] = Intention(i)
	}
	return out
}

// Profile is the constant parameter set attached to an intention.
type Profile struct {
	// CarrierShift is added to every carrier, in Hz.
	CarrierShift float64
	// WarmthFactor scales carriers and FM waveforms.
	WarmthFactor float64
	// CoherenceBoost scales beat frequencies.
	CoherenceBoost float64
	// TransitionGentleness smooths ramp curves when above 1.
	TransitionGentleness float64
	// DurationModifier scales phase durations.
	DurationModifier float64

	// SpectralWeight divides the 1/f pink-noise slope.
	SpectralWeight float64
	// SchumannBoost, SolfeggioBoost and GoldenHarmonics are the base gains
	// applied to resonant pink-noise bins.
	SchumannBoost   float64
	SolfeggioBoost  float64
	GoldenHarmonics float64
}

var profiles = [...]Profile{
	Neutral: {
		CarrierShift: 0, WarmthFactor: 1, CoherenceBoost: 1, TransitionGentleness: 1, DurationModifier: 1,
		SpectralWeight: 1, SchumannBoost: 1, SolfeggioBoost: 1, GoldenHarmonics: 1,
	},
	Release: {
		CarrierShift: -15, WarmthFactor: 1.15, CoherenceBoost: 1.3, TransitionGentleness: 1.4, DurationModifier: 1.1,
		SpectralWeight: 0.8, SchumannBoost: 1.3, SolfeggioBoost: 1.25, GoldenHarmonics: 1.2,
	},
	Focus: {
		CarrierShift: 10, WarmthFactor: 0.95, CoherenceBoost: 1.1, TransitionGentleness: 0.9, DurationModifier: 0.95,
		SpectralWeight: 1.2, SchumannBoost: 1.1, SolfeggioBoost: 1.0, GoldenHarmonics: 1.1,
	},
	Integrate: {
		CarrierShift: 5, WarmthFactor: 1.05, CoherenceBoost: 1.25, TransitionGentleness: 1.2, DurationModifier: 1.05,
		SpectralWeight: 1.0, SchumannBoost: 1.2, SolfeggioBoost: 1.15, GoldenHarmonics: 1.25,
	},
	Creativity: {
		CarrierShift: 8, WarmthFactor: 1.08, CoherenceBoost: 1.2, TransitionGentleness: 1.1, DurationModifier: 1.0,
		SpectralWeight: 1.1, SchumannBoost: 1.15, SolfeggioBoost: 1.2, GoldenHarmonics: 1.3,
	},
	Healing: {
		CarrierShift: -10, WarmthFactor: 1.2, CoherenceBoost: 1.4, TransitionGentleness: 1.5, DurationModifier: 1.15,
		SpectralWeight: 0.9, SchumannBoost: 1.25, SolfeggioBoost: 1.3, GoldenHarmonics: 1.2,
	},
}

// Profile returns the constant profile for i. Out-of-range values map to
// the Neutral profile.
func (i Intention) Profile() Profile {
	if i < 0 || int(i) >= len(profiles) {
		return profiles[Neutral]
	}
	return profiles[i]
}
