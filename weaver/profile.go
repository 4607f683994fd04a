package weaver

import (
	"log/slog"
	"math"
	"strings"

	"github.com/thesyncim/entrain/util"
)

// Sensitivity is how strongly a listener responds to stimulation.
type Sensitivity int

// Sensitivity levels. The zero value is Standard.
const (
	Standard Sensitivity = iota
	Sensitive
	Resilient
)

// State is the listener's current condition.
type State int

// Listener states. The zero value is Neutral.
const (
	Neutral State = iota
	Calm
	Focused
	Agitated
	Meditative
	Anxious
	Tired
)

// Experience is the listener's familiarity with entrainment.
type Experience int

// Experience levels. The zero value is Intermediate.
const (
	Intermediate Experience = iota
	Beginner
	Advanced
	Expert
)

type sensitivityProfile struct {
	name                string
	sensitivityFactor   float64
	processingSpeed     float64
	integrationCapacity int
	noiseTolerance      float64
	durationExtension   float64
}

var sensitivityTable = [...]sensitivityProfile{
	Standard:  {name: "standard", sensitivityFactor: 1.0, processingSpeed: 1.0, integrationCapacity: 4, noiseTolerance: 1.0, durationExtension: 1.0},
	Sensitive: {name: "sensitive", sensitivityFactor: 1.3, processingSpeed: 0.8, integrationCapacity: 3, noiseTolerance: 0.7, durationExtension: 1.2},
	Resilient: {name: "resilient", sensitivityFactor: 0.8, processingSpeed: 1.2, integrationCapacity: 6, noiseTolerance: 1.3, durationExtension: 0.9},
}

type stateProfile struct {
	name        string
	coherence   float64
	stability   float64
	receptivity float64
}

var stateTable = [...]stateProfile{
	Neutral:    {name: "neutral", coherence: 0.6, stability: 0.6, receptivity: 0.6},
	Calm:       {name: "calm", coherence: 0.85, stability: 0.9, receptivity: 0.8},
	Focused:    {name: "focused", coherence: 0.9, stability: 0.8, receptivity: 0.7},
	Agitated:   {name: "agitated", coherence: 0.3, stability: 0.4, receptivity: 0.9},
	Meditative: {name: "meditative", coherence: 0.8, stability: 0.9, receptivity: 0.9},
	Anxious:    {name: "anxious", coherence: 0.25, stability: 0.3, receptivity: 0.8},
	Tired:      {name: "tired", coherence: 0.4, stability: 0.5, receptivity: 0.7},
}

type experienceProfile struct {
	name                string
	complexityTolerance float64
	safetyMargin        float64
	capacityBonus       int
}

var experienceTable = [...]experienceProfile{
	Intermediate: {name: "intermediate", complexityTolerance: 0.8, safetyMargin: 1.2, capacityBonus: 1},
	Beginner:     {name: "beginner", complexityTolerance: 0.6, safetyMargin: 1.5, capacityBonus: 0},
	Advanced:     {name: "advanced", complexityTolerance: 1.0, safetyMargin: 1.0, capacityBonus: 2},
	Expert:       {name: "expert", complexityTolerance: 1.2, safetyMargin: 0.9, capacityBonus: 3},
}

func (s Sensitivity) entry() sensitivityProfile {
	if s < 0 || int(s) >= len(sensitivityTable) {
		return sensitivityTable[Standard]
	}
	return sensitivityTable[s]
}

func (s State) entry() stateProfile {
	if s < 0 || int(s) >= len(stateTable) {
		return stateTable[Neutral]
	}
	return stateTable[s]
}

func (e Experience) entry() experienceProfile {
	if e < 0 || int(e) >= len(experienceTable) {
		return experienceTable[Beginner]
	}
	return experienceTable[e]
}

func (s Sensitivity) String() string { return s.entry().name }
func (s State) String() string       { return s.entry().name }
func (e Experience) String() string  { return e.entry().name }

// ParseSensitivity returns the level named s. An empty name selects
// Standard; unknown names return Standard and false.
func ParseSensitivity(s string) (Sensitivity, bool) {
	s = normalizeName(s)
	if s == "" {
		return Standard, true
	}
	for i, p := range sensitivityTable {
		if p.name == s {
			return Sensitivity(i), true
		}
	}
	return Standard, false
}

// ParseState returns the state named s. An empty name selects Neutral;
// unknown names return Neutral and false.
func ParseState(s string) (State, bool) {
	s = normalizeName(s)
	if s == "" {
		return Neutral, true
	}
	for i, p := range stateTable {
		if p.name == s {
			return State(i), true
		}
	}
	return Neutral, false
}

// ParseExperience returns the level named s. An empty name selects
// Intermediate; unknown names fall back to Beginner, the most
// conservative level, and return false.
func ParseExperience(s string) (Experience, bool) {
	s = normalizeName(s)
	if s == "" {
		return Intermediate, true
	}
	for i, p := range experienceTable {
		if p.name == s {
			return Experience(i), true
		}
	}
	return Beginner, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Custom factor keys understood by NeuralProfile.
const (
	FactorSensitivity        = "sensitivity_factor"
	FactorProcessingSpeedMul = "processing_speed_mult"
)

// MaxIntegrationCapacity bounds an integration capacity override.
const MaxIntegrationCapacity = 10

// NeuralProfile describes how a listener processes entrainment. The zero
// value is a standard, neutral, intermediate listener.
type NeuralProfile struct {
	Sensitivity Sensitivity
	State       State
	Experience  Experience

	// IntegrationCapacity overrides the derived capacity when non-nil.
	IntegrationCapacity *int

	// CustomFactors holds named multipliers and overrides.
	CustomFactors map[string]float64
}

// SensitivityFactor is the sensitivity multiplier, or the
// sensitivity_factor custom override when it is positive.
func (p NeuralProfile) SensitivityFactor() float64 {
	if v, ok := p.CustomFactors[FactorSensitivity]; ok && v > 0 && !math.IsInf(v, 0) {
		return v
	}
	return p.Sensitivity.entry().sensitivityFactor
}

// ProcessingSpeed combines sensitivity speed, experience complexity
// tolerance and the processing_speed_mult custom factor.
func (p NeuralProfile) ProcessingSpeed() float64 {
	mult := 1.0
	if v, ok := p.CustomFactors[FactorProcessingSpeedMul]; ok && v > 0 && !math.IsInf(v, 0) {
		mult = v
	}
	return p.Sensitivity.entry().processingSpeed * p.Experience.entry().complexityTolerance * mult
}

// Coherence is the coherence of the current state.
func (p NeuralProfile) Coherence() float64 { return p.State.entry().coherence }

// Stability is the stability of the current state.
func (p NeuralProfile) Stability() float64 { return p.State.entry().stability }

// Receptivity is the receptivity of the current state.
func (p NeuralProfile) Receptivity() float64 { return p.State.entry().receptivity }

// NoiseTolerance scales noise-type volume levels.
func (p NeuralProfile) NoiseTolerance() float64 { return p.Sensitivity.entry().noiseTolerance }

// DurationExtension scales phase durations.
func (p NeuralProfile) DurationExtension() float64 { return p.Sensitivity.entry().durationExtension }

// SafetyMargin is the experience safety margin.
func (p NeuralProfile) SafetyMargin() float64 { return p.Experience.entry().safetyMargin }

// Capacity returns the override when set, otherwise the sensitivity
// capacity plus the experience bonus.
func (p NeuralProfile) Capacity() int {
	if p.IntegrationCapacity != nil {
		return *p.IntegrationCapacity
	}
	return p.Sensitivity.entry().integrationCapacity + p.Experience.entry().capacityBonus
}

// ProfileSpec is the textual form of a NeuralProfile as found in session
// configuration files.
type ProfileSpec struct {
	Sensitivity         string             `yaml:"sensitivity,omitempty" json:"sensitivity,omitempty"`
	CurrentState        string             `yaml:"current_state,omitempty" json:"current_state,omitempty"`
	Experience          string             `yaml:"experience,omitempty" json:"experience,omitempty"`
	IntegrationCapacity *int               `yaml:"integration_capacity,omitempty" json:"integration_capacity,omitempty"`
	CustomFactors       map[string]float64 `yaml:"custom_factors,omitempty" json:"custom_factors,omitempty"`
}

// Resolve converts s into a NeuralProfile. Unknown names are
// replaced by safe defaults and an out-of-range capacity is clamped; each
// substitution is logged.
func (s ProfileSpec) Resolve(logger *slog.Logger) NeuralProfile {
	if logger == nil {
		logger = slog.Default()
	}
	var p NeuralProfile
	var ok bool
	if p.Sensitivity, ok = ParseSensitivity(s.Sensitivity); !ok {
		logger.Warn("unknown sensitivity, using default", "value", s.Sensitivity, "default", p.Sensitivity.String())
	}
	if p.State, ok = ParseState(s.CurrentState); !ok {
		logger.Warn("unknown current state, using default", "value", s.CurrentState, "default", p.State.String())
	}
	if p.Experience, ok = ParseExperience(s.Experience); !ok {
		logger.Warn("unknown experience, using default", "value", s.Experience, "default", p.Experience.String())
	}
	if s.IntegrationCapacity != nil {
		c := util.Clamp(*s.IntegrationCapacity, 0, MaxIntegrationCapacity)
		if c != *s.IntegrationCapacity {
			logger.Warn("integration capacity clamped", "kind", "parameter_out_of_range", "requested", *s.IntegrationCapacity, "applied", c)
		}
		p.IntegrationCapacity = &c
	}
	if len(s.CustomFactors) > 0 {
		p.CustomFactors = make(map[string]float64, len(s.CustomFactors))
		for k, v := range s.CustomFactors {
			if !(v > 0) || math.IsInf(v, 0) {
				logger.Warn("ignoring non-positive custom factor", "factor", k, "value", v)
				continue
			}
			p.CustomFactors[k] = v
		}
	}
	return p
}

// Summary is a flat description of a resolved profile.
type Summary struct {
	Sensitivity         string  `json:"sensitivity"`
	State               string  `json:"current_state"`
	Experience          string  `json:"experience"`
	SensitivityFactor   float64 `json:"sensitivity_factor"`
	ProcessingSpeed     float64 `json:"processing_speed"`
	Coherence           float64 `json:"coherence"`
	Stability           float64 `json:"stability"`
	Receptivity         float64 `json:"receptivity"`
	IntegrationCapacity int     `json:"integration_capacity"`
}

// Summary returns the profile's derived factors.
func (p NeuralProfile) Summary() Summary {
	return Summary{
		Sensitivity:         p.Sensitivity.String(),
		State:               p.State.String(),
		Experience:          p.Experience.String(),
		SensitivityFactor:   p.SensitivityFactor(),
		ProcessingSpeed:     p.ProcessingSpeed(),
		Coherence:           p.Coherence(),
		Stability:           p.Stability(),
		Receptivity:         p.Receptivity(),
		IntegrationCapacity: p.Capacity(),
	}
}
