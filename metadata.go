package entrain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/thesyncim/entrain/weaver"
)

// CheckKind classifies a non-fatal event recorded during Build.
type CheckKind int

// Safety check kinds.
const (
	ParameterOutOfRange CheckKind = iota
	CoherenceBelowThreshold
	PhaseGenerationFailure
	NumericAnomaly
	BufferOverflow
	HarmonicWarning
	ClippingPrevention
	FinalCoherence
)

var checkKindNames = [...]string{
	ParameterOutOfRange:     "parameter_out_of_range",
	CoherenceBelowThreshold: "coherence_below_threshold",
	PhaseGenerationFailure:  "phase_generation_failure",
	NumericAnomaly:          "numeric_anomaly",
	BufferOverflow:          "buffer_overflow",
	HarmonicWarning:         "harmonic_warning",
	ClippingPrevention:      "clipping_prevention",
	FinalCoherence:          "final_coherence",
}

func (k CheckKind) String() string {
	if k < 0 || int(k) >= len(checkKindNames) {
		return fmt.Sprintf("CheckKind(%d)", int(k))
	}
	return checkKindNames[k]
}

// MarshalText encodes the kind by name.
func (k CheckKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *CheckKind) UnmarshalText(b []byte) error {
	for i, name := range checkKindNames {
		if name == string(b) {
			*k = CheckKind(i)
			return nil
		}
	}
	return fmt.Errorf("entrain: unknown check kind %q", b)
}

// SessionLevel is the Phase value of checks not tied to a phase.
const SessionLevel = -1

// SafetyCheck is one recorded event.
type SafetyCheck struct {
	Kind    CheckKind `json:"kind"`
	Phase   int       `json:"phase"`
	Message string    `json:"message"`
}

func (c SafetyCheck) String() string {
	if c.Phase == SessionLevel {
		return fmt.Sprintf("%s: %s", c.Kind, c.Message)
	}
	return fmt.Sprintf("%s (phase %d): %s", c.Kind, c.Phase, c.Message)
}

// Metadata summarizes a built session.
type Metadata struct {
	ID              string         `json:"id"`
	Seed            uint64         `json:"seed"`
	State           string         `json:"state"`
	Intention       string         `json:"intention"`
	NeuralProfile   weaver.Summary `json:"neural_profile"`
	SampleRate      float64        `json:"sample_rate"`
	Channels        int            `json:"channels"`
	TotalFrames     int            `json:"total_frames"`
	TotalDuration   float64        `json:"total_duration"`
	PhasesBuilt     int            `json:"phases_built"`
	CoherenceScores []float64      `json:"coherence_scores"`
	PhaseAlignment  float64        `json:"phase_alignment"`
	SafetyChecks    []SafetyCheck  `json:"safety_checks"`
	Adaptations     []string       `json:"adaptations_applied"`
}

// Checks returns the recorded checks of kind k.
func (m Metadata) Checks(k CheckKind) []SafetyCheck {
	var out []SafetyCheck
	for _, c := range m.SafetyChecks {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Metadata returns a snapshot of the session metadata.
func (s *Session) Metadata() Metadata {
	m := s.meta
	m.State = s.state.String()
	m.TotalFrames = s.Frames()
	m.TotalDuration = float64(m.TotalFrames) / s.cfg.SampleRate
	m.CoherenceScores = append([]float64(nil), s.meta.CoherenceScores...)
	m.SafetyChecks = append([]SafetyCheck(nil), s.meta.SafetyChecks...)
	m.Adaptations = append([]string(nil), s.meta.Adaptations...)
	return m
}

// SaveMetadata writes the metadata as indented JSON.
func (s *Session) SaveMetadata(path string) error {
	if s.state != StateBuilt {
		return ErrNotBuilt
	}
	data, err := json.MarshalIndent(s.Metadata(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
