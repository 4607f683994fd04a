// errors.go defines public error types for the entrain package.

package entrain

import (
	"errors"
	"fmt"
)

// Public error types for session construction, building and saving.
var (
	// ErrInvalidConfig indicates a session configuration that cannot be built.
	// Returned errors are *ConfigError values wrapping ErrInvalidConfig.
	ErrInvalidConfig = errors.New("entrain: invalid configuration")

	// ErrNotBuilt indicates an operation that needs rendered audio was
	// called before Build completed.
	ErrNotBuilt = errors.New("entrain: session not built")

	// ErrAlreadyBuilt indicates Build was called more than once.
	ErrAlreadyBuilt = errors.New("entrain: session already built")

	// ErrNoAudio indicates that no phase produced audio.
	ErrNoAudio = errors.New("entrain: no audio generated")

	// ErrPhaseGeneration indicates a single phase could not be synthesized.
	// Phase failures are recorded in the metadata and the phase is skipped.
	ErrPhaseGeneration = errors.New("entrain: phase generation failed")
)

// ConfigError describes a rejected configuration field.
type ConfigError struct {
	// Field is the path of the offending field, e.g. "phases[1].layers[0].start_beat".
	Field string
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entrain: invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("entrain: invalid configuration: %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
