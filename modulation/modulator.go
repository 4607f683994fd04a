package modulation

import (
	"log/slog"

	"github.com/thesyncim/entrain/safety"
)

// Modulator applies the modulation stages and reports clamped parameters
// to its logger.
type Modulator struct {
	logger *slog.Logger
}

// Option configures a Modulator.
type Option func(*Modulator)

// WithLogger sets the logger used for clamp warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Modulator) {
		if l != nil {
			m.logger = l
		}
	}
}

// New returns a Modulator.
func New(opts ...Option) *Modulator {
	m := &Modulator{logger: slog.Default().With(slog.String("component", "modulation"))}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Modulator) clamp(name string, r safety.Range, v float64) float64 {
	c := r.Clamp(v)
	if c != v {
		m.logger.Warn(name+" clamped", "kind", "parameter_out_of_range", "requested", v, "applied", c)
	}
	return c
}
