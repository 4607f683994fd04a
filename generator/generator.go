// Package generator synthesizes the raw material of a session: coloured
// noise beds and clamped carrier tones.
//
// A Generator owns its random source. Two generators created from the
// same seed produce identical output, which keeps whole sessions
// reproducible.
package generator

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/thesyncim/entrain/util"
)

// Errors returned by the generators.
var (
	// ErrNegativeLength indicates a negative sample count.
	ErrNegativeLength = errors.New("generator: negative sample count")

	// ErrInvalidDuration indicates a non-positive or non-finite duration.
	ErrInvalidDuration = errors.New("generator: invalid duration")

	// ErrInvalidSampleRate indicates a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("generator: invalid sample rate")
)

// NoisePeak is the peak level of every normalized noise output.
const NoisePeak = 0.95

// Generator produces noise and tones from an injected random source.
type Generator struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for clamp warnings.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns a Generator drawing from rng.
func New(rng *rand.Rand, opts ...Option) *Generator {
	g := &Generator{
		rng:    rng,
		logger: slog.Default().With(slog.String("component", "generator")),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSeeded returns a Generator backed by a PCG source seeded with seed.
func NewSeeded(seed uint64, opts ...Option) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), opts...)
}

// WhiteNoise returns n samples drawn uniformly from [-1, 1) with the mean
// removed and the peak scaled to NoisePeak.
func (g *Generator) WhiteNoise(n int) ([]float64, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	out := g.uniform(n)
	normalize(out, NoisePeak)
	return out, nil
}

func (g *Generator) uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 2*g.rng.Float64() - 1
	}
	return out
}

// normalize removes the mean of x and scales its peak to target. Silent
// or non-finite input is left at zero.
func normalize(x []float64, target float64) {
	if len(x) == 0 {
		return
	}
	floats.AddConst(-stat.Mean(x, nil), x)
	peak := util.Peak(x)
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		for i := range x {
			x[i] = 0
		}
		return
	}
	floats.Scale(target/peak, x)
}
