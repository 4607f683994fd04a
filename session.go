package entrain

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thesyncim/entrain/coherence"
	"github.com/thesyncim/entrain/container/wav"
	"github.com/thesyncim/entrain/generator"
	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/modulation"
	"github.com/thesyncim/entrain/weaver"
)

// State is a stage of the session build.
type State int

// Build states. Built and Failed are terminal.
const (
	StateIdle State = iota
	StatePreparing
	StatePhaseGenerating
	StateAmbientMixing
	StateIntegrating
	StateFinalizing
	StateBuilt
	StateFailed
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StatePreparing:       "preparing",
	StatePhaseGenerating: "phase_generating",
	StateAmbientMixing:   "ambient_mixing",
	StateIntegrating:     "integrating",
	StateFinalizing:      "finalizing",
	StateBuilt:           "built",
	StateFailed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// RNG stream offsets. Phase i uses stream streamPhase+i.
const (
	streamPhase   = 1
	streamAmbient = 1 << 32
	streamBed     = 1 << 33
)

// Session renders one configured session. A Session is built once; it is
// not safe for concurrent use while Build runs and is read-only after.
type Session struct {
	cfg       Config
	base      *slog.Logger
	logger    *slog.Logger
	weaver    *weaver.Weaver
	analyzer  *coherence.Analyzer
	modulator *modulation.Modulator

	seed    uint64
	seedSet bool
	workers int

	plans             []PhasePlan
	integrationFrames int
	integrationLevel  float64

	state   State
	phase   int
	samples []float32
	meta    Metadata

	// beforeRender, when set, runs at the start of each phase render.
	beforeRender func(phase int)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used by the session and its components.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.base = l
		}
	}
}

// WithSeed fixes the random seed, overriding the configuration seed.
func WithSeed(seed uint64) Option {
	return func(s *Session) {
		s.seed = seed
		s.seedSet = true
	}
}

// WithWorkers sets how many phases are synthesized concurrently.
// Values below 1 select 1. Output does not depend on the worker count.
func WithWorkers(n int) Option {
	return func(s *Session) {
		s.workers = max(n, 1)
	}
}

// NewSession validates cfg and prepares a session for Build.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:     cfg,
		base:    slog.Default(),
		workers: 1,
		phase:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.base.With(slog.String("component", "session"))
	if !s.seedSet {
		if cfg.Seed != nil {
			s.seed = *cfg.Seed
		} else {
			s.seed = uint64(time.Now().UnixNano())
		}
	}

	in, ok := intent.Parse(cfg.Intention)
	if !ok {
		s.logger.Warn("unknown intention, using neutral", "value", cfg.Intention)
	}
	profile := cfg.NeuralProfile.Resolve(s.logger)
	s.weaver = weaver.New(in, profile, weaver.WithLogger(s.base.With(slog.String("component", "weaver"))))
	s.analyzer = coherence.New(
		coherence.WithIntention(in),
		coherence.WithLogger(s.base.With(slog.String("component", "coherence"))),
	)
	s.modulator = modulation.New(modulation.WithLogger(s.base.With(slog.String("component", "modulation"))))

	s.plans = s.planPhases()
	s.integrationFrames, s.integrationLevel = s.integrationPlan()
	s.meta = Metadata{
		ID:            uuid.NewString(),
		Seed:          s.seed,
		Intention:     in.String(),
		NeuralProfile: profile.Summary(),
		SampleRate:    cfg.SampleRate,
		Channels:      channels,
	}
	return s, nil
}

// Config returns the validated configuration with defaults applied.
func (s *Session) Config() Config { return s.cfg }

// Seed returns the session seed.
func (s *Session) Seed() uint64 { return s.seed }

// State returns the current build state.
func (s *Session) State() State { return s.state }

// PhaseIndex returns the phase being generated, or the phase that caused
// StateFailed. It is -1 otherwise.
func (s *Session) PhaseIndex() int { return s.phase }

// Samples returns the interleaved stereo buffer. The slice aliases the
// session buffer and must not be modified.
func (s *Session) Samples() []float32 { return s.samples }

// Frames returns the number of stereo frames rendered.
func (s *Session) Frames() int { return len(s.samples) / channels }

func (s *Session) setState(st State, phase int) {
	s.state = st
	s.phase = phase
	s.logger.Debug("state", "state", st.String(), "phase", phase)
}

func (s *Session) check(kind CheckKind, phase int, format string, args ...any) {
	c := SafetyCheck{Kind: kind, Phase: phase, Message: fmt.Sprintf(format, args...)}
	s.meta.SafetyChecks = append(s.meta.SafetyChecks, c)
	s.logger.Warn(c.Message, "kind", kind.String(), "phase", phase)
}

func (s *Session) newGenerator(stream uint64) *generator.Generator {
	rng := rand.New(rand.NewPCG(s.seed, stream))
	return generator.New(rng, generator.WithLogger(s.base.With(slog.String("component", "generator"))))
}

// Build renders the session. It returns ErrAlreadyBuilt when called twice
// and ErrNoAudio when no phase produced audio; individual phase failures
// are recorded as safety checks.
func (s *Session) Build() error {
	if s.state != StateIdle {
		return ErrAlreadyBuilt
	}
	start := time.Now()

	s.setState(StatePreparing, -1)
	capacity := s.reserve()
	s.samples = make([]float32, 0, capacity*channels)
	for _, p := range s.plans {
		s.meta.Adaptations = append(s.meta.Adaptations, p.Adaptations...)
	}
	s.logger.Info("session prepared", "phases", len(s.plans), "reserved_frames", capacity, "seed", s.seed)

	results := s.generatePhases()
	var lastErr error
	for i, r := range results {
		s.setState(StatePhaseGenerating, i)
		s.meta.SafetyChecks = append(s.meta.SafetyChecks, r.checks...)
		if r.err != nil {
			lastErr = r.err
			s.check(PhaseGenerationFailure, i, "phase %q skipped: %v", s.plans[i].Name, r.err)
			continue
		}
		if len(s.samples)+len(r.audio) > cap(s.samples) {
			s.check(BufferOverflow, i, "phase %q exceeds reserved buffer of %d frames", s.plans[i].Name, cap(s.samples)/channels)
		}
		s.samples = append(s.samples, r.audio...)
		s.meta.CoherenceScores = append(s.meta.CoherenceScores, r.coherence)
		s.meta.PhasesBuilt++
		s.logger.Info("phase generated", "phase", i, "name", s.plans[i].Name, "frames", len(r.audio)/channels, "coherence", r.coherence)
	}
	if s.Frames() == 0 {
		s.setState(StateFailed, len(results)-1)
		if lastErr != nil {
			return fmt.Errorf("%w: %w", ErrNoAudio, lastErr)
		}
		return ErrNoAudio
	}

	s.setState(StateAmbientMixing, -1)
	if err := s.mixAmbient(); err != nil {
		s.setState(StateFailed, -1)
		return err
	}
	if s.integrationFrames > 0 {
		s.setState(StateIntegrating, -1)
		s.appendIntegration()
	}

	s.setState(StateFinalizing, -1)
	s.finalize()
	s.setState(StateBuilt, -1)
	s.logger.Info("session built",
		"frames", s.Frames(),
		"duration", float64(s.Frames())/s.cfg.SampleRate,
		"phases_built", s.meta.PhasesBuilt,
		"elapsed", time.Since(start))
	return nil
}

// generatePhases renders every phase on the worker pool and returns the
// results in configuration order.
func (s *Session) generatePhases() []phaseResult {
	results := make([]phaseResult, len(s.plans))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range s.plans {
		g.Go(func() error {
			results[i] = s.renderPhase(s.plans[i], s.newGenerator(streamPhase+uint64(i)))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Save writes the session as a RIFF/WAVE file with the given bit depth
// (16 or 32).
func (s *Session) Save(path string, bitDepth int) (err error) {
	if err := s.canEncode(bitDepth); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := s.Encode(f, bitDepth); err != nil {
		return err
	}
	s.logger.Info("session saved", "path", path, "bit_depth", bitDepth, "frames", s.Frames())
	return nil
}

// Encode writes the session as RIFF/WAVE to w. The chunk sizes are patched
// after the samples, so w must be seekable.
func (s *Session) Encode(w io.WriteSeeker, bitDepth int) error {
	if err := s.canEncode(bitDepth); err != nil {
		return err
	}
	ww, err := wav.NewWriter(w, wav.WriterConfig{
		SampleRate: uint32(s.cfg.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
		Frames:     s.Frames(),
	})
	if err != nil {
		return err
	}
	const chunk = 4096 * channels
	for off := 0; off < len(s.samples); off += chunk {
		if err := ww.WriteSamples(s.samples[off:min(off+chunk, len(s.samples))]); err != nil {
			return err
		}
	}
	return ww.Close()
}

func (s *Session) canEncode(bitDepth int) error {
	if s.state != StateBuilt {
		return ErrNotBuilt
	}
	if s.Frames() == 0 {
		return ErrNoAudio
	}
	return wav.CheckBitDepth(bitDepth)
}
