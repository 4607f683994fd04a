package entrain

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thesyncim/entrain/weaver"
)

// Configuration defaults.
const (
	DefaultSampleRate          = 44100.0
	DefaultCarrier             = 200.0
	DefaultIntegrationDuration = 180.0
	DefaultAmbientFrequency    = 432.0
	DefaultAmbientLevel        = 0.1
	DefaultBilateralDepth      = 1.0
	DefaultTimeOfDay           = 0.5

	minSampleRate = 8000.0
	maxSampleRate = 192000.0
)

// Phase kinds.
const (
	PhaseStatic = "static"
	PhaseRamp   = "ramp"
)

// Carrier and ambient waveform types.
const (
	CarrierSine  = "sine"
	CarrierPink  = "pink"
	CarrierBrown = "brown"
	CarrierWhite = "white"
)

// FM shapes.
const (
	FMStandard  = "standard"
	FMBiorhythm = "biorhythm"
)

// Config describes a session. The zero value of every optional field
// selects its default.
type Config struct {
	SampleRate          float64            `yaml:"sample_rate,omitempty"`
	Intention           string             `yaml:"intention,omitempty"`
	Seed                *uint64            `yaml:"seed,omitempty"`
	NeuralProfile       weaver.ProfileSpec `yaml:"neural_profile,omitempty"`
	Phases              []Phase            `yaml:"phases"`
	AmbientLayers       []AmbientLayer     `yaml:"ambient_layers,omitempty"`
	PinkNoiseLevel      float64            `yaml:"pink_noise_level,omitempty"`
	IncludeIntegration  bool               `yaml:"include_integration,omitempty"`
	IntegrationDuration float64            `yaml:"integration_duration,omitempty"`
	Biorhythm           Biorhythm          `yaml:"biorhythm,omitempty"`
}

// Biorhythm configures the biorhythm FM shape.
type Biorhythm struct {
	CircadianSync bool `yaml:"circadian_sync,omitempty"`
	// TimeOfDay is the fraction of the day in [0, 1]; nil means midday.
	TimeOfDay *float64 `yaml:"time_of_day,omitempty"`
}

// Phase is one segment of a session. When Layers is empty a single layer
// is built from the phase-level Carrier, CarrierType, Beat, StartBeat,
// EndBeat and Harmonics fields.
type Phase struct {
	Name          string  `yaml:"name,omitempty"`
	Type          string  `yaml:"type,omitempty"`
	Duration      float64 `yaml:"duration"`
	Layers        []Layer `yaml:"layers,omitempty"`
	AnimationType string  `yaml:"animation_type,omitempty"`

	Isochronic     bool     `yaml:"isochronic,omitempty"`
	IsochronicFreq float64  `yaml:"isochronic_freq,omitempty"`
	Bilateral      bool     `yaml:"bilateral,omitempty"`
	BilateralFreq  float64  `yaml:"bilateral_freq,omitempty"`
	BilateralDepth *float64 `yaml:"bilateral_depth,omitempty"`
	// Monaural opts the phase out of the automatic deep-beat downmix.
	Monaural       bool     `yaml:"monaural,omitempty"`

	Carrier     float64   `yaml:"carrier,omitempty"`
	CarrierType string    `yaml:"carrier_type,omitempty"`
	Beat        *float64  `yaml:"beat,omitempty"`
	StartBeat   *float64  `yaml:"start_beat,omitempty"`
	EndBeat     *float64  `yaml:"end_beat,omitempty"`
	Harmonics   []float64 `yaml:"harmonics,omitempty"`
}

// Layer is one carrier/beat pair within a phase. A static layer without a
// beat renders a plain tone on both ears.
type Layer struct {
	Carrier     float64   `yaml:"carrier,omitempty"`
	CarrierType string    `yaml:"carrier_type,omitempty"`
	Beat        *float64  `yaml:"beat,omitempty"`
	StartBeat   *float64  `yaml:"start_beat,omitempty"`
	EndBeat     *float64  `yaml:"end_beat,omitempty"`
	FMDepth     float64   `yaml:"fm_depth,omitempty"`
	FMRate      float64   `yaml:"fm_rate,omitempty"`
	FMShape     string    `yaml:"fm_shape,omitempty"`
	Harmonics   []float64 `yaml:"harmonics,omitempty"`
}

// AmbientLayer is a background bed mixed under the whole session.
type AmbientLayer struct {
	Type  string   `yaml:"type,omitempty"`
	Freq  float64  `yaml:"freq,omitempty"`
	Level *float64 `yaml:"level,omitempty"`
}

// LoadConfig reads and validates a YAML session configuration.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("entrain: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML session configuration.
// Unknown fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := Config{
		SampleRate:          DefaultSampleRate,
		IntegrationDuration: DefaultIntegrationDuration,
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, &ConfigError{Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// withDefaults returns a copy of c with zero-valued optional fields set.
func (c Config) withDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.IntegrationDuration == 0 {
		c.IntegrationDuration = DefaultIntegrationDuration
	}
	return c
}

// Validate reports the first structural problem in c as a *ConfigError.
// Out-of-range numeric parameters are not errors; they are clamped to the
// safety limits during adaptation.
func (c Config) Validate() error {
	c = c.withDefaults()
	if !(c.SampleRate >= minSampleRate && c.SampleRate <= maxSampleRate) {
		return configErrorf("sample_rate", "must be in [%g, %g], got %g", minSampleRate, maxSampleRate, c.SampleRate)
	}
	if len(c.Phases) == 0 {
		return configErrorf("phases", "at least one phase is required")
	}
	for i, p := range c.Phases {
		if err := p.validate(fmt.Sprintf("phases[%d]", i)); err != nil {
			return err
		}
	}
	for i, a := range c.AmbientLayers {
		field := fmt.Sprintf("ambient_layers[%d]", i)
		if !knownWaveform(a.Type) {
			return configErrorf(field+".type", "unknown type %q", a.Type)
		}
		if a.Level != nil && !(*a.Level >= 0) {
			return configErrorf(field+".level", "must be non-negative, got %g", *a.Level)
		}
		if !(a.Freq >= 0) || math.IsInf(a.Freq, 0) {
			return configErrorf(field+".freq", "must be a non-negative frequency, got %g", a.Freq)
		}
	}
	if !(c.PinkNoiseLevel >= 0) {
		return configErrorf("pink_noise_level", "must be non-negative, got %g", c.PinkNoiseLevel)
	}
	if !(c.IntegrationDuration > 0) || math.IsInf(c.IntegrationDuration, 0) {
		return configErrorf("integration_duration", "must be positive, got %g", c.IntegrationDuration)
	}
	if tod := c.Biorhythm.TimeOfDay; tod != nil && !(*tod >= 0 && *tod <= 1) {
		return configErrorf("biorhythm.time_of_day", "must be in [0, 1], got %g", *tod)
	}
	return nil
}

func (p Phase) validate(field string) error {
	if !(p.Duration > 0) || math.IsInf(p.Duration, 0) {
		return configErrorf(field+".duration", "must be positive, got %g", p.Duration)
	}
	kind := strings.ToLower(p.Type)
	if kind != "" && kind != PhaseStatic && kind != PhaseRamp {
		return configErrorf(field+".type", "unknown phase type %q", p.Type)
	}
	if p.BilateralDepth != nil && !(*p.BilateralDepth >= 0) {
		return configErrorf(field+".bilateral_depth", "must be non-negative, got %g", *p.BilateralDepth)
	}
	for i, l := range p.layers() {
		lf := fmt.Sprintf("%s.layers[%d]", field, i)
		if len(p.Layers) == 0 {
			lf = field
		}
		if _, err := l.beat(kind == PhaseRamp, lf); err != nil {
			return err
		}
		if !knownWaveform(l.CarrierType) {
			return configErrorf(lf+".carrier_type", "unknown carrier type %q", l.CarrierType)
		}
		switch strings.ToLower(l.FMShape) {
		case "", FMStandard, FMBiorhythm:
		default:
			return configErrorf(lf+".fm_shape", "unknown fm shape %q", l.FMShape)
		}
		for j, h := range l.Harmonics {
			if !(h > 0) || math.IsInf(h, 0) {
				return configErrorf(fmt.Sprintf("%s.harmonics[%d]", lf, j), "must be positive, got %g", h)
			}
		}
	}
	return nil
}

// layers returns the phase's layers, synthesizing the default layer from
// phase-level fields when none are listed.
func (p Phase) layers() []Layer {
	if len(p.Layers) > 0 {
		return p.Layers
	}
	return []Layer{{
		Carrier:     p.Carrier,
		CarrierType: p.CarrierType,
		Beat:        p.Beat,
		StartBeat:   p.StartBeat,
		EndBeat:     p.EndBeat,
		Harmonics:   p.Harmonics,
	}}
}

func (p Phase) kind() string {
	if strings.EqualFold(p.Type, PhaseRamp) {
		return PhaseRamp
	}
	return PhaseStatic
}

// beat resolves the layer's beat fields for a static or ramp phase.
func (l Layer) beat(ramp bool, field string) (Beat, error) {
	if ramp {
		if l.Beat != nil {
			return Beat{}, configErrorf(field+".beat", "ramp layers take start_beat and end_beat")
		}
		if l.StartBeat == nil || l.EndBeat == nil {
			return Beat{}, configErrorf(field, "ramp layers need both start_beat and end_beat")
		}
		return RampBeat(*l.StartBeat, *l.EndBeat), nil
	}
	if l.StartBeat != nil || l.EndBeat != nil {
		return Beat{}, configErrorf(field, "static layers must not set start_beat or end_beat")
	}
	if l.Beat == nil {
		return Beat{}, nil
	}
	return StaticBeat(*l.Beat), nil
}

func (l Layer) carrier() float64 {
	if l.Carrier == 0 {
		return DefaultCarrier
	}
	return l.Carrier
}

func knownWaveform(s string) bool {
	switch waveform(s) {
	case CarrierSine, CarrierPink, CarrierBrown, CarrierWhite:
		return true
	}
	return false
}

// waveform normalises a carrier or ambient type; "pink_noise" and "pink"
// are the same waveform.
func waveform(s string) string {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_noise")
	if s == "" {
		return CarrierSine
	}
	return s
}
