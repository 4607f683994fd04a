package entrain_test

import (
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/thesyncim/entrain"
)

func ExampleParseConfig() {
	cfg, err := entrain.ParseConfig([]byte(`
intention: focus
phases:
  - duration: 120
    carrier: 220
    beat: 14
`))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s: %d phase, %.0f Hz\n", cfg.Intention, len(cfg.Phases), cfg.SampleRate)
	// Output: focus: 1 phase, 44100 Hz
}

func ExampleSession_Plan() {
	cfg := entrain.Config{
		Intention: "release",
		Phases: []entrain.Phase{
			{Name: "settle", Duration: 100, Carrier: 200, Beat: ptr(10)},
		},
	}
	s, err := entrain.NewSession(cfg, entrain.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range s.Plan() {
		l := p.Layers[0]
		fmt.Printf("%s %.0fs carrier %.2fHz beat %s\n", p.Name, p.Duration, l.Carrier, l.Beat)
	}
	// Output: settle 110s carrier 212.75Hz beat 10.00Hz
}

func ExampleSession_Build() {
	cfg := entrain.Config{
		SampleRate: 8000,
		Phases:     []entrain.Phase{{Duration: 30, Carrier: 300}},
	}
	s, err := entrain.NewSession(cfg,
		entrain.WithSeed(42),
		entrain.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Build(); err != nil {
		log.Fatal(err)
	}
	m := s.Metadata()
	fmt.Printf("%s: %d frames, %d phase\n", m.State, m.TotalFrames, m.PhasesBuilt)
	// Output: built: 240000 frames, 1 phase
}

func ptr(v float64) *float64 { return &v }
