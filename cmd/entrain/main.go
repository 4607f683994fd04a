// Command entrain renders entrainment sessions to WAV files.
//
// Usage:
//
//	entrain presets
//	entrain plan --preset focus --profile sensitive_beginner
//	entrain build --config session.yaml --out session.wav --seed 42
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thesyncim/entrain"
	"github.com/thesyncim/entrain/container/wav"
	"github.com/thesyncim/entrain/preset"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "entrain",
	Short: "Adaptive binaural and isochronic session synthesis",
	Long: `entrain renders multi-phase audio-entrainment sessions.

Sessions come from a built-in preset or a YAML file. Every carrier, beat,
duration and volume is adapted to the listener's neural profile and the
session intention before synthesis, inside fixed safety limits.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
}

// Session source flags shared by build and plan.
var (
	srcPreset      string
	srcConfig      string
	srcProfile     string
	srcSensitivity string
	srcState       string
	srcExperience  string
	srcIntention   string
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&srcPreset, "preset", "p", "", "Built-in preset name")
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "", "Session YAML file")
	cmd.Flags().StringVar(&srcProfile, "profile", "", "Neural profile template")
	cmd.Flags().StringVar(&srcSensitivity, "sensitivity", "", "Override sensitivity (standard, sensitive, resilient)")
	cmd.Flags().StringVar(&srcState, "state", "", "Override current state")
	cmd.Flags().StringVar(&srcExperience, "experience", "", "Override experience level")
	cmd.Flags().StringVar(&srcIntention, "intention", "", "Override session intention")
	cmd.MarkFlagsMutuallyExclusive("preset", "config")
	cmd.MarkFlagsOneRequired("preset", "config")
}

// loadSource resolves the session configuration from the source flags.
func loadSource() (entrain.Config, error) {
	var cfg entrain.Config
	var err error
	if srcPreset != "" {
		cfg, err = preset.Load(srcPreset)
	} else {
		cfg, err = entrain.LoadConfig(srcConfig)
	}
	if err != nil {
		return cfg, err
	}
	if srcProfile != "" {
		if cfg, err = preset.WithProfile(cfg, srcProfile); err != nil {
			return cfg, err
		}
	}
	if srcSensitivity != "" {
		cfg.NeuralProfile.Sensitivity = srcSensitivity
	}
	if srcState != "" {
		cfg.NeuralProfile.CurrentState = srcState
	}
	if srcExperience != "" {
		cfg.NeuralProfile.Experience = srcExperience
	}
	if srcIntention != "" {
		cfg.Intention = srcIntention
	}
	return cfg, nil
}

var presetsProfiles bool

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if presetsProfiles {
			for _, name := range preset.Profiles() {
				p, err := preset.Profile(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-24s %s/%s/%s\n", name, p.Sensitivity, p.CurrentState, p.Experience)
			}
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tINTENTION\tPHASES\tDURATION")
		for _, name := range preset.Names() {
			cfg, err := preset.Load(name)
			if err != nil {
				return err
			}
			var total float64
			for _, p := range cfg.Phases {
				total += p.Duration
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.0fs\n", name, cfg.Intention, len(cfg.Phases), total)
		}
		return tw.Flush()
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the adapted session plan without rendering",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSource()
		if err != nil {
			return err
		}
		s, err := entrain.NewSession(cfg)
		if err != nil {
			return err
		}
		return printPlan(cmd.OutOrStdout(), s)
	},
}

func printPlan(w io.Writer, s *entrain.Session) error {
	m := s.Metadata()
	fmt.Fprintf(w, "intention %s, profile %s/%s/%s, seed %d\n",
		m.Intention, m.NeuralProfile.Sensitivity, m.NeuralProfile.State, m.NeuralProfile.Experience, m.Seed)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tKIND\tDURATION\tLAYERS\tMODULATION")
	var total float64
	for _, p := range s.Plan() {
		total += p.Duration
		layers := make([]string, len(p.Layers))
		for i, l := range p.Layers {
			layers[i] = fmt.Sprintf("%s %.1fHz beat %s", l.Waveform, l.Carrier, l.Beat)
		}
		var mods []string
		if p.Kind == entrain.PhaseRamp {
			mods = append(mods, p.Curve.String())
		}
		if p.IsochronicFreq > 0 {
			mods = append(mods, fmt.Sprintf("isochronic %.1fHz duty %.1f", p.IsochronicFreq, p.DutyCycle))
		}
		if p.BilateralFreq > 0 {
			mods = append(mods, fmt.Sprintf("bilateral %.2fHz", p.BilateralFreq))
		}
		if p.Monaural {
			mods = append(mods, "monaural")
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1fs\t%s\t%s\n", p.Name, p.Kind, p.Duration, strings.Join(layers, "; "), strings.Join(mods, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "total %.1fs\n", total)
	return err
}

var (
	buildOut      string
	buildBitDepth int
	buildSeed     uint64
	buildWorkers  int
	buildMetadata bool
	buildDryRun   bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render a session to a WAV file",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return wav.CheckBitDepth(buildBitDepth)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSource()
		if err != nil {
			return err
		}
		opts := []entrain.Option{entrain.WithWorkers(buildWorkers)}
		if cmd.Flags().Changed("seed") {
			opts = append(opts, entrain.WithSeed(buildSeed))
		}
		s, err := entrain.NewSession(cfg, opts...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if buildDryRun {
			return printPlan(out, s)
		}
		if err := s.Build(); err != nil {
			return err
		}
		if err := s.Save(buildOut, buildBitDepth); err != nil {
			return err
		}
		m := s.Metadata()
		fmt.Fprintf(out, "wrote %s: %.1fs, %d/%d phases, %d safety checks\n",
			buildOut, m.TotalDuration, m.PhasesBuilt, len(cfg.Phases), len(m.SafetyChecks))
		if buildMetadata {
			path := strings.TrimSuffix(buildOut, filepath.Ext(buildOut)) + ".json"
			if err := s.SaveMetadata(path); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	presetsCmd.Flags().BoolVar(&presetsProfiles, "profiles", false, "List neural profile templates instead")
	rootCmd.AddCommand(presetsCmd)

	addSourceFlags(planCmd)
	rootCmd.AddCommand(planCmd)

	addSourceFlags(buildCmd)
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "session.wav", "Output WAV file")
	buildCmd.Flags().IntVar(&buildBitDepth, "bit-depth", 16, "PCM bit depth (16 or 32)")
	buildCmd.Flags().Uint64Var(&buildSeed, "seed", 0, "Random seed (default: config seed or time)")
	buildCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 1, "Phases rendered concurrently")
	buildCmd.Flags().BoolVar(&buildMetadata, "metadata", true, "Write a JSON metadata sidecar")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Print the adapted plan and exit")
	rootCmd.AddCommand(buildCmd)
}
