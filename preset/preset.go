// Package preset provides built-in session configurations and neural
// profile templates.
//
// Presets are YAML session files embedded in the binary. Each decodes
// through entrain.ParseConfig, so a preset is validated exactly like a
// user file. Profile templates are named neural profiles that can be
// applied to any configuration.
package preset

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/thesyncim/entrain"
	"github.com/thesyncim/entrain/intent"
	"github.com/thesyncim/entrain/weaver"
)

//go:embed presets/*.yaml
var files embed.FS

const profilesFile = "profiles.yaml"

var (
	// ErrUnknownPreset indicates a preset name that is not built in.
	ErrUnknownPreset = errors.New("preset: unknown preset")

	// ErrUnknownProfile indicates a profile template that is not built in.
	ErrUnknownProfile = errors.New("preset: unknown profile template")
)

var (
	profilesOnce sync.Once
	profiles     map[string]weaver.ProfileSpec
	profilesErr  error
)

// Names returns the built-in preset names in sorted order.
func Names() []string {
	entries, err := files.ReadDir("presets")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == profilesFile || path.Ext(name) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".yaml"))
	}
	slices.Sort(names)
	return names
}

// Raw returns the YAML source of a preset.
func Raw(name string) ([]byte, error) {
	if !slices.Contains(Names(), name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return files.ReadFile("presets/" + name + ".yaml")
}

// Load returns the validated configuration of a preset.
func Load(name string) (entrain.Config, error) {
	data, err := Raw(name)
	if err != nil {
		return entrain.Config{}, err
	}
	cfg, err := entrain.ParseConfig(data)
	if err != nil {
		return entrain.Config{}, fmt.Errorf("preset %s: %w", name, err)
	}
	return cfg, nil
}

// ByIntention returns the presets whose intention is in.
func ByIntention(in intent.Intention) []string {
	var out []string
	for _, name := range Names() {
		cfg, err := Load(name)
		if err != nil {
			continue
		}
		if got, _ := intent.Parse(cfg.Intention); got == in {
			out = append(out, name)
		}
	}
	return out
}

func loadProfiles() (map[string]weaver.ProfileSpec, error) {
	profilesOnce.Do(func() {
		data, err := files.ReadFile("presets/" + profilesFile)
		if err != nil {
			profilesErr = err
			return
		}
		profilesErr = yaml.Unmarshal(data, &profiles)
	})
	return profiles, profilesErr
}

// Profiles returns the profile template names in sorted order.
func Profiles() []string {
	m, err := loadProfiles()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Profile returns a profile template.
func Profile(name string) (weaver.ProfileSpec, error) {
	m, err := loadProfiles()
	if err != nil {
		return weaver.ProfileSpec{}, err
	}
	p, ok := m[name]
	if !ok {
		return weaver.ProfileSpec{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// WithProfile returns cfg with its neural profile replaced by the named
// template.
func WithProfile(cfg entrain.Config, name string) (entrain.Config, error) {
	p, err := Profile(name)
	if err != nil {
		return cfg, err
	}
	cfg.NeuralProfile = p
	return cfg, nil
}
