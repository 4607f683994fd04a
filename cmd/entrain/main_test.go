package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/entrain/container/wav"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	srcPreset, srcConfig, srcProfile = "", "", ""
	srcSensitivity, srcState, srcExperience, srcIntention = "", "", "", ""
	presetsProfiles, buildDryRun = false, false
	for _, c := range []string{"preset", "config"} {
		planCmd.Flags().Lookup(c).Changed = false
		buildCmd.Flags().Lookup(c).Changed = false
	}
	buildCmd.Flags().Lookup("seed").Changed = false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPresetsCommand(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)
	for _, name := range []string{"focus", "deep_release", "theta_gateway", "sleep_descent", "creativity_flow", "healing"} {
		assert.Contains(t, out, name)
	}

	out, err = run(t, "presets", "--profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "sensitive_beginner")
	assert.Contains(t, out, "sensitive/")
}

func TestPlanCommand(t *testing.T) {
	out, err := run(t, "plan", "--preset", "focus", "--profile", "sensitive_beginner")
	require.NoError(t, err)
	assert.Contains(t, out, "intention focus, profile sensitive/")
	assert.Contains(t, out, "duty 0.7")
	assert.Contains(t, out, "total ")
}

func TestPlanCommandSource(t *testing.T) {
	_, err := run(t, "plan")
	assert.Error(t, err)

	_, err = run(t, "plan", "--preset", "focus", "--config", "x.yaml")
	assert.Error(t, err)

	_, err = run(t, "plan", "--preset", "nope")
	assert.Error(t, err)
}

const shortSession = `
sample_rate: 8000
seed: 3
phases:
  - name: settle
    duration: 30
    carrier: 200
    beat: 10
  - type: ramp
    duration: 30
    start_beat: 10
    end_beat: 6
`

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(shortSession), 0o644))
	wavPath := filepath.Join(dir, "out.wav")

	out, err := run(t, "build", "--config", cfgPath, "--out", wavPath, "--bit-depth", "32", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2/2 phases")

	f, err := os.Open(wavPath)
	require.NoError(t, err)
	defer f.Close()
	h, samples, err := wav.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, h.BitDepth)
	assert.Equal(t, 480000, h.Frames)
	assert.Len(t, samples, 960000)

	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "built", meta["state"])
	assert.EqualValues(t, 3, meta["seed"])
}

func TestBuildCommandDryRun(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "out.wav")
	out, err := run(t, "build", "--preset", "focus", "--out", wavPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "PHASE")
	assert.NoFileExists(t, wavPath)
}

func TestBuildCommandBitDepth(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(shortSession), 0o644))
	wavPath := filepath.Join(dir, "out.wav")

	_, err := run(t, "build", "--config", cfgPath, "--out", wavPath, "--bit-depth", "24")
	assert.ErrorIs(t, err, wav.ErrInvalidBitDepth)
	assert.NoFileExists(t, wavPath)

	// The bit depth is rejected before the session source is even read.
	_, err = run(t, "build", "--config", filepath.Join(dir, "missing.yaml"), "--out", wavPath, "--bit-depth", "8")
	assert.ErrorIs(t, err, wav.ErrInvalidBitDepth)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}
