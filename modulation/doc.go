// Package modulation shapes synthesized waveforms in time and space.
//
// # Isochronic gating
//
// Isochronic multiplies a waveform by a rectangular pulse train whose
// edges are softened by short linear ramps, producing discrete tone
// bursts at the pulse rate.
//
// # Bilateral panning
//
// PanMono and PanStereo sweep energy between the ears with equal-power
// gains, so left² + right² stays constant over the sweep. Sessions pan
// their rendered stereo pair with PanStereo; PanMono is the entry point
// for callers starting from a single channel.
//
// # Frequency modulation
//
// FM and BiorhythmFM add a slow modulation waveform to a track of
// instantaneous frequencies. The result is integrated into phase by the
// caller, so the modulation stays continuous across samples.
//
// Every stage is a method on Modulator. Each returns a new slice and
// leaves its inputs untouched. Out-of-range parameters are clamped to the
// package safety limits and reported to the Modulator's logger.
package modulation
