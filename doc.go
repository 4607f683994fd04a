// Package entrain synthesizes multi-phase audio-entrainment sessions in
// pure Go.
//
// A session is a sequence of phases, each made of one or more layers. A
// layer pairs a carrier (a sine tone or a coloured noise) with a beat
// frequency: the left ear receives the carrier, the right ear the carrier
// plus the beat, and the listener perceives the difference. Phases are
// either static (a constant beat) or ramps (a beat that moves from a start
// to an end value along a transition curve).
//
// Every parameter is adapted to the listener before synthesis. The
// intention of the session (release, focus, integrate, creativity,
// healing) and the listener's neural profile (sensitivity, current state,
// experience) shift carriers, scale beats, lengthen or shorten phases and
// soften volumes, always finishing inside fixed safety limits.
//
// # Building a session
//
//	cfg, err := entrain.LoadConfig("session.yaml")
//	if err != nil {
//		return err
//	}
//	s, err := entrain.NewSession(cfg, entrain.WithSeed(42))
//	if err != nil {
//		return err
//	}
//	if err := s.Build(); err != nil {
//		return err
//	}
//	return s.Save("session.wav", 16)
//
// # Build stages
//
// Build runs the session state machine:
//   - Preparing: estimate the adapted length and reserve the buffer
//   - PhaseGenerating: synthesize each phase, check coherence, modulate
//   - AmbientMixing: add ambient layers and the pink noise bed
//   - Integrating: append the optional 528 Hz integration tone
//   - Finalizing: sanitize, normalize and guard against clipping
//
// A phase that fails is recorded as a safety check and skipped. Build fails
// only when no phase produced audio.
//
// # Determinism
//
// All randomness comes from a PCG generator seeded by the session seed.
// Each phase derives its own stream, so output is identical for any number
// of workers.
package entrain
