package wav

import "errors"

// Package-level errors for WAVE encoding and decoding.
var (
	// ErrInvalidBitDepth indicates a bit depth other than 16 or 32.
	ErrInvalidBitDepth = errors.New("wav: invalid bit depth (must be 16 or 32)")

	// ErrInvalidHeader indicates a malformed RIFF/WAVE header or an
	// unsupported writer configuration.
	ErrInvalidHeader = errors.New("wav: invalid header")

	// ErrFrameCount indicates that the frames written differ from the
	// declared frame count, or that a write ended mid-frame.
	ErrFrameCount = errors.New("wav: frame count mismatch")

	// ErrClosed indicates a write after Close.
	ErrClosed = errors.New("wav: writer closed")
)
