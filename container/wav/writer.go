// Package wav writes and reads RIFF/WAVE files holding integer PCM.
//
// The container itself is handled by github.com/go-audio/wav. This package
// adapts session floats to it: samples are scaled by full scale times
// Headroom, clipped and rounded to even before they are stored, so a
// full-scale input leaves 5% of the integer range unused.
package wav

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// Headroom is the fraction of integer full scale a sample of 1.0 maps to.
const Headroom = 0.95

const (
	headerSize    = 44
	formatPCM     = 1
	maxDataLength = math.MaxUint32 - headerSize + 8
)

// WriterConfig configures a Writer.
type WriterConfig struct {
	// SampleRate is the sample rate in Hz.
	SampleRate uint32

	// Channels is the interleaved channel count (1-255).
	Channels uint16

	// BitDepth is 16 or 32.
	BitDepth int

	// Frames is the number of frames that will be written. Close fails
	// unless exactly this many arrive.
	Frames int
}

// Writer streams interleaved float samples into a WAVE file.
type Writer struct {
	enc     *gowav.Encoder
	config  WriterConfig
	buf     audio.IntBuffer
	written int // samples written
	closed  bool
}

// CheckBitDepth returns ErrInvalidBitDepth unless bits is 16 or 32.
func CheckBitDepth(bits int) error {
	if bits != 16 && bits != 32 {
		return ErrInvalidBitDepth
	}
	return nil
}

// NewWriter validates config and writes the RIFF/WAVE header to w. The
// chunk sizes are patched in place by Close, so w must be seekable.
func NewWriter(w io.WriteSeeker, config WriterConfig) (*Writer, error) {
	if err := CheckBitDepth(config.BitDepth); err != nil {
		return nil, err
	}
	if config.Channels == 0 || config.Channels > 255 || config.SampleRate == 0 || config.Frames < 0 {
		return nil, ErrInvalidHeader
	}
	dataLen := uint64(config.Frames) * uint64(config.Channels) * uint64(config.BitDepth/8)
	if dataLen > maxDataLength {
		return nil, ErrInvalidHeader
	}

	ww := &Writer{
		enc:    gowav.NewEncoder(w, int(config.SampleRate), config.BitDepth, int(config.Channels), formatPCM),
		config: config,
		buf: audio.IntBuffer{
			Format:         &audio.Format{NumChannels: int(config.Channels), SampleRate: int(config.SampleRate)},
			SourceBitDepth: config.BitDepth,
		},
	}
	// An empty buffer makes the encoder emit the fmt and data headers.
	if err := ww.enc.Write(&ww.buf); err != nil {
		return nil, err
	}
	return ww, nil
}

// WriteSamples converts and writes interleaved samples. Each call must
// carry whole frames and the total must not exceed the declared count.
func (w *Writer) WriteSamples(samples []float32) error {
	if w.closed {
		return ErrClosed
	}
	limit := w.config.Frames * int(w.config.Channels)
	if w.written+len(samples) > limit {
		return ErrFrameCount
	}
	if len(samples)%int(w.config.Channels) != 0 {
		return ErrFrameCount
	}
	w.buf.Data = resize(w.buf.Data, len(samples))
	switch w.config.BitDepth {
	case 16:
		for i, s := range samples {
			w.buf.Data[i] = int(float32ToInt16(s))
		}
	case 32:
		for i, s := range samples {
			w.buf.Data[i] = int(float32ToInt32(s))
		}
	}
	if err := w.enc.Write(&w.buf); err != nil {
		return err
	}
	w.written += len(samples)
	return nil
}

// Close patches the RIFF and data sizes and checks that every declared
// frame was written. The underlying writer is left open.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.enc.Close(); err != nil {
		return err
	}
	if w.written != w.config.Frames*int(w.config.Channels) {
		return ErrFrameCount
	}
	return nil
}

func resize(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

func float32ToInt16(sample float32) int16 {
	scaled := float64(sample) * math.MaxInt16 * Headroom
	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}
	if scaled < -math.MaxInt16 {
		return -math.MaxInt16
	}
	if math.IsNaN(scaled) {
		return 0
	}
	return int16(math.RoundToEven(scaled))
}

func float32ToInt32(sample float32) int32 {
	scaled := float64(sample) * math.MaxInt32 * Headroom
	if scaled > math.MaxInt32 {
		return math.MaxInt32
	}
	if scaled < -math.MaxInt32 {
		return -math.MaxInt32
	}
	if math.IsNaN(scaled) {
		return 0
	}
	return int32(math.RoundToEven(scaled))
}
