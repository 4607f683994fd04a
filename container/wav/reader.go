package wav

import (
	"bytes"
	"fmt"
	"io"
	"math"

	gowav "github.com/go-audio/wav"
)

// Header describes a decoded WAVE stream.
type Header struct {
	SampleRate uint32
	Channels   uint16
	BitDepth   int
	Frames     int
}

// Decode reads a 16- or 32-bit PCM WAVE stream and returns its header and
// interleaved samples rescaled to floats. Decoding undoes the integer full
// scale but not Headroom, so a written 1.0 reads back as 0.95. Chunks other
// than "fmt " and "data" are skipped. The stream is buffered in memory
// before parsing.
func Decode(r io.Reader) (Header, []float32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Header{}, nil, err
	}
	d := gowav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if d.NumChans == 0 {
		return Header{}, nil, fmt.Errorf("%w: missing fmt chunk", ErrInvalidHeader)
	}
	if d.WavAudioFormat != formatPCM {
		return Header{}, nil, fmt.Errorf("%w: not integer PCM", ErrInvalidHeader)
	}
	h := Header{
		SampleRate: d.SampleRate,
		Channels:   d.NumChans,
		BitDepth:   int(d.BitDepth),
	}
	if err := CheckBitDepth(h.BitDepth); err != nil {
		return Header{}, nil, err
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	scale := float64(math.MaxInt16)
	if h.BitDepth == 32 {
		scale = math.MaxInt32
	}
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(float64(v) / scale)
	}
	h.Frames = len(samples) / int(h.Channels)
	return h, samples, nil
}
