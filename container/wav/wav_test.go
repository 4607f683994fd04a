package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// tempFile returns a seekable scratch file removed with the test.
func tempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func contents(t *testing.T, f *os.File) []byte {
	t.Helper()
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	b, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return b
}

// TestNewWriter_Header tests the canonical 44-byte header.
func TestNewWriter_Header(t *testing.T) {
	f := tempFile(t)
	w, err := NewWriter(f, WriterConfig{SampleRate: 44100, Channels: 2, BitDepth: 16, Frames: 10})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if got := len(contents(t, f)); got != headerSize {
		t.Fatalf("header length = %d, want %d", got, headerSize)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if err := w.WriteSamples(make([]float32, 20)); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	h := contents(t, f)
	if len(h) != headerSize+40 {
		t.Fatalf("file length = %d, want %d", len(h), headerSize+40)
	}
	if string(h[0:4]) != "RIFF" || string(h[8:12]) != "WAVE" || string(h[36:40]) != "data" {
		t.Fatalf("bad chunk ids: %q", h)
	}
	if got := binary.LittleEndian.Uint32(h[40:44]); got != 40 {
		t.Errorf("data length = %d, want 40", got)
	}
	if got := binary.LittleEndian.Uint32(h[4:8]); got != 76 {
		t.Errorf("riff length = %d, want 76", got)
	}
	if got := binary.LittleEndian.Uint32(h[28:32]); got != 44100*4 {
		t.Errorf("byte rate = %d, want %d", got, 44100*4)
	}
}

// TestNewWriter_InvalidConfig tests config validation.
func TestNewWriter_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  WriterConfig
		want error
	}{
		{"bit depth 24", WriterConfig{SampleRate: 44100, Channels: 2, BitDepth: 24}, ErrInvalidBitDepth},
		{"bit depth 0", WriterConfig{SampleRate: 44100, Channels: 2}, ErrInvalidBitDepth},
		{"no channels", WriterConfig{SampleRate: 44100, BitDepth: 16}, ErrInvalidHeader},
		{"no rate", WriterConfig{Channels: 2, BitDepth: 16}, ErrInvalidHeader},
		{"negative frames", WriterConfig{SampleRate: 44100, Channels: 2, BitDepth: 16, Frames: -1}, ErrInvalidHeader},
		{"too long", WriterConfig{SampleRate: 44100, Channels: 2, BitDepth: 32, Frames: math.MaxUint32 / 4}, ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tempFile(t)
			if _, err := NewWriter(f, tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewWriter err = %v, want %v", err, tt.want)
			}
			if n := len(contents(t, f)); n != 0 {
				t.Errorf("wrote %d bytes on failure", n)
			}
		})
	}
}

// TestRoundTrip tests that decoded samples match within quantization.
func TestRoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, -1, 0.25, -0.125, 0.999}
	for _, bits := range []int{16, 32} {
		f := tempFile(t)
		w, err := NewWriter(f, WriterConfig{SampleRate: 48000, Channels: 2, BitDepth: bits, Frames: len(in) / 2})
		if err != nil {
			t.Fatalf("NewWriter(%d) failed: %v", bits, err)
		}
		if err := w.WriteSamples(in[:3]); !errors.Is(err, ErrFrameCount) {
			t.Fatalf("partial frame err = %v, want ErrFrameCount", err)
		}
		if err := w.WriteSamples(in[:4]); err != nil {
			t.Fatalf("WriteSamples failed: %v", err)
		}
		if err := w.WriteSamples(in[4:]); err != nil {
			t.Fatalf("WriteSamples failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		h, out, err := Decode(bytes.NewReader(contents(t, f)))
		if err != nil {
			t.Fatalf("Decode(%d) failed: %v", bits, err)
		}
		if h.SampleRate != 48000 || h.Channels != 2 || h.BitDepth != bits || h.Frames != len(in)/2 {
			t.Errorf("header = %+v", h)
		}
		tol := 1.0 / 32767
		if bits == 32 {
			tol = 1e-6
		}
		for i := range in {
			want := float64(in[i]) * Headroom
			if d := math.Abs(float64(out[i]) - want); d > tol {
				t.Errorf("bits=%d sample %d = %v, want %v", bits, i, out[i], want)
			}
		}
	}
}

// TestConversionClips tests clipping at full scale.
func TestConversionClips(t *testing.T) {
	if got := float32ToInt16(2); got != math.MaxInt16 {
		t.Errorf("float32ToInt16(2) = %d", got)
	}
	if got := float32ToInt16(-2); got != -math.MaxInt16 {
		t.Errorf("float32ToInt16(-2) = %d", got)
	}
	if got := float32ToInt32(5); got != math.MaxInt32 {
		t.Errorf("float32ToInt32(5) = %d", got)
	}
	if got := float32ToInt16(float32(math.NaN())); got != 0 {
		t.Errorf("float32ToInt16(NaN) = %d", got)
	}
	if got := float32ToInt16(1); got != int16(math.RoundToEven(32767*0.95)) {
		t.Errorf("float32ToInt16(1) = %d", got)
	}
}

// TestFrameCount tests declared frame enforcement.
func TestFrameCount(t *testing.T) {
	w, err := NewWriter(tempFile(t), WriterConfig{SampleRate: 8000, Channels: 1, BitDepth: 16, Frames: 2})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.WriteSamples([]float32{0, 0, 0}); !errors.Is(err, ErrFrameCount) {
		t.Errorf("overlong write err = %v", err)
	}
	if err := w.WriteSamples([]float32{0}); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrFrameCount) {
		t.Errorf("short Close err = %v", err)
	}
	if err := w.WriteSamples([]float32{0}); !errors.Is(err, ErrClosed) {
		t.Errorf("write after close err = %v", err)
	}
}

// TestDecode_SkipsUnknownChunks tests that a chunk ahead of "fmt " is skipped.
func TestDecode_SkipsUnknownChunks(t *testing.T) {
	var body bytes.Buffer
	body.WriteString("WAVE")
	body.WriteString("JUNK")
	binary.Write(&body, binary.LittleEndian, uint32(4))
	body.Write([]byte{1, 2, 3, 4})
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:], formatPCM)
	binary.LittleEndian.PutUint16(fmtChunk[2:], 1)
	binary.LittleEndian.PutUint32(fmtChunk[4:], 8000)
	binary.LittleEndian.PutUint32(fmtChunk[8:], 16000)
	binary.LittleEndian.PutUint16(fmtChunk[12:], 2)
	binary.LittleEndian.PutUint16(fmtChunk[14:], 16)
	body.WriteString("fmt ")
	binary.Write(&body, binary.LittleEndian, uint32(16))
	body.Write(fmtChunk)
	body.WriteString("data")
	binary.Write(&body, binary.LittleEndian, uint32(4))
	binary.Write(&body, binary.LittleEndian, int16(math.MaxInt16))
	binary.Write(&body, binary.LittleEndian, int16(0))

	var file bytes.Buffer
	file.WriteString("RIFF")
	binary.Write(&file, binary.LittleEndian, uint32(body.Len()))
	file.Write(body.Bytes())

	h, s, err := Decode(&file)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if h.Frames != 2 || len(s) != 2 || s[0] != 1 || s[1] != 0 {
		t.Errorf("got header %+v samples %v", h, s)
	}
}

// TestDecode_Invalid tests malformed input.
func TestDecode_Invalid(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("RIFX\x00\x00\x00\x00WAVE"),
		[]byte("RIFF\x00\x00\x00\x00WAVE"),
	} {
		if _, _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("Decode(%q) err = %v, want ErrInvalidHeader", data, err)
		}
	}
}
