package codec

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/xpcrash/internal/testutil"
)

func stereoSine(sampleRate, frames int) *Audio {
	return &Audio{
		SampleRate: sampleRate,
		Channels: [][]float64{
			testutil.DeterministicSine(440, float64(sampleRate), 0.5, frames),
			testutil.DeterministicSine(660, float64(sampleRate), 0.25, frames),
		},
	}
}

func rms(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.wav":     FormatWAV,
		"b.WAV":     FormatWAV,
		"c.opus":    FormatOpus,
		"dir/d.ogg": FormatOpus,
		"e.mp3":     FormatUnknown,
		"no-ext":    FormatUnknown,
	}

	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestAudioValidate(t *testing.T) {
	bad := []*Audio{
		{SampleRate: 0, Channels: [][]float64{{0}}},
		{SampleRate: 48000},
		{SampleRate: 48000, Channels: [][]float64{{0, 1}, {0}}},
	}
	for i, a := range bad {
		if err := a.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}

	if err := stereoSine(48000, 10).Validate(); err != nil {
		t.Errorf("valid audio: %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadFile(filepath.Join(dir, "x.mp3")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ReadFile error = %v, want ErrUnsupportedFormat", err)
	}

	err := WriteFile(filepath.Join(dir, "x.flac"), stereoSine(48000, 10), Options{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("WriteFile error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sine.wav")
	in := stereoSine(44100, 4410)

	if err := WriteFile(path, in, Options{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if out.SampleRate != 44100 || out.NumChannels() != 2 || out.Frames() != 4410 {
		t.Fatalf("got rate=%d channels=%d frames=%d", out.SampleRate, out.NumChannels(), out.Frames())
	}

	// 16-bit quantization.
	for ch := range in.Channels {
		testutil.RequireSliceNearlyEqual(t, out.Channels[ch], in.Channels[ch], 1.0/32767)
	}
}

func TestWAVClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	in := &Audio{SampleRate: 8000, Channels: [][]float64{{2, -2, 0.5}}}

	if err := WriteFile(path, in, Options{}); err != nil {
		t.Fatal(err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, out.Channels[0], []float64{32767.0 / 32768, -32767.0 / 32768, 16384.0 / 32768}, 1e-9)
}

func TestReadInvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Error("ReadFile(junk) expected error")
	}
}

func TestWriteFileRemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.opus")

	surround := &Audio{SampleRate: 48000, Channels: [][]float64{{0}, {0}, {0}}}
	if err := WriteFile(path, surround, Options{}); err == nil {
		t.Fatal("expected error")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestOpusRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sine.opus")
	in := stereoSine(48000, 9000)

	if err := WriteFile(path, in, Options{Bitrate: 96000}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if out.SampleRate != 48000 || out.NumChannels() != 2 {
		t.Fatalf("rate=%d channels=%d", out.SampleRate, out.NumChannels())
	}

	if out.Frames() != in.Frames() {
		t.Fatalf("frames = %d, want %d", out.Frames(), in.Frames())
	}

	// Lossy: compare levels, not samples.
	for ch := range in.Channels {
		want := rms(in.Channels[ch])
		got := rms(out.Channels[ch])
		if math.Abs(got-want) > 0.5*want {
			t.Errorf("channel %d rms = %v, want about %v", ch, got, want)
		}
	}
}

func TestOpusMonoLowRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.ogg")
	in := &Audio{SampleRate: 16000, Channels: [][]float64{testutil.DeterministicSine(300, 16000, 0.5, 1234)}}

	if err := WriteFile(path, in, Options{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if out.SampleRate != 16000 || out.NumChannels() != 1 || out.Frames() != 1234 {
		t.Fatalf("rate=%d channels=%d frames=%d", out.SampleRate, out.NumChannels(), out.Frames())
	}
}

func TestOpusResamplesOtherRates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cd.opus")
	in := stereoSine(44100, 8820)

	if err := WriteFile(path, in, Options{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if out.SampleRate != 44100 || out.NumChannels() != 2 {
		t.Fatalf("rate=%d channels=%d", out.SampleRate, out.NumChannels())
	}
	if d := out.Frames() - in.Frames(); d < 0 || d > 1 {
		t.Fatalf("frames = %d, want %d", out.Frames(), in.Frames())
	}

	for ch := range in.Channels {
		want := rms(in.Channels[ch])
		got := rms(out.Channels[ch][:in.Frames()])
		if math.Abs(got-want) > 0.5*want {
			t.Errorf("channel %d rms = %v, want about %v", ch, got, want)
		}
	}
}

func TestOpusRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()

	surround := &Audio{SampleRate: 48000, Channels: [][]float64{{0}, {0}, {0}}}
	if err := WriteFile(filepath.Join(dir, "a.opus"), surround, Options{}); err == nil {
		t.Error("3 channels expected error")
	}

	if err := WriteFile(filepath.Join(dir, "b.opus"), stereoSine(48000, 960), Options{Bitrate: 10}); err == nil {
		t.Error("invalid bitrate expected error")
	}
}
