package codec

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/xpcrash/dsp/dither"
)

// DecodeWAV reads a PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("invalid WAV channel count: %d", channels)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}

	frames := len(buf.Data) / channels
	a := &Audio{
		SampleRate: buf.Format.SampleRate,
		Channels:   make([][]float64, channels),
	}
	for ch := range a.Channels {
		a.Channels[ch] = make([]float64, frames)
	}

	// 8-bit WAV is unsigned.
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}
	scale := 1 / math.Pow(2, float64(bitDepth-1))

	for i := range frames {
		for ch := range channels {
			a.Channels[ch][i] = (float64(buf.Data[i*channels+ch]) - offset) * scale
		}
	}

	return a, nil
}

// EncodeWAV writes a as 16-bit PCM WAV with the given dither. Samples are
// clipped to [-1, 1].
func EncodeWAV(w io.WriteSeeker, a *Audio, d dither.Type) error {
	if err := a.Validate(); err != nil {
		return err
	}

	channels := a.NumChannels()
	frames := a.Frames()

	quantizers := make([]*dither.Quantizer, channels)
	for ch := range quantizers {
		q, err := dither.NewQuantizer(dither.WithBitDepth(16), dither.WithType(d))
		if err != nil {
			return err
		}
		quantizers[ch] = q
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  a.SampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}

	for i := range frames {
		for ch, x := range a.Channels {
			buf.Data[i*channels+ch] = quantizers[ch].Quantize(x[i])
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, 16, channels, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}

	return enc.Close()
}
