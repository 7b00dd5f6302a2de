package codec

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/thesyncim/gopus"
	"github.com/thesyncim/gopus/container/ogg"

	"github.com/cwbudde/xpcrash/dsp/core"
	"github.com/cwbudde/xpcrash/dsp/resample"
)

const (
	opusClockRate = 48000
	// 20 ms frames.
	opusFramesPerSecond = 50
)

var opusRates = []int{8000, 12000, 16000, 24000, 48000}

// maxHeaderRate bounds the header rate DecodeOpus will resample to.
const maxHeaderRate = 384000

// EncodeOpus writes a as Ogg Opus. a must be mono or stereo. Sample rates
// Opus does not support are resampled to 48 kHz; the original rate is kept
// in the stream header. The last frame is zero-padded; the stream's end
// position records the true length.
func EncodeOpus(w io.Writer, a *Audio, bitrate int) error {
	if err := a.Validate(); err != nil {
		return err
	}

	channels := a.NumChannels()
	if channels > 2 {
		return fmt.Errorf("opus output supports 1 or 2 channels, got %d", channels)
	}

	rate, data := a.SampleRate, a.Channels
	if !slices.Contains(opusRates, rate) {
		var err error
		if data, err = resample.ConvertPlanar(data, rate, opusClockRate); err != nil {
			return err
		}
		rate = opusClockRate
	}

	enc, err := gopus.NewEncoder(rate, channels, gopus.ApplicationAudio)
	if err != nil {
		return fmt.Errorf("opus encoder: %w", err)
	}

	if bitrate > 0 {
		if err := enc.SetBitrate(bitrate); err != nil {
			return fmt.Errorf("opus bitrate %d: %w", bitrate, err)
		}
	}

	ow, err := ogg.NewWriter(w, uint32(a.SampleRate), uint8(channels))
	if err != nil {
		return fmt.Errorf("ogg writer: %w", err)
	}

	ratio := opusClockRate / rate
	preSkip := ogg.DefaultPreSkip / ratio
	frameSize := rate / opusFramesPerSecond

	// Feed pre-skip extra frames of silence so the encoder lookahead flushes
	// the tail; decoders drop the same amount from the start.
	total := preSkip + len(data[0])
	padded := core.MakePlanar(channels, frameSize)
	pcm := make([]float32, frameSize*channels)

	for start := 0; start < total; start += frameSize {
		for ch, d := range data {
			for i := range frameSize {
				src := start + i
				if src < len(d) {
					padded[ch][i] = d[src]
				} else {
					padded[ch][i] = 0
				}
			}
		}

		if err := core.Interleave(pcm, padded, frameSize); err != nil {
			return err
		}

		packet, err := enc.EncodeFloat32(pcm)
		if err != nil {
			return fmt.Errorf("opus encode at frame %d: %w", start, err)
		}

		valid := min(frameSize, total-start)
		if err := ow.WritePacket(packet, valid*ratio); err != nil {
			return fmt.Errorf("ogg write: %w", err)
		}
	}

	return ow.Close()
}

// DecodeOpus reads an Ogg Opus stream. Output uses the original sample
// rate stored in the stream header, resampling from 48 kHz when Opus does
// not support it. Streams without a usable header rate decode at 48 kHz.
func DecodeOpus(r io.Reader) (*Audio, error) {
	or, err := ogg.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ogg reader: %w", err)
	}

	channels := int(or.Channels())
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported opus channel count: %d", channels)
	}

	origRate := int(or.SampleRate())
	rate := origRate
	if !slices.Contains(opusRates, rate) {
		rate = opusClockRate
	}
	ratio := opusClockRate / rate

	dec, err := gopus.NewDecoder(rate, channels)
	if err != nil {
		return nil, fmt.Errorf("opus decoder: %w", err)
	}

	var (
		interleaved []float32
		granule     uint64
	)

	for {
		packet, pos, err := or.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ogg read: %w", err)
		}
		if len(packet) == 0 {
			continue
		}

		pcm, err := dec.DecodeFloat32(packet)
		if err != nil {
			return nil, fmt.Errorf("opus decode: %w", err)
		}

		interleaved = append(interleaved, pcm...)
		granule = max(granule, pos)
	}

	frames := len(interleaved) / channels
	preSkip := min(int(or.PreSkip())/ratio, frames)

	end := frames
	if granule > 0 {
		end = min(end, int(granule)/ratio)
	}
	end = max(end, preSkip)

	a := &Audio{
		SampleRate: rate,
		Channels:   core.MakePlanar(channels, end-preSkip),
	}
	core.Deinterleave(a.Channels, interleaved[preSkip*channels:end*channels])

	if rate != origRate && origRate > 0 && origRate <= maxHeaderRate {
		if a.Channels, err = resample.ConvertPlanar(a.Channels, rate, origRate); err != nil {
			return nil, err
		}
		a.SampleRate = origRate
	}

	return a, nil
}
