package cmd

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/cwbudde/xpcrash/dsp/analysis"
	"github.com/cwbudde/xpcrash/dsp/core"
	"github.com/cwbudde/xpcrash/dsp/effects"
	"github.com/cwbudde/xpcrash/dsp/signal"
	"github.com/cwbudde/xpcrash/internal/codec"
	"github.com/cwbudde/xpcrash/internal/config"
	"github.com/cwbudde/xpcrash/internal/host"
)

// minAnalysisFrame keeps short loops from giving a coarse spectrum.
const minAnalysisFrame = 8192

// streamConfig returns the processing config for a stream of the given
// shape, taking the block size from c.
func streamConfig(c *config.Config, sampleRate, channels int) core.ProcessorConfig {
	return core.ApplyProcessorOptions(
		core.WithSampleRate(float64(sampleRate)),
		core.WithBlockSize(c.Audio.BlockSize),
		core.WithChannels(channels),
	)
}

// newCrash builds an effect for pc with the configured length and wrap mode.
func newCrash(c *config.Config, pc core.ProcessorConfig, length int) (*effects.Crash, error) {
	opts := []effects.CrashOption{effects.WithCrashLength(length)}
	if c.Crash.LegacyWrap {
		opts = append(opts, effects.WithCrashLegacyWrap())
	}
	return effects.NewCrash(pc.SampleRate, pc.Channels, opts...)
}

// lengthOr returns flag when it was set (> 0), the configured length otherwise.
func lengthOr(flag int, c *config.Config) int {
	if flag > 0 {
		return flag
	}
	return c.Crash.Length
}

// framesAt converts a time offset to frames. Negative durations mean "never".
func framesAt(d time.Duration, sampleRate float64) int64 {
	if d < 0 {
		return -1
	}
	return int64(d.Seconds()*sampleRate + 0.5)
}

// freezeEvents turns --freeze-at/--release-at into schedule events.
func freezeEvents(freezeAt, releaseAt time.Duration, sampleRate float64) ([]host.FreezeEvent, error) {
	var events []host.FreezeEvent

	f := framesAt(freezeAt, sampleRate)
	r := framesAt(releaseAt, sampleRate)

	if f >= 0 {
		events = append(events, host.FreezeEvent{Frame: f, Freeze: true})
	}
	if r >= 0 {
		if f >= 0 && r <= f {
			return nil, fmt.Errorf("release (%s) must come after freeze (%s)", releaseAt, freezeAt)
		}
		events = append(events, host.FreezeEvent{Frame: r, Freeze: false})
	}

	return events, nil
}

// synthSource renders a looping test signal.
func synthSource(kindName string, pc core.ProcessorConfig) (*host.SliceSource, error) {
	kind, err := signal.ParseKind(kindName)
	if err != nil {
		return nil, err
	}

	gen := signal.NewGenerator(core.WithSampleRate(pc.SampleRate))
	return host.NewGeneratorSource(gen, kind, 0.5, pc.Channels)
}

// fileSource decodes path into a source. loop repeats the material.
func fileSource(path string, loop bool) (*host.SliceSource, *codec.Audio, error) {
	a, err := codec.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	src, err := host.NewSliceSource(a.Channels, loop)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return src, a, nil
}

// newAnalyzer sizes the FFT frame to hold a full loop of loopLength
// samples. Longer loops are analyzed over their first frame only.
func newAnalyzer(sampleRate float64, loopLength int, opts ...analysis.Option) (*analysis.Analyzer, error) {
	size := max(loopLength, minAnalysisFrame)
	size = 1 << bits.Len(uint(size-1))
	return analysis.NewAnalyzer(sampleRate, size, opts...)
}

// analyzeLoop reports on channel 0 of fx.
func analyzeLoop(fx *effects.Crash) (analysis.Report, error) {
	an, err := newAnalyzer(fx.SampleRate(), fx.Length())
	if err != nil {
		return analysis.Report{}, err
	}
	return an.Analyze(fx.Loop(0).Snapshot(nil))
}
