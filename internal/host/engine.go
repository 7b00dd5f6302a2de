package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/xpcrash/dsp/core"
	"github.com/cwbudde/xpcrash/dsp/effects"
	"github.com/cwbudde/xpcrash/internal/logging"
)

// snapshotEvery is the number of blocks between loop snapshots.
const snapshotEvery = 8

// Engine drives a Crash effect from a Source one block at a time. It reads
// the shared Controls once per block, runs the optional Automator and
// hands the result to the effect before processing.
//
// Process, Read and Render must be called from a single goroutine (the
// audio thread). LoopSnapshot and Blocks may be called from any goroutine.
// A snapshot of the channel 0 loop is published on the first block and
// every eight blocks after that.
type Engine struct {
	cfg  core.ProcessorConfig
	fx   *effects.Crash
	ctrl *Controls
	src  Source
	auto Automator
	log  *logging.Logger

	blocks  atomic.Int64
	length  atomic.Int64
	scratch [][]float64
	view    [][]float64
	bytes   []byte
	pending []byte
	eof     bool

	snapMu     sync.Mutex
	snap       []float64
	snapFrozen bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAutomator installs an automator. It runs on the processing thread.
func WithAutomator(a Automator) EngineOption {
	return func(e *Engine) {
		e.auto = a
	}
}

// WithLogger sets the logger for render progress.
func WithLogger(l *logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine wires an effect, controls and a source. The channel counts of
// cfg, fx and src must agree.
func NewEngine(cfg core.ProcessorConfig, fx *effects.Crash, ctrl *Controls, src Source, opts ...EngineOption) (*Engine, error) {
	if fx == nil || ctrl == nil || src == nil {
		return nil, errors.New("engine needs an effect, controls and a source")
	}

	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("engine block size must be > 0: %d", cfg.BlockSize)
	}

	if fx.Channels() != cfg.Channels {
		return nil, fmt.Errorf("%w: effect has %d channels, stream has %d",
			effects.ErrChannelMismatch, fx.Channels(), cfg.Channels)
	}

	if src.Channels() != cfg.Channels {
		return nil, fmt.Errorf("%w: source has %d channels, stream has %d",
			effects.ErrChannelMismatch, src.Channels(), cfg.Channels)
	}

	if fx.SampleRate() != cfg.SampleRate {
		return nil, fmt.Errorf("engine sample rate %f does not match effect sample rate %f",
			cfg.SampleRate, fx.SampleRate())
	}

	e := &Engine{
		cfg:     cfg,
		fx:      fx,
		ctrl:    ctrl,
		src:     src,
		log:     logging.NopLogger(),
		scratch: core.MakePlanar(cfg.Channels, cfg.BlockSize),
		view:    make([][]float64, cfg.Channels),
		bytes:   make([]byte, 4*cfg.Channels*cfg.BlockSize),
		snap:    make([]float64, 0, effects.MaxCrashLength),
	}

	e.length.Store(int64(fx.Length()))

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e, nil
}

// Config returns the stream configuration.
func (e *Engine) Config() core.ProcessorConfig { return e.cfg }

// Controls returns the shared controls.
func (e *Engine) Controls() *Controls { return e.ctrl }

// Length returns the loop length applied by the most recent block. Safe to
// call while another goroutine reads from the engine.
func (e *Engine) Length() int { return int(e.length.Load()) }

// Process runs one block: controls, automation, input, effect. block must
// hold one slice per channel, each at least as long as the frames wanted.
// It returns the number of processed frames and io.EOF once the source is
// drained.
func (e *Engine) Process(block [][]float64) (int, error) {
	st := e.ctrl.State()
	idx := e.blocks.Load()

	if e.auto != nil {
		next, err := e.auto.Step(idx, st)
		if err != nil {
			return 0, fmt.Errorf("automation at block %d: %w", idx, err)
		}
		if next != st {
			e.ctrl.Apply(next)
			st = e.ctrl.State()
		}
	}

	e.fx.SetFreeze(st.Freeze)
	e.fx.SetHold(st.Hold)
	if err := e.fx.SetLength(st.Length); err != nil {
		return 0, err
	}
	e.length.Store(int64(st.Length))

	n, err := e.src.ReadBlock(block)
	if n > 0 {
		for ch := range e.view {
			e.view[ch] = block[ch][:n]
		}
		if perr := e.fx.ProcessBlock(e.view); perr != nil {
			return 0, perr
		}
		e.blocks.Add(1)
		if idx%snapshotEvery == 0 {
			e.publish()
		}
	}

	return n, err
}

// Read implements io.Reader, producing interleaved little-endian float32
// frames for an audio device.
func (e *Engine) Read(p []byte) (int, error) {
	written := 0

	for written < len(p) {
		if len(e.pending) == 0 {
			if e.eof {
				break
			}

			n, err := e.Process(e.scratch)
			if errors.Is(err, io.EOF) {
				e.eof = true
			} else if err != nil {
				return written, err
			}

			if n == 0 {
				continue
			}

			e.pending = e.encode(n)
		}

		c := copy(p[written:], e.pending)
		e.pending = e.pending[c:]
		written += c
	}

	if written == 0 && e.eof {
		return 0, io.EOF
	}

	return written, nil
}

// Render pulls blocks until the source is drained or ctx is cancelled and
// passes every processed block to sink. The block slices are reused.
func (e *Engine) Render(ctx context.Context, sink func(block [][]float64, n int) error) error {
	e.log.Debug("render started",
		"sample_rate", e.cfg.SampleRate, "block_size", e.cfg.BlockSize, "channels", e.cfg.Channels)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := e.Process(e.scratch)
		if n > 0 {
			if serr := sink(e.scratch, n); serr != nil {
				return serr
			}
		}

		if errors.Is(err, io.EOF) {
			e.log.Debug("render finished", "blocks", e.blocks.Load())
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Blocks returns the number of processed blocks.
func (e *Engine) Blocks() int64 { return e.blocks.Load() }

// LoopSnapshot copies the most recently published loop of channel 0 into
// dst in playback order and reports whether it was frozen at the time.
// Snapshots are refreshed every few blocks by the processing thread.
func (e *Engine) LoopSnapshot(dst []float64) ([]float64, bool) {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()

	dst = core.EnsureLen(dst, len(e.snap))
	copy(dst, e.snap)
	return dst, e.snapFrozen
}

// publish refreshes the loop snapshot without ever blocking the audio
// thread; a busy reader just delays the update.
func (e *Engine) publish() {
	if !e.snapMu.TryLock() {
		return
	}
	defer e.snapMu.Unlock()

	b := e.fx.Loop(0)
	e.snap = b.Snapshot(e.snap)
	e.snapFrozen = b.Frozen()
}

func (e *Engine) encode(frames int) []byte {
	channels := e.cfg.Channels
	for ch, samples := range e.scratch {
		for i, s := range samples[:frames] {
			binary.LittleEndian.PutUint32(e.bytes[4*(i*channels+ch):], math.Float32bits(float32(s)))
		}
	}

	return e.bytes[:4*frames*channels]
}
