//go:build !headless

package playback

import (
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player owns the device context and a single stream.
type Player struct {
	opts   Options
	ctx    *oto.Context
	player *oto.Player
	closed bool
	mu     sync.Mutex
}

// New opens the default output device. Only one context may exist per
// process, so callers create one Player and reuse it.
func New(opts Options) (*Player, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.Channels,
		Format:       oto.FormatFloat32LE,
	}
	if opts.BufferSize > 0 {
		op.BufferSize = time.Duration(opts.BufferSize) * time.Second / time.Duration(opts.SampleRate)
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &Player{opts: opts, ctx: ctx}, nil
}

// Start begins pulling float32LE interleaved frames from r. A second call
// replaces the previous stream.
func (p *Player) Start(r io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.player != nil {
		_ = p.player.Close()
	}

	p.player = p.ctx.NewPlayer(r)
	p.player.Play()

	return nil
}

// Playing reports whether the stream is still being pulled. It turns
// false once the reader returns io.EOF and the device buffer drains.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.player != nil && p.player.IsPlaying()
}

// Err returns the last stream error, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}
	return p.player.Err()
}

// Close stops playback. The device context stays open for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.player == nil {
		return nil
	}

	err := p.player.Close()
	p.player = nil

	return err
}
