//go:build headless

package playback

import (
	"io"
	"sync"
)

// Player is a no-op device.
type Player struct {
	opts    Options
	started bool
	closed  bool
	mu      sync.Mutex
}

// New validates opts and returns a silent player.
func New(opts Options) (*Player, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Player{opts: opts}, nil
}

// Start records that a stream was attached. r is not read.
func (p *Player) Start(r io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.started = true

	return nil
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started && !p.closed
}

func (p *Player) Err() error { return nil }

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
