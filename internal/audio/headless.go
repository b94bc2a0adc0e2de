package audio

import "sync"

// HeadlessBackend satisfies Backend without an output device. Tests and
// server-side use pump the source explicitly through Render.
type HeadlessBackend struct{}

func (HeadlessBackend) NewPlayer(sampleRate int, src SampleSource) (Player, error) {
	return &HeadlessPlayer{src: src}, nil
}

type HeadlessPlayer struct {
	mu      sync.Mutex
	src     SampleSource
	playing bool
	closed  bool
}

func (p *HeadlessPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.playing = true
	}
}

func (p *HeadlessPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *HeadlessPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *HeadlessPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.closed = true
	return nil
}

// Render stands in for the device pull loop: it draws frames stereo
// frames from the source. Returns nil if the player is not playing.
func (p *HeadlessPlayer) Render(frames int) []float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.closed {
		return nil
	}
	buf := make([]float32, frames*2)
	p.src.Process(buf)
	return buf
}
