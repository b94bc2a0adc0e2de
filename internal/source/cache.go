package source

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrDecode reports that a source's bytes were absent or malformed.
	// It is isolated to that source; others remain usable.
	ErrDecode = errors.New("source: decode failed")

	// ErrNotLoaded reports that a source has no cached buffer.
	ErrNotLoaded = errors.New("source: not loaded")
)

// FetchFunc retrieves the raw container bytes for a source id.
type FetchFunc func(id string) ([]byte, error)

// DirFetcher fetches sources from dir using the well-known retrieval path
// clean-{id}.wav.
func DirFetcher(dir string) FetchFunc {
	return func(id string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, "clean-"+id+".wav"))
	}
}

// Buffer is decoded PCM: interleaved stereo float32 frames at the cache's
// sample rate. Never mutated after insertion.
type Buffer struct {
	Data       []float32
	SampleRate int
}

// Frames returns the number of stereo frames.
func (b *Buffer) Frames() int { return len(b.Data) / 2 }

// Cache loads and retains decoded buffers keyed by source id.
type Cache struct {
	sampleRate int
	fetch      FetchFunc

	mu     sync.RWMutex
	bufs   map[string]*Buffer
	closed bool
}

func NewCache(sampleRate int, fetch FetchFunc) *Cache {
	return &Cache{
		sampleRate: sampleRate,
		fetch:      fetch,
		bufs:       make(map[string]*Buffer),
	}
}

// Load fetches and decodes id into the cache. Loading an id that is
// already cached is a no-op, so repeated initialization does no duplicate
// I/O. Loading into a closed cache is a benign no-op.
func (c *Cache) Load(id string) error {
	c.mu.RLock()
	_, ok := c.bufs[id]
	closed := c.closed
	c.mu.RUnlock()
	if ok || closed {
		return nil
	}

	raw, err := c.fetch(id)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrDecode, id, err)
	}
	buf, err := decode(c.sampleRate, raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrDecode, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if _, ok := c.bufs[id]; !ok {
		c.bufs[id] = buf
	}
	return nil
}

// LoadAll loads every id in parallel. Per-source failures are logged and
// swallowed so one bad asset cannot take down the rest; only a failure of
// the required id is returned.
func (c *Cache) LoadAll(ids []string, required string) error {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			if err := c.Load(id); err != nil {
				log.Printf("stompbox: %v", err)
				if id == required {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Get returns the cached buffer for id, or ErrNotLoaded.
func (c *Cache) Get(id string) (*Buffer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bufs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotLoaded, id)
	}
	return b, nil
}

// Len returns the number of cached buffers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bufs)
}

// Close empties the cache and turns later loads into no-ops. Closing
// twice is benign.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.bufs = make(map[string]*Buffer)
}

// decode parses a WAV container into interleaved stereo float32,
// resampling to the cache rate if needed.
func decode(sampleRate int, raw []byte) (*Buffer, error) {
	s, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	pcm, err := io.ReadAll(s)
	if err != nil {
		return nil, err
	}
	frames := len(pcm) / 4 // 16-bit little-endian stereo
	if frames == 0 {
		return nil, errors.New("empty stream")
	}
	data := make([]float32, frames*2)
	for i := range data {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		data[i] = float32(v) / 32768
	}
	return &Buffer{Data: data, SampleRate: sampleRate}, nil
}
