package stompbox

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intaudio "github.com/cbegin/stompbox-go/internal/audio"
)

// testWAV builds a 16-bit PCM stereo WAV container with a 220 Hz tone.
func testWAV(sampleRate, frames int) []byte {
	dataSize := frames * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 2)
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*4))
	binary.LittleEndian.PutUint16(out[32:], 4)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i := 0; i < frames; i++ {
		v := int16(16000 * math.Sin(2*math.Pi*220*float64(i)/float64(sampleRate)))
		binary.LittleEndian.PutUint16(out[44+i*4:], uint16(v))
		binary.LittleEndian.PutUint16(out[46+i*4:], uint16(v))
	}
	return out
}

// recordingBackend wraps the headless backend and keeps every player it
// hands out, so tests can count live voices.
type recordingBackend struct {
	mu      sync.Mutex
	players []*intaudio.HeadlessPlayer
}

func (b *recordingBackend) NewPlayer(sampleRate int, src intaudio.SampleSource) (intaudio.Player, error) {
	p, err := intaudio.HeadlessBackend{}.NewPlayer(sampleRate, src)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.players = append(b.players, p.(*intaudio.HeadlessPlayer))
	b.mu.Unlock()
	return p, nil
}

func (b *recordingBackend) live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, p := range b.players {
		if p.IsPlaying() {
			n++
		}
	}
	return n
}

func (b *recordingBackend) current() *intaudio.HeadlessPlayer {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.players {
		if p.IsPlaying() {
			return p
		}
	}
	return nil
}

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *recordingBackend) {
	t.Helper()
	backend := &recordingBackend{}
	base := []EngineOption{
		WithBackend(backend),
		WithFetcher(func(id string) ([]byte, error) {
			return testWAV(44100, 4096), nil
		}),
		WithReverbTail(0.25, 2),
	}
	e, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return e, backend
}

func TestEngineInitializeIdempotent(t *testing.T) {
	var fetches atomic.Int32
	e, _ := newTestEngine(t, WithFetcher(func(id string) ([]byte, error) {
		fetches.Add(1)
		return testWAV(44100, 256), nil
	}))
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Initialize())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Initialize())
		}()
	}
	wg.Wait()

	assert.Equal(t, StateReady, e.State())
	assert.Equal(t, int32(3), fetches.Load(), "one load per source, no duplicate I/O")
	assert.Equal(t, 3, e.CachedSources())
}

func TestEngineInitializeFailureIsRetryable(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	e, _ := newTestEngine(t, WithFetcher(func(id string) ([]byte, error) {
		if failing.Load() {
			return nil, fmt.Errorf("asset store down")
		}
		return testWAV(44100, 256), nil
	}))
	err := e.Initialize()
	require.ErrorIs(t, err, ErrInitialize)
	assert.Equal(t, StateUninitialized, e.State())

	failing.Store(false)
	require.NoError(t, e.Initialize())
	assert.Equal(t, StateReady, e.State())
}

func TestEngineInitializeIsolatesBrokenSource(t *testing.T) {
	e, _ := newTestEngine(t, WithFetcher(func(id string) ([]byte, error) {
		if id == "b" {
			return []byte("garbage"), nil
		}
		return testWAV(44100, 256), nil
	}))
	require.NoError(t, e.Initialize(), "a broken non-current source must not fail initialization")
	assert.Equal(t, 2, e.CachedSources())

	require.NoError(t, e.Play())
	err := e.SwitchSource(SourceB)
	require.ErrorIs(t, err, ErrNotLoaded)
	assert.True(t, e.Playing(), "failed switch leaves playback untouched")
	assert.Equal(t, SourceA, e.CurrentSource())
}

func TestEnginePlayStop(t *testing.T) {
	e, backend := newTestEngine(t)
	require.NoError(t, e.Play(), "play should implicitly initialize")
	assert.Equal(t, StateReady, e.State())
	assert.True(t, e.Playing())
	assert.Equal(t, 1, backend.live())

	require.NoError(t, e.Play(), "second play is a no-op")
	assert.Equal(t, 1, backend.live())

	e.Stop()
	assert.False(t, e.Playing())
	assert.Equal(t, 0, backend.live())
	e.Stop() // benign when already stopped

	require.NoError(t, e.Play())
	assert.Equal(t, 1, backend.live(), "stop/play cycle recreates the voice")
}

func TestEngineRenderProducesAudio(t *testing.T) {
	e, backend := newTestEngine(t)
	require.NoError(t, e.Play())
	buf := backend.current().Render(512)
	require.Len(t, buf, 1024)
	silent := true
	for _, s := range buf {
		if s != 0 {
			silent = false
		}
		assert.False(t, math.IsNaN(float64(s)))
	}
	assert.False(t, silent, "looping voice should render the source tone")
}

func TestEngineSwitchSourceRoundTripWhilePlaying(t *testing.T) {
	e, backend := newTestEngine(t)
	require.NoError(t, e.Play())
	require.NoError(t, e.SwitchSource(SourceB))
	require.NoError(t, e.SwitchSource(SourceA))
	assert.True(t, e.Playing())
	assert.Equal(t, SourceA, e.CurrentSource())
	assert.Equal(t, 1, backend.live(), "exactly one live voice after round trip")
}

func TestEngineSwitchSourceWhileStopped(t *testing.T) {
	e, backend := newTestEngine(t)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.SwitchSource(SourceC))
	assert.Equal(t, SourceC, e.CurrentSource())
	assert.False(t, e.Playing())
	assert.Equal(t, 0, backend.live())

	require.NoError(t, e.SwitchSource(SourceC), "same source is a no-op")
}

func TestEngineScenario(t *testing.T) {
	// Fresh engine -> initialize -> play -> drive overdrive -> switch
	// source -> cleanup.
	e, backend := newTestEngine(t)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Play())

	require.NoError(t, e.TogglePedal(StageOverdrive, true, 75))
	dry, wet, err := e.StageGains(StageOverdrive)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, wet, 1e-6)
	assert.InDelta(t, 0.625, dry, 1e-6)

	require.NoError(t, e.SwitchSource(SourceC))
	assert.True(t, e.Playing())
	assert.Equal(t, SourceC, e.CurrentSource())
	dry, wet, err = e.StageGains(StageOverdrive)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, wet, 1e-6, "switch must not disturb pedal settings")
	assert.InDelta(t, 0.625, dry, 1e-6)

	require.NoError(t, e.Cleanup())
	assert.Equal(t, StateClosed, e.State())
	assert.Equal(t, 0, backend.live(), "no live voices after cleanup")
	assert.Equal(t, 0, e.CachedSources(), "cache empty after cleanup")
}

func TestEngineDisableForcesWetZero(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Initialize())
	for _, id := range StageIDs() {
		require.NoError(t, e.TogglePedal(id, true, 90))
		require.NoError(t, e.TogglePedal(id, false, 90))
		_, wet, err := e.StageGains(id)
		require.NoError(t, err)
		assert.Zerof(t, wet, "stage %s: wet must be zero when disabled", id)
	}
}

func TestEngineRejectsInvalidParameters(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.ErrorIs(t, e.TogglePedal(StageDelay, true, 101), ErrInvalidAmount)
	assert.ErrorIs(t, e.SetAmount(StageDelay, -1, true), ErrInvalidAmount)
	assert.ErrorIs(t, e.TogglePedal("flanger", true, 50), ErrUnknownStage)
	assert.ErrorIs(t, e.SwitchSource("z"), ErrUnknownSource)
	// Rejection happens before any implicit initialization.
	assert.Equal(t, StateUninitialized, e.State())
}

func TestEngineCleanupDuringInitialize(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 3)
	e, backend := newTestEngine(t, WithFetcher(func(id string) ([]byte, error) {
		started <- struct{}{}
		<-release
		return testWAV(44100, 256), nil
	}))

	initErr := make(chan error, 1)
	go func() { initErr <- e.Initialize() }()
	<-started // initialization is now in flight

	assert.ErrorIs(t, e.SwitchSource(SourceB), ErrInitializing)
	assert.Equal(t, SourceA, e.CurrentSource())

	require.NoError(t, e.Cleanup())
	close(release)
	assert.ErrorIs(t, <-initErr, ErrClosed, "abandoned initialization reports closed")
	assert.Equal(t, StateClosed, e.State())
	assert.Equal(t, 0, e.CachedSources(), "late loads must not repopulate a closed cache")
	assert.Equal(t, 0, backend.live())
}

func TestEngineCleanupIsTerminal(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Cleanup())
	require.NoError(t, e.Cleanup(), "repeated cleanup is benign")
	assert.ErrorIs(t, e.Play(), ErrClosed)
	assert.ErrorIs(t, e.Initialize(), ErrClosed)
	assert.ErrorIs(t, e.SwitchSource(SourceB), ErrClosed)
	assert.ErrorIs(t, e.TogglePedal(StageReverb, true, 10), ErrClosed)
}

func TestEngineCleanupBeforeInitialize(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Cleanup())
	assert.Equal(t, StateClosed, e.State())
}

func TestEngineMasterVolume(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.Equal(t, 1.0, e.MasterVolume())
	e.SetMasterVolume(0.35)
	assert.Equal(t, 0.35, e.MasterVolume())
	e.SetMasterVolume(-2)
	assert.Equal(t, 0.0, e.MasterVolume(), "master volume clamps to 0")
}

func TestEngineSampleTap(t *testing.T) {
	var taps atomic.Int32
	e, backend := newTestEngine(t, WithSampleTap(func(buf []float32) {
		taps.Add(1)
	}))
	require.NoError(t, e.Play())
	backend.current().Render(64)
	assert.Equal(t, int32(1), taps.Load())
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(WithSampleRate(0))
	assert.Error(t, err)
	_, err = New(WithReverbTail(0, 2))
	assert.Error(t, err)
	_, err = New(WithInitialSource("nope"))
	assert.ErrorIs(t, err, ErrUnknownSource)
}
