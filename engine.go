// Package stompbox is a real-time guitar effects engine. A looping source
// recording is routed through a fixed chain of six pedals (compressor,
// overdrive, distortion, chorus, delay, reverb); each pedal can be toggled
// and its amount knob varied while audio plays, with click-free parameter
// changes and hot source switching.
package stompbox

import (
	"errors"
	"fmt"
	"sync"

	intaudio "github.com/cbegin/stompbox-go/internal/audio"
	intfx "github.com/cbegin/stompbox-go/internal/effects"
	intsrc "github.com/cbegin/stompbox-go/internal/source"
)

// StageID identifies one pedal in the fixed chain.
type StageID string

const (
	StageCompressor StageID = "comp"
	StageOverdrive  StageID = "od"
	StageDistortion StageID = "dist"
	StageChorus     StageID = "chorus"
	StageDelay      StageID = "delay"
	StageReverb     StageID = "reverb"
)

// StageIDs returns the chain in processing order.
func StageIDs() []StageID {
	return []StageID{StageCompressor, StageOverdrive, StageDistortion, StageChorus, StageDelay, StageReverb}
}

func validStage(id StageID) bool {
	switch id {
	case StageCompressor, StageOverdrive, StageDistortion, StageChorus, StageDelay, StageReverb:
		return true
	}
	return false
}

// SourceID identifies one of the looping source recordings.
type SourceID string

const (
	SourceA SourceID = "a"
	SourceB SourceID = "b"
	SourceC SourceID = "c"
)

// SourceIDs returns all known sources.
func SourceIDs() []SourceID {
	return []SourceID{SourceA, SourceB, SourceC}
}

func validSource(id SourceID) bool {
	switch id {
	case SourceA, SourceB, SourceC:
		return true
	}
	return false
}

// StageSetting is one pedal's user-facing state.
type StageSetting struct {
	ID      StageID
	Enabled bool
	Amount  int
}

// LifecycleState tracks the engine through its one-way lifecycle.
type LifecycleState int

const (
	StateUninitialized LifecycleState = iota
	StateInitializing
	StateReady
	StateClosed
)

func (s LifecycleState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	sampleRate int
	fetch      intsrc.FetchFunc
	backend    intaudio.Backend
	irDuration float64
	irDecay    float64
	initial    SourceID
	sampleTap  func([]float32)
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		sampleRate: 44100,
		fetch:      intsrc.DirFetcher("assets"),
		backend:    intaudio.EbitenBackend{},
		irDuration: 2.0,
		irDecay:    2.0,
		initial:    SourceA,
	}
}

// WithSampleRate sets the engine sample rate (default 44100).
func WithSampleRate(rate int) EngineOption {
	return func(cfg *engineConfig) { cfg.sampleRate = rate }
}

// WithSourceDir loads clean-{id}.wav assets from dir (default "assets").
func WithSourceDir(dir string) EngineOption {
	return func(cfg *engineConfig) { cfg.fetch = intsrc.DirFetcher(dir) }
}

// WithFetcher replaces the asset retrieval function entirely.
func WithFetcher(fetch intsrc.FetchFunc) EngineOption {
	return func(cfg *engineConfig) { cfg.fetch = fetch }
}

// WithBackend replaces the output backend. The headless backend lets the
// engine run without an audio device.
func WithBackend(b intaudio.Backend) EngineOption {
	return func(cfg *engineConfig) { cfg.backend = b }
}

// WithReverbTail sets the synthesized impulse response duration in seconds
// and its decay exponent (defaults 2.0 and 2.0).
func WithReverbTail(duration, decay float64) EngineOption {
	return func(cfg *engineConfig) {
		cfg.irDuration = duration
		cfg.irDecay = decay
	}
}

// WithInitialSource sets which source is current before any switch.
func WithInitialSource(id SourceID) EngineOption {
	return func(cfg *engineConfig) { cfg.initial = id }
}

// WithSampleTap installs a callback invoked with each rendered stereo
// buffer. The callback runs on the audio thread; keep work brief and
// non-blocking.
func WithSampleTap(tap func([]float32)) EngineOption {
	return func(cfg *engineConfig) { cfg.sampleTap = tap }
}

// Engine coordinates the signal chain, source cache and playback
// transport behind the lifecycle uninitialized -> initializing -> ready ->
// closed. All calls serialize through the engine; the render path reads
// stage parameters lock-free.
type Engine struct {
	mu       sync.Mutex
	state    LifecycleState
	initDone chan struct{}
	initErr  error

	sampleRate int
	backend    intaudio.Backend
	tap        func([]float32)
	irDuration float64
	irDecay    float64

	cache  *intsrc.Cache
	board  *intfx.Board
	stages map[StageID]intfx.Stage

	current SourceID
	playing bool
	player  intaudio.Player
	volume  float64
}

func New(opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("stompbox: sampleRate must be positive")
	}
	if cfg.irDuration <= 0 {
		return nil, errors.New("stompbox: reverb tail duration must be positive")
	}
	if !validSource(cfg.initial) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.initial)
	}
	return &Engine{
		sampleRate: cfg.sampleRate,
		backend:    cfg.backend,
		tap:        cfg.sampleTap,
		irDuration: cfg.irDuration,
		irDecay:    cfg.irDecay,
		cache:      intsrc.NewCache(cfg.sampleRate, cfg.fetch),
		current:    cfg.initial,
		volume:     1,
	}, nil
}

// renderer binds a voice to the board for the life of one playback,
// mirroring what the output device pulls.
type renderer struct {
	voice *intaudio.Voice
	board *intfx.Board
	tap   func([]float32)
}

func (r *renderer) Process(dst []float32) {
	r.voice.Process(dst)
	r.board.ProcessBuffer(dst)
	if r.tap != nil {
		r.tap(dst)
	}
}

// Initialize builds the signal chain and loads all sources in parallel.
// It is idempotent: repeated and concurrent calls produce exactly one
// chain and one load per source. On failure the engine stays
// uninitialized so the call can be retried.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	switch e.state {
	case StateClosed:
		e.mu.Unlock()
		return ErrClosed
	case StateReady:
		e.mu.Unlock()
		return nil
	case StateInitializing:
		done := e.initDone
		e.mu.Unlock()
		<-done
		e.mu.Lock()
		err := e.initErr
		e.mu.Unlock()
		return err
	}

	needBoard := e.board == nil
	e.state = StateInitializing
	e.initDone = make(chan struct{})
	done := e.initDone
	cache := e.cache
	required := string(e.current)
	e.mu.Unlock()

	// IR synthesis and convolver construction are slow; run them, and the
	// source loads, without holding the lock so State, Stop and Cleanup
	// stay responsive during initialization.
	var board *intfx.Board
	var buildErr error
	if needBoard {
		ir := intfx.Impulse(e.sampleRate, e.irDuration, e.irDecay)
		board, buildErr = intfx.NewBoard(e.sampleRate, ir)
	}
	var loadErr error
	if buildErr == nil {
		loadErr = cache.LoadAll(sourceIDStrings(), required)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateClosed {
		// Cleanup ran while we were building; abandon the rest.
		e.initErr = ErrClosed
		close(done)
		return ErrClosed
	}
	// The chain is installed at most once per engine lifetime; a failed
	// source load later must not rebuild it on retry.
	if buildErr == nil && needBoard && e.board == nil {
		board.SetMasterGain(float32(e.volume))
		e.board = board
		e.stages = map[StageID]intfx.Stage{
			StageCompressor: board.Compressor,
			StageOverdrive:  board.Overdrive,
			StageDistortion: board.Distortion,
			StageChorus:     board.Chorus,
			StageDelay:      board.Delay,
			StageReverb:     board.Reverb,
		}
	}
	switch {
	case buildErr != nil:
		e.state = StateUninitialized
		e.initErr = fmt.Errorf("%w: %v", ErrInitialize, buildErr)
	case loadErr != nil:
		e.state = StateUninitialized
		e.initErr = fmt.Errorf("%w: %v", ErrInitialize, loadErr)
	default:
		e.state = StateReady
		e.initErr = nil
	}
	close(done)
	return e.initErr
}

// ensureReady triggers an implicit Initialize for operations called
// before the engine is ready.
func (e *Engine) ensureReady() error {
	e.mu.Lock()
	st := e.state
	e.mu.Unlock()
	if st == StateReady {
		return nil
	}
	if st == StateClosed {
		return ErrClosed
	}
	return e.Initialize()
}

// Play starts the looping voice on the current source. A no-op if already
// playing. Initializes first if needed.
func (e *Engine) Play() error {
	if err := e.ensureReady(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return ErrClosed
	}
	if e.playing {
		return nil
	}
	return e.startVoiceLocked()
}

func (e *Engine) startVoiceLocked() error {
	buf, err := e.cache.Get(string(e.current))
	if err != nil {
		return err
	}
	r := &renderer{voice: intaudio.NewVoice(buf.Data), board: e.board, tap: e.tap}
	pl, err := e.backend.NewPlayer(e.sampleRate, r)
	if err != nil {
		return fmt.Errorf("stompbox: start playback: %w", err)
	}
	pl.Play()
	e.player = pl
	e.playing = true
	return nil
}

func (e *Engine) stopVoiceLocked() {
	if e.player != nil {
		_ = e.player.Close()
		e.player = nil
	}
	e.playing = false
}

// Stop destroys the voice. A no-op when already stopped. Effect tails are
// cleared so the next Play starts from silence.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	wasPlaying := e.playing
	e.stopVoiceLocked()
	if wasPlaying && e.board != nil {
		e.board.Reset()
	}
}

// SwitchSource changes the current source. While playing, the voice is
// destroyed and a new one started on the new buffer; delay and reverb
// tails carry across so the handover is seamless. Switching to a source
// that failed to decode fails fast and leaves playback untouched.
// Switches during an in-flight Initialize are rejected.
func (e *Engine) SwitchSource(id SourceID) error {
	if !validSource(id) {
		return fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	// The reject-while-initializing decision and the switch itself must
	// share a critical section, or an initialization starting between them
	// would be silently waited out instead of rejected.
	e.mu.Lock()
	for e.state != StateReady {
		switch e.state {
		case StateClosed:
			e.mu.Unlock()
			return ErrClosed
		case StateInitializing:
			e.mu.Unlock()
			return ErrInitializing
		}
		e.mu.Unlock()
		if err := e.Initialize(); err != nil {
			return err
		}
		e.mu.Lock()
	}
	defer e.mu.Unlock()
	if id == e.current {
		return nil
	}
	if _, err := e.cache.Get(string(id)); err != nil {
		return err
	}
	if !e.playing {
		e.current = id
		return nil
	}
	e.stopVoiceLocked()
	e.current = id
	return e.startVoiceLocked()
}

// TogglePedal sets a pedal's enabled state and amount in one call.
func (e *Engine) TogglePedal(id StageID, enabled bool, amount int) error {
	return e.applyStage(id, enabled, amount)
}

// SetAmount updates a pedal's amount knob. The enabled state rides along
// so a knob drag cannot race a toggle.
func (e *Engine) SetAmount(id StageID, amount int, enabled bool) error {
	return e.applyStage(id, enabled, amount)
}

func (e *Engine) applyStage(id StageID, enabled bool, amount int) error {
	if !validStage(id) {
		return fmt.Errorf("%w: %q", ErrUnknownStage, id)
	}
	if amount < 0 || amount > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if err := e.ensureReady(); err != nil {
		return err
	}
	e.mu.Lock()
	s, ok := e.stages[id]
	e.mu.Unlock()
	if !ok {
		return ErrClosed
	}
	s.SetAmount(amount)
	s.SetEnabled(enabled)
	return nil
}

// StageState reports a pedal's current enabled state and amount.
func (e *Engine) StageState(id StageID) (StageSetting, error) {
	s, err := e.stage(id)
	if err != nil {
		return StageSetting{}, err
	}
	return StageSetting{ID: id, Enabled: s.Enabled(), Amount: s.Amount()}, nil
}

// StageGains reports a pedal's effective dry and wet gain targets.
func (e *Engine) StageGains(id StageID) (dry, wet float32, err error) {
	s, err := e.stage(id)
	if err != nil {
		return 0, 0, err
	}
	dry, wet = s.DryWet()
	return dry, wet, nil
}

func (e *Engine) stage(id StageID) (intfx.Stage, error) {
	if !validStage(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, id)
	}
	if err := e.ensureReady(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.stages[id]
	if !ok {
		return nil, ErrClosed
	}
	return s, nil
}

// SetMasterVolume sets the runtime master gain scalar. 1.0 is default.
func (e *Engine) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = volume
	if e.board != nil {
		e.board.SetMasterGain(float32(volume))
	}
}

func (e *Engine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// State returns the lifecycle state.
func (e *Engine) State() LifecycleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentSource returns the source the voice is (or would be) bound to.
func (e *Engine) CurrentSource() SourceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Playing reports whether a voice is live.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// CachedSources returns how many sources decoded successfully.
func (e *Engine) CachedSources() int {
	return e.cache.Len()
}

// Cleanup stops the voice, releases the chain and cache, and closes the
// engine. Valid from any state, benign when repeated, and terminal: a
// fresh instance must be created for reuse.
func (e *Engine) Cleanup() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateClosed {
		return nil
	}
	e.stopVoiceLocked()
	if e.board != nil {
		e.board.Reset()
	}
	e.cache.Close()
	e.board = nil
	e.stages = nil
	e.state = StateClosed
	return nil
}

func sourceIDStrings() []string {
	ids := SourceIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
