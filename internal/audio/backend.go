package audio

// SampleSource produces interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// Player is one running voice on an output device.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// Backend opens players on an output device. The ebiten backend drives
// real hardware; the headless backend serves tests and servers without
// one.
type Backend interface {
	NewPlayer(sampleRate int, src SampleSource) (Player, error)
}
