package effects

// Effector processes stereo audio sample by sample.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Stage is one pedal in the fixed chain. Every stage owns a dry gain path
// and a wet (processed) gain path that are summed to form its output.
// SetEnabled and SetAmount are safe to call from a control goroutine while
// Process runs on the render goroutine.
type Stage interface {
	Effector
	SetEnabled(bool)
	SetAmount(int)
	Enabled() bool
	Amount() int
	// DryWet returns the effective dry and wet gain targets.
	DryWet() (dry, wet float32)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampAmount(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
