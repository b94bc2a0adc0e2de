package effects

import (
	"math"
	"sync/atomic"
)

// rampMs is the smoothing time constant for audible gain changes. Gains move
// toward their target with a one-pole ramp so slider moves stay click-free.
const rampMs = 2.0

func rampAlpha(sampleRate int) float32 {
	return float32(1.0 - math.Exp(-1000.0/(rampMs*float64(sampleRate))))
}

// param is a gain scalar written by the control goroutine and read by the
// render goroutine. The target is stored as a float32 bit pattern in an
// atomic.Uint32 for lock-free access; the render side smooths toward it.
type param struct {
	target  atomic.Uint32
	alpha   float32
	current float32
}

func (p *param) init(v, alpha float32) {
	p.target.Store(math.Float32bits(v))
	p.alpha = alpha
	p.current = v
}

// Set updates the target. Safe from any goroutine.
func (p *param) Set(v float32) {
	p.target.Store(math.Float32bits(v))
}

// Target returns the most recently set value.
func (p *param) Target() float32 {
	return math.Float32frombits(p.target.Load())
}

// next advances the ramp by one sample and returns the smoothed value.
// Render goroutine only.
func (p *param) next() float32 {
	t := math.Float32frombits(p.target.Load())
	d := t - p.current
	if d < 1e-6 && d > -1e-6 {
		p.current = t
		return t
	}
	p.current += p.alpha * d
	return p.current
}

func (p *param) reset() {
	p.current = math.Float32frombits(p.target.Load())
}

// atomicF32 is a plain lock-free float32 for non-gain parameters
// (thresholds, rates, delay times) that need no ramping.
type atomicF32 struct {
	bits atomic.Uint32
}

func (a *atomicF32) Store(v float32) { a.bits.Store(math.Float32bits(v)) }
func (a *atomicF32) Load() float32   { return math.Float32frombits(a.bits.Load()) }
