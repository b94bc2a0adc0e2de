package effects

import (
	"math"
	"sync/atomic"
)

// CurveLen is the length of a waveshaping transfer table.
const CurveLen = 44100

// Curve is a transfer table mapping input amplitude x in [-1,1] to output
// amplitude. Tables are odd-symmetric and monotonic.
type Curve []float32

// SoftCurve builds a gentle-knee saturation table for the overdrive stage.
// intensity 0..1 controls how hard the curve leans into the asymptote.
func SoftCurve(intensity float64) Curve {
	k := 10 * clampUnit(intensity)
	const deg = math.Pi / 180
	c := make(Curve, CurveLen)
	for i := range c {
		x := 2*float64(i)/float64(CurveLen-1) - 1
		c[i] = float32((3 + k) * x * 20 * deg / (math.Pi + k*math.Abs(x)))
	}
	return c
}

// HardCurve builds a sharp-knee clipping table for the distortion stage.
// Higher intensity reaches full clipping faster.
func HardCurve(intensity float64) Curve {
	k := 50*clampUnit(intensity) + 1
	c := make(Curve, CurveLen)
	for i := range c {
		x := 2*float64(i)/float64(CurveLen-1) - 1
		c[i] = float32((1 + k) * x / (1 + k*math.Abs(x)))
	}
	return c
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// waveshaper applies a transfer table with linear interpolation. The table
// is replaced whole through an atomic pointer, so regeneration on the
// control goroutine never tears a render in progress.
type waveshaper struct {
	curve atomic.Pointer[Curve]
}

func (w *waveshaper) set(c Curve) {
	w.curve.Store(&c)
}

func (w *waveshaper) apply(x float32) float32 {
	cp := w.curve.Load()
	if cp == nil {
		return x
	}
	c := *cp
	pos := (clamp(x, -1, 1) + 1) / 2 * float32(len(c)-1)
	i := int(pos)
	if i >= len(c)-1 {
		return c[len(c)-1]
	}
	f := pos - float32(i)
	return c[i]*(1-f) + c[i+1]*f
}
