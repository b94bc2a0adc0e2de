package effects

import (
	"math"
	"math/rand"
)

// ImpulseResponse is a synthetic stereo plate-style reverb impulse: each
// channel is uniform noise shaped by a (1 - i/n)^decay envelope. Channels
// are drawn independently so the tail decorrelates left from right.
type ImpulseResponse struct {
	L, R []float32
}

// Impulse synthesizes an impulse response of sampleRate*duration samples
// per channel. decay is the envelope exponent; values below zero are
// treated as zero (flat noise).
func Impulse(sampleRate int, duration, decay float64) ImpulseResponse {
	n := int(float64(sampleRate) * duration)
	if n < 1 {
		n = 1
	}
	if decay < 0 {
		decay = 0
	}
	ir := ImpulseResponse{
		L: make([]float32, n),
		R: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		env := math.Pow(1-float64(i)/float64(n), decay)
		ir.L[i] = float32((rand.Float64()*2 - 1) * env)
		ir.R[i] = float32((rand.Float64()*2 - 1) * env)
	}
	return ir
}
