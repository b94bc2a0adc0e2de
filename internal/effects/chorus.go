package effects

import "math"

const (
	chorusBaseMs  = 15.0
	chorusDepthMs = 3.0
)

// Chorus modulates a short delay line with a sine LFO to produce pitch
// wobble. Depth is fixed; the amount knob drives LFO rate (0.3..2.3 Hz)
// and wet level. The dry path stays at unity so bypass only zeroes wet.
type Chorus struct {
	stageMix
	rate       atomicF32 // LFO rate in Hz
	bufL, bufR []float32
	size       int
	depth      float32 // modulation depth in samples
	phase      float64
	phaseStep  float64 // radians per sample per Hz
	pos        int
}

func NewChorus(sampleRate int) *Chorus {
	base := int(chorusBaseMs * float64(sampleRate) / 1000.0)
	depth := chorusDepthMs * float64(sampleRate) / 1000.0
	size := base + int(depth) + 2
	if size < 4 {
		size = 4
	}
	c := &Chorus{
		bufL:      make([]float32, size),
		bufR:      make([]float32, size),
		size:      size,
		depth:     float32(depth),
		phaseStep: 2.0 * math.Pi / float64(sampleRate),
	}
	c.stageMix.init(rampAlpha(sampleRate))
	c.apply()
	return c
}

func (c *Chorus) SetEnabled(on bool) {
	c.setEnabled(on)
	c.apply()
}

func (c *Chorus) SetAmount(n int) {
	c.setAmount(n)
	c.apply()
}

func (c *Chorus) apply() {
	a := c.norm()
	c.rate.Store(0.3 + 2*a)
	if c.Enabled() {
		c.wet.Set(0.7 * a)
	} else {
		c.wet.Set(0)
	}
}

func (c *Chorus) Process(l, r float32) (float32, float32) {
	mod := float32(math.Sin(c.phase)) * c.depth
	c.phase += float64(c.rate.Load()) * c.phaseStep
	if c.phase > 2*math.Pi {
		c.phase -= 2 * math.Pi
	}
	c.bufL[c.pos] = l
	c.bufR[c.pos] = r

	// Read with fractional delay around the line midpoint.
	delay := float32(c.size/2) + mod
	readPos := float32(c.pos) - delay
	for readPos < 0 {
		readPos += float32(c.size)
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= c.size {
		idx2 = 0
	}
	delL := c.bufL[idx]*(1-frac) + c.bufL[idx2]*frac
	delR := c.bufR[idx]*(1-frac) + c.bufR[idx2]*frac

	c.pos++
	if c.pos >= c.size {
		c.pos = 0
	}
	d, w := c.dry.next(), c.wet.next()
	return d*l + w*delL, d*r + w*delR
}

func (c *Chorus) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.pos = 0
	c.phase = 0
	c.dry.reset()
	c.wet.reset()
}
