package effects

import "math"

const (
	compAttackMs  = 5.0
	compReleaseMs = 100.0
)

// Compressor implements dynamic range compression with an envelope
// follower per channel. When engaged it replaces the dry path entirely
// (wet 1, dry 0); the amount knob drives threshold and ratio.
type Compressor struct {
	stageMix
	threshold atomicF32 // linear amplitude
	ratio     atomicF32
	attack    float32 // coefficient
	release   float32 // coefficient
	envL      float32
	envR      float32
}

func NewCompressor(sampleRate int) *Compressor {
	sr := float64(sampleRate)
	c := &Compressor{
		attack:  float32(1.0 - math.Exp(-1.0/(compAttackMs*sr/1000.0))),
		release: float32(1.0 - math.Exp(-1.0/(compReleaseMs*sr/1000.0))),
	}
	c.stageMix.init(rampAlpha(sampleRate))
	c.apply()
	return c
}

func (c *Compressor) SetEnabled(on bool) {
	c.setEnabled(on)
	c.apply()
}

func (c *Compressor) SetAmount(n int) {
	c.setAmount(n)
	c.apply()
}

// threshold sweeps -50..-24 dB and ratio 1:1..20:1 as the knob turns up.
func (c *Compressor) apply() {
	a := float64(c.norm())
	thresholdDB := -50 + 26*a
	c.threshold.Store(float32(math.Pow(10, thresholdDB/20)))
	c.ratio.Store(float32(1 + 19*a))
	if c.Enabled() {
		c.wet.Set(1)
		c.dry.Set(0)
	} else {
		c.wet.Set(0)
		c.dry.Set(1)
	}
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	absL := float32(math.Abs(float64(l)))
	absR := float32(math.Abs(float64(r)))
	if absL > c.envL {
		c.envL += c.attack * (absL - c.envL)
	} else {
		c.envL += c.release * (absL - c.envL)
	}
	if absR > c.envR {
		c.envR += c.attack * (absR - c.envR)
	} else {
		c.envR += c.release * (absR - c.envR)
	}
	wl := l * c.computeGain(c.envL)
	wr := r * c.computeGain(c.envR)
	d, w := c.dry.next(), c.wet.next()
	return d*l + w*wl, d*r + w*wr
}

func (c *Compressor) computeGain(env float32) float32 {
	th := c.threshold.Load()
	if env <= th || th <= 0 {
		return 1.0
	}
	over := env / th
	ratio := c.ratio.Load()
	return float32(math.Pow(float64(over), float64(1.0/ratio-1)))
}

func (c *Compressor) Reset() {
	c.envL = 0
	c.envR = 0
	c.dry.reset()
	c.wet.reset()
}
