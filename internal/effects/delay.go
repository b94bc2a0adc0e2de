package effects

const (
	delayMinSeconds  = 0.2
	delaySpanSeconds = 0.4
)

// Delay is a feedback echo with a runtime-variable delay time
// (0.2..0.6 s). The feedback path is gain-limited below unity so the loop
// stays stable. The dry path stays at unity; bypass only zeroes wet.
type Delay struct {
	stageMix
	samples    atomicF32 // current delay length in samples
	feedback   atomicF32
	bufL, bufR []float32
	pos        int
	sr         int
}

func NewDelay(sampleRate int) *Delay {
	size := int((delayMinSeconds+delaySpanSeconds)*float64(sampleRate)) + 1
	d := &Delay{
		bufL: make([]float32, size),
		bufR: make([]float32, size),
		sr:   sampleRate,
	}
	d.stageMix.init(rampAlpha(sampleRate))
	d.apply()
	return d
}

func (d *Delay) SetEnabled(on bool) {
	d.setEnabled(on)
	d.apply()
}

func (d *Delay) SetAmount(n int) {
	d.setAmount(n)
	d.apply()
}

func (d *Delay) apply() {
	a := d.norm()
	d.feedback.Store(clamp(0.4*a, 0, 0.95))
	d.samples.Store(float32((delayMinSeconds + delaySpanSeconds*float64(a)) * float64(d.sr)))
	if d.Enabled() {
		d.wet.Set(0.5 * a)
	} else {
		d.wet.Set(0)
	}
}

func (d *Delay) Process(l, r float32) (float32, float32) {
	n := int(d.samples.Load())
	if n < 1 {
		n = 1
	}
	if n >= len(d.bufL) {
		n = len(d.bufL) - 1
	}
	read := d.pos - n
	if read < 0 {
		read += len(d.bufL)
	}
	delL := d.bufL[read]
	delR := d.bufR[read]
	fb := d.feedback.Load()
	d.bufL[d.pos] = l + delL*fb
	d.bufR[d.pos] = r + delR*fb
	d.pos++
	if d.pos >= len(d.bufL) {
		d.pos = 0
	}
	dg, w := d.dry.next(), d.wet.next()
	return dg*l + w*delL, dg*r + w*delR
}

func (d *Delay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.pos = 0
	d.dry.reset()
	d.wet.reset()
}
