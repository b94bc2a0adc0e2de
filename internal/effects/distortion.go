package effects

// Distortion is a hard-knee waveshaping stage. Unlike Overdrive it feeds
// the full amount into the curve intensity, reaching full clipping at the
// top of the knob.
type Distortion struct {
	stageMix
	shape waveshaper
}

func NewDistortion(sampleRate int) *Distortion {
	d := &Distortion{}
	d.stageMix.init(rampAlpha(sampleRate))
	d.apply()
	return d
}

func (d *Distortion) SetEnabled(on bool) {
	d.setEnabled(on)
	d.apply()
}

func (d *Distortion) SetAmount(n int) {
	d.setAmount(n)
	d.apply()
}

func (d *Distortion) apply() {
	a := d.norm()
	d.shape.set(HardCurve(float64(a)))
	if d.Enabled() {
		d.wet.Set(a)
		d.dry.Set(1 - 0.5*a)
	} else {
		d.wet.Set(0)
		d.dry.Set(1)
	}
}

func (d *Distortion) Process(l, r float32) (float32, float32) {
	dg, w := d.dry.next(), d.wet.next()
	return dg*l + w*d.shape.apply(l), dg*r + w*d.shape.apply(r)
}

func (d *Distortion) Reset() {
	d.dry.reset()
	d.wet.reset()
}
