package effects

// Overdrive is a soft-knee waveshaping drive stage. The amount knob
// regenerates the transfer curve (intensity 0.6a) and crossfades the dry
// path down as the wet path comes up.
type Overdrive struct {
	stageMix
	shape waveshaper
}

func NewOverdrive(sampleRate int) *Overdrive {
	o := &Overdrive{}
	o.stageMix.init(rampAlpha(sampleRate))
	o.apply()
	return o
}

func (o *Overdrive) SetEnabled(on bool) {
	o.setEnabled(on)
	o.apply()
}

func (o *Overdrive) SetAmount(n int) {
	o.setAmount(n)
	o.apply()
}

func (o *Overdrive) apply() {
	a := o.norm()
	o.shape.set(SoftCurve(0.6 * float64(a)))
	if o.Enabled() {
		o.wet.Set(a)
		o.dry.Set(1 - 0.5*a)
	} else {
		o.wet.Set(0)
		o.dry.Set(1)
	}
}

func (o *Overdrive) Process(l, r float32) (float32, float32) {
	d, w := o.dry.next(), o.wet.next()
	return d*l + w*o.shape.apply(l), d*r + w*o.shape.apply(r)
}

func (o *Overdrive) Reset() {
	o.dry.reset()
	o.wet.reset()
}
