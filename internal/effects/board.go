package effects

// Board is the fixed signal chain: input gain, then compressor, overdrive,
// distortion, chorus, delay and reverb, then master gain. Each stage sums
// its dry and wet paths before feeding the next. Topology never changes
// after construction; only per-stage scalars do.
type Board struct {
	input  param
	master param

	Compressor *Compressor
	Overdrive  *Overdrive
	Distortion *Distortion
	Chorus     *Chorus
	Delay      *Delay
	Reverb     *Reverb

	chain [6]Stage
}

func NewBoard(sampleRate int, ir ImpulseResponse) (*Board, error) {
	rv, err := NewReverb(sampleRate, ir)
	if err != nil {
		return nil, err
	}
	b := &Board{
		Compressor: NewCompressor(sampleRate),
		Overdrive:  NewOverdrive(sampleRate),
		Distortion: NewDistortion(sampleRate),
		Chorus:     NewChorus(sampleRate),
		Delay:      NewDelay(sampleRate),
		Reverb:     rv,
	}
	alpha := rampAlpha(sampleRate)
	b.input.init(1, alpha)
	b.master.init(1, alpha)
	b.chain = [6]Stage{b.Compressor, b.Overdrive, b.Distortion, b.Chorus, b.Delay, b.Reverb}
	return b, nil
}

func (b *Board) Process(l, r float32) (float32, float32) {
	g := b.input.next()
	l, r = l*g, r*g
	for _, s := range b.chain {
		l, r = s.Process(l, r)
	}
	m := b.master.next()
	return l * m, r * m
}

// ProcessBuffer runs interleaved stereo frames through the chain in place.
func (b *Board) ProcessBuffer(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		dst[i], dst[i+1] = b.Process(dst[i], dst[i+1])
	}
}

// Stages returns the chain in processing order.
func (b *Board) Stages() []Stage {
	return b.chain[:]
}

func (b *Board) SetInputGain(v float32)  { b.input.Set(clamp(v, 0, 4)) }
func (b *Board) InputGain() float32      { return b.input.Target() }
func (b *Board) SetMasterGain(v float32) { b.master.Set(clamp(v, 0, 4)) }
func (b *Board) MasterGain() float32     { return b.master.Target() }

func (b *Board) Reset() {
	for _, s := range b.chain {
		s.Reset()
	}
	b.input.reset()
	b.master.reset()
}
