package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/conv"
)

const (
	// 128-sample processing latency; larger partitions keep long tails cheap.
	reverbMinBlockOrder = 7
	reverbMaxBlockOrder = 13
)

// Reverb convolves the signal with a synthetic impulse response using
// partitioned FFT convolution, so multi-second tails stay affordable in
// the per-sample render path. The IR is fixed at construction; the amount
// knob only moves the wet level. The dry path stays at unity.
type Reverb struct {
	stageMix
	convL, convR *conv.PartitionedConvolution32
	inL, inR     [1]float32
	outL, outR   [1]float32
}

func NewReverb(sampleRate int, ir ImpulseResponse) (*Reverb, error) {
	kl, kr := normalizeIR(ir)
	convL, err := conv.NewPartitionedConvolution32(kl, reverbMinBlockOrder, reverbMaxBlockOrder)
	if err != nil {
		return nil, fmt.Errorf("reverb: left kernel: %w", err)
	}
	convR, err := conv.NewPartitionedConvolution32(kr, reverbMinBlockOrder, reverbMaxBlockOrder)
	if err != nil {
		return nil, fmt.Errorf("reverb: right kernel: %w", err)
	}
	r := &Reverb{convL: convL, convR: convR}
	r.stageMix.init(rampAlpha(sampleRate))
	r.apply()
	return r, nil
}

// normalizeIR scales the kernel to unit energy so the tail level is
// independent of impulse duration and decay.
func normalizeIR(ir ImpulseResponse) ([]float32, []float32) {
	var sum float64
	for i := range ir.L {
		sum += float64(ir.L[i])*float64(ir.L[i]) + float64(ir.R[i])*float64(ir.R[i])
	}
	if sum == 0 {
		return ir.L, ir.R
	}
	scale := float32(1.0 / math.Sqrt(sum/2))
	kl := make([]float32, len(ir.L))
	kr := make([]float32, len(ir.R))
	for i := range kl {
		kl[i] = ir.L[i] * scale
	}
	for i := range kr {
		kr[i] = ir.R[i] * scale
	}
	return kl, kr
}

func (rv *Reverb) SetEnabled(on bool) {
	rv.setEnabled(on)
	rv.apply()
}

func (rv *Reverb) SetAmount(n int) {
	rv.setAmount(n)
	rv.apply()
}

func (rv *Reverb) apply() {
	if rv.Enabled() {
		rv.wet.Set(0.6 * rv.norm())
	} else {
		rv.wet.Set(0)
	}
}

func (rv *Reverb) Process(l, r float32) (float32, float32) {
	rv.inL[0], rv.inR[0] = l, r
	// Lengths always match; the convolver cannot fail here.
	_ = rv.convL.ProcessBlock(rv.inL[:], rv.outL[:])
	_ = rv.convR.ProcessBlock(rv.inR[:], rv.outR[:])
	d, w := rv.dry.next(), rv.wet.next()
	return d*l + w*rv.outL[0], d*r + w*rv.outR[0]
}

func (rv *Reverb) Reset() {
	rv.convL.Reset()
	rv.convR.Reset()
	rv.dry.reset()
	rv.wet.reset()
}
