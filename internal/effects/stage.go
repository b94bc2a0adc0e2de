package effects

import "sync/atomic"

// stageMix holds the control state and dry/wet gain pair shared by all
// stages. The zero value is a fully bypassed stage (dry 1, wet 0); callers
// must init() it with the ramp coefficient before use.
type stageMix struct {
	enabled atomic.Bool
	amount  atomic.Int32
	dry     param
	wet     param
}

const defaultAmount = 50

func (m *stageMix) init(alpha float32) {
	m.amount.Store(defaultAmount)
	m.dry.init(1, alpha)
	m.wet.init(0, alpha)
}

func (m *stageMix) Enabled() bool { return m.enabled.Load() }
func (m *stageMix) Amount() int   { return int(m.amount.Load()) }

func (m *stageMix) DryWet() (dry, wet float32) {
	return m.dry.Target(), m.wet.Target()
}

// norm returns the amount knob normalized to [0,1].
func (m *stageMix) norm() float32 {
	return float32(m.amount.Load()) / 100
}

func (m *stageMix) setEnabled(on bool) {
	m.enabled.Store(on)
}

func (m *stageMix) setAmount(n int) {
	m.amount.Store(int32(clampAmount(n)))
}
