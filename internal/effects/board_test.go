package effects

import (
	"math"
	"testing"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(testRate, Impulse(testRate, 0.25, 2))
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b
}

func TestBoardChainOrder(t *testing.T) {
	b := newTestBoard(t)
	chain := b.Stages()
	if len(chain) != 6 {
		t.Fatalf("chain length = %d, want 6", len(chain))
	}
	want := []Stage{b.Compressor, b.Overdrive, b.Distortion, b.Chorus, b.Delay, b.Reverb}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain[%d] out of order", i)
		}
	}
}

func TestBoardBypassedIsTransparent(t *testing.T) {
	b := newTestBoard(t)
	for i := 0; i < 100; i++ {
		in := float32(math.Sin(float64(i) / 7))
		l, r := b.Process(in, -in)
		if l != in || r != -in {
			t.Fatalf("bypassed board altered sample %d: %f/%f", i, l, r)
		}
	}
}

func TestBoardMasterGain(t *testing.T) {
	b := newTestBoard(t)
	b.SetMasterGain(0.5)
	var out float32
	for i := 0; i < 2000; i++ { // let the gain ramp settle
		out, _ = b.Process(1.0, 1.0)
	}
	if math.Abs(float64(out)-0.5) > 1e-3 {
		t.Fatalf("master gain 0.5 produced %f", out)
	}
	b.SetMasterGain(-1)
	if got := b.MasterGain(); got != 0 {
		t.Fatalf("master gain should clamp at 0, got %f", got)
	}
}

func TestBoardProcessBuffer(t *testing.T) {
	b := newTestBoard(t)
	b.Overdrive.SetEnabled(true)
	b.Overdrive.SetAmount(100)
	buf := make([]float32, 256)
	for i := range buf {
		buf[i] = 0.5
	}
	b.ProcessBuffer(buf)
	changed := false
	for _, v := range buf {
		if v != 0.5 {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("overdriven buffer should differ from input")
	}
}
