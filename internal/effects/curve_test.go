package effects

import (
	"math"
	"testing"
)

func TestCurveOddSymmetry(t *testing.T) {
	for _, c := range []Curve{SoftCurve(0), SoftCurve(0.6), HardCurve(1)} {
		if len(c) != CurveLen {
			t.Fatalf("curve length = %d, want %d", len(c), CurveLen)
		}
		// x(i) and x(n-1-i) are exact negatives, so y must be too.
		for i := 0; i < len(c)/2; i += 97 {
			got := float64(c[i])
			want := -float64(c[len(c)-1-i])
			if math.Abs(got-want) > 1e-5 {
				t.Fatalf("symmetry broken at %d: %f vs %f", i, got, want)
			}
		}
	}
}

func TestCurveMonotonic(t *testing.T) {
	for name, c := range map[string]Curve{
		"soft0":   SoftCurve(0),
		"soft1":   SoftCurve(1),
		"hard0":   HardCurve(0),
		"hard1":   HardCurve(1),
		"hardMid": HardCurve(0.5),
	} {
		for i := 1; i < len(c); i++ {
			if c[i] < c[i-1] {
				t.Fatalf("%s: curve decreases at %d: %f -> %f", name, i, c[i-1], c[i])
			}
		}
	}
}

func TestCurveBounded(t *testing.T) {
	for _, c := range []Curve{SoftCurve(1), HardCurve(1)} {
		for i := range c {
			if v := math.Abs(float64(c[i])); v > 1.0 {
				t.Fatalf("curve exceeds unity at %d: %f", i, v)
			}
		}
	}
}

func TestHardCurveIntensitySharpensKnee(t *testing.T) {
	lo := HardCurve(0.1)
	hi := HardCurve(1)
	// Sample a small positive input; higher intensity should push the
	// output closer to full clipping.
	i := CurveLen/2 + CurveLen/20 // x = +0.1
	if hi[i] <= lo[i] {
		t.Fatalf("expected sharper knee at high intensity: lo=%f hi=%f", lo[i], hi[i])
	}
}

func TestWaveshaperInterpolates(t *testing.T) {
	var w waveshaper
	if got := w.apply(0.5); got != 0.5 {
		t.Fatalf("empty shaper should pass through, got %f", got)
	}
	w.set(HardCurve(1))
	if got := w.apply(0); math.Abs(float64(got)) > 1e-3 {
		t.Fatalf("zero in should map near zero out, got %f", got)
	}
	if got := w.apply(1); got < 0.9 {
		t.Fatalf("full-scale input should be near full clip, got %f", got)
	}
	if got := w.apply(-1); got > -0.9 {
		t.Fatalf("negative full-scale should clip negative, got %f", got)
	}
}
