package mathx

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 {
		t.Fatal("upper clamp failed")
	}
	if Clamp(-1, 0, 3) != 0 {
		t.Fatal("lower clamp failed")
	}
	if Clamp(2, 3, 0) != 2 {
		t.Fatal("swapped bounds should still pass v through")
	}
}

func TestEaseEndpoints(t *testing.T) {
	if EaseInOut(0) != 0 || EaseInOut(1) != 1 {
		t.Fatalf("endpoints: got %v, %v", EaseInOut(0), EaseInOut(1))
	}
	if EaseInOut(-0.5) != 0 || EaseInOut(1.5) != 1 {
		t.Fatal("out-of-range inputs must clamp")
	}
	if math.Abs(EaseInOut(0.5)-0.5) > 1e-12 {
		t.Fatalf("midpoint: got %v", EaseInOut(0.5))
	}
}

func TestEaseMonotonicWithFlatEndpoints(t *testing.T) {
	const n = 1000
	prev := EaseInOut(0)
	for i := 1; i <= n; i++ {
		cur := EaseInOut(float64(i) / n)
		if cur < prev {
			t.Fatalf("not monotonic at t=%v", float64(i)/n)
		}
		prev = cur
	}
	// Slope near the endpoints must be much smaller than the mid slope.
	eps := 1e-4
	edge := EaseInOut(eps) - EaseInOut(0)
	mid := EaseInOut(0.5+eps) - EaseInOut(0.5-eps)
	if edge*100 > mid {
		t.Fatalf("endpoint slope not near zero: edge=%v mid=%v", edge, mid)
	}
}

func TestLerp(t *testing.T) {
	if Lerp(0, 90, 0.5) != 45 {
		t.Fatalf("got %v", Lerp(0, 90, 0.5))
	}
	if Lerp(10, 10, 0.7) != 10 {
		t.Fatal("degenerate lerp should hold position")
	}
}
