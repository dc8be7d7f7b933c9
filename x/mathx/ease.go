package mathx

import "math"

// Lerp returns a + (b-a)*t without clamping t.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// EasePeakRate is the maximum slope of EaseInOut, reached at t=0.5.
// A move eased over duration d peaks at EasePeakRate times the average
// velocity, so a velocity cap must budget d accordingly.
const EasePeakRate = math.Pi / 2

// EaseInOut maps linear progress t in [0,1] to a cosine ease curve:
// zero slope at both endpoints, monotonic in between. Inputs outside
// [0,1] are clamped.
func EaseInOut(t float64) float64 {
	t = Clamp(t, 0, 1)
	return (1 - math.Cos(t*math.Pi)) / 2
}
