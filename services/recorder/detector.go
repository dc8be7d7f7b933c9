package recorder

import "skillcode-go/config"

// Detector decides, joint by joint, whether a sample moved far enough
// from the last accepted value to be worth keeping. The first sample of
// every joint is always accepted so the session opens with a complete
// pose.
type Detector struct {
	thresholds config.Thresholds
	last       map[string]float64
}

func NewDetector(t config.Thresholds) *Detector {
	return &Detector{
		thresholds: t,
		last:       make(map[string]float64),
	}
}

// Accept reports whether pos is a significant move for the joint and,
// if so, records it as the new last accepted value.
func (d *Detector) Accept(joint string, pos float64) bool {
	prev, seen := d.last[joint]
	if seen {
		delta := pos - prev
		if delta < 0 {
			delta = -delta
		}
		if delta <= d.thresholds.For(joint) {
			return false
		}
	}
	d.last[joint] = pos
	return true
}

// Snapshot returns a copy of the last accepted value of every joint,
// the composite pose a frame captures.
func (d *Detector) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(d.last))
	for k, v := range d.last {
		out[k] = v
	}
	return out
}
