// Package optimize turns a raw capture buffer into a compact, evenly paced
// skill. The pipeline is decimation by significance, delay normalization,
// and a velocity bound enforced by merging offending frames into their
// successor. Optimization is idempotent: running it on its own output
// changes nothing.
package optimize

import (
	"skillcode-go/config"
	"skillcode-go/errcode"
	"skillcode-go/types"
	"skillcode-go/x/mathx"
)

// Params are the optimizer tunables. MaxDelay must be at least MaxGap so
// gap-retained frames survive re-optimization (config validation enforces
// this).
type Params struct {
	Significance config.Thresholds
	MaxGap       float64 // seconds of accumulated delay that force retention
	MinDelay     float64 // floor for normalized delays, seconds
	MaxDelay     float64 // cap for idle stretches, seconds
	MaxVelocity  float64 // degrees per second
}

// FromConfig builds optimizer parameters from the robot configuration.
func FromConfig(cfg config.Robot) Params {
	return Params{
		Significance: cfg.Optimizer.Significance,
		MaxGap:       cfg.Optimizer.MaxGap,
		MinDelay:     cfg.Optimizer.MinDelay,
		MaxDelay:     cfg.Optimizer.MaxDelay,
		MaxVelocity:  cfg.MaxVelocity,
	}
}

// Optimize reduces a raw frame buffer to a skill named name. An empty
// buffer yields errcode.EmptySkill, never a zero-frame skill.
func (p Params) Optimize(name string, frames []types.Frame) (types.Skill, error) {
	if len(frames) == 0 {
		return types.Skill{}, errcode.New(errcode.EmptySkill, "optimize", name)
	}

	// A velocity merge can leave its survivor within threshold of the
	// frame before it, which decimation would then drop. Repeating the
	// pipeline until the output is stable makes the result a fixed
	// point: optimizing it again changes nothing. Each unstable pass
	// removes at least one frame, so the loop is bounded.
	out := p.boundVelocity(p.decimate(frames))
	for {
		next := p.boundVelocity(p.decimate(out))
		if framesEqual(next, out) {
			break
		}
		out = next
	}

	skill := types.Skill{Name: name, Frames: out}
	if err := skill.Validate(); err != nil {
		return types.Skill{}, err
	}
	return skill, nil
}

// decimate retains frames that moved significantly or that close a long
// gap, recomputing each retained frame's delay as the clamped elapsed time
// from the previous retained frame. The first and final frames are always
// retained so the motion endpoints are never lost.
func (p Params) decimate(frames []types.Frame) []types.Frame {
	out := make([]types.Frame, 0, len(frames))
	var prev *types.Frame
	accum := 0.0

	for i := range frames {
		f := frames[i]
		accum += f.Delay

		final := i == len(frames)-1
		if prev != nil && !final && !p.significant(f, *prev) && accum < p.MaxGap {
			continue
		}

		// The cap yields to the velocity floor: a delay that long is
		// required to keep the move physically executable.
		hi := p.MaxDelay
		if prev != nil {
			hi = mathx.Max(hi, maxDelta(f, *prev)/p.MaxVelocity)
		}
		nf := f.Clone()
		nf.Delay = mathx.Clamp(accum, p.MinDelay, hi)
		out = append(out, nf)
		prev = &out[len(out)-1]
		accum = 0
	}
	return out
}

// boundVelocity drops frames whose implied per-joint velocity exceeds the
// limit, merging their delay into the successor so the endpoint survives.
// The final frame is never dropped: its delay is stretched to meet the
// bound instead.
func (p Params) boundVelocity(frames []types.Frame) []types.Frame {
	out := make([]types.Frame, 0, len(frames))
	carry := 0.0

	for i := range frames {
		f := frames[i]
		d := f.Delay + carry
		if len(out) == 0 {
			out = append(out, f)
			out[0].Delay = d
			carry = 0
			continue
		}

		prev := out[len(out)-1]
		need := maxDelta(f, prev) / p.MaxVelocity
		if d < need {
			if i < len(frames)-1 {
				carry = d
				continue
			}
			d = need // final frame: stretch, never drop
		}
		// Merged delays stay capped unless velocity requires more.
		f.Delay = mathx.Min(d, mathx.Max(p.MaxDelay, need))
		out = append(out, f)
		carry = 0
	}
	return out
}

// significant reports whether any joint moved past its threshold between
// the two frames.
func (p Params) significant(f, prev types.Frame) bool {
	for joint, pos := range f.Positions {
		if mathx.Abs(pos-prev.Positions[joint]) > p.Significance.For(joint) {
			return true
		}
	}
	return false
}

func framesEqual(a, b []types.Frame) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// maxDelta returns the largest per-joint position change between frames.
func maxDelta(f, prev types.Frame) float64 {
	d := 0.0
	for joint, pos := range f.Positions {
		d = mathx.Max(d, mathx.Abs(pos-prev.Positions[joint]))
	}
	return d
}
