// Package simbot provides an in-process simulated robot implementing
// types.Transport. Each joint tracks its commanded target with a
// first-order model bounded by a maximum angular velocity, so recorded
// and played motion behaves like a (very forgiving) physical arm.
//
// The clock is injectable: tests step simulated time explicitly, the
// CLI runs on the wall clock.
package simbot

import (
	"context"
	"sync"
	"time"

	"skillcode-go/errcode"
	"skillcode-go/types"
	"skillcode-go/x/mathx"
)

// Config controls the simulation. All fields are optional.
type Config struct {
	// MaxVelocity bounds joint motion in degrees/second. Default 120.
	MaxVelocity float64
	// Now is the simulation clock. Default time.Now.
	Now func() time.Time
}

type joint struct {
	pos    float64
	target float64
	torque bool
}

// Robot is a simulated joint transport. Safe for concurrent use.
type Robot struct {
	mu     sync.Mutex
	cfg    Config
	joints map[string]*joint
	last   time.Time

	readErr  error
	writeErr error
}

// New creates a robot with the given joints, all at position 0 with
// torque disabled, matching a freshly powered arm.
func New(names []string, cfg Config) *Robot {
	if cfg.MaxVelocity <= 0 {
		cfg.MaxVelocity = 120
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	r := &Robot{
		cfg:    cfg,
		joints: make(map[string]*joint, len(names)),
		last:   cfg.Now(),
	}
	for _, n := range names {
		r.joints[n] = &joint{}
	}
	return r
}

// step advances every torque-enabled joint toward its target, bounded
// by MaxVelocity over the elapsed simulated time. Must hold mu.
func (r *Robot) step() {
	now := r.cfg.Now()
	dt := now.Sub(r.last).Seconds()
	r.last = now
	if dt <= 0 {
		return
	}
	limit := r.cfg.MaxVelocity * dt
	for _, j := range r.joints {
		if !j.torque {
			continue
		}
		delta := mathx.Clamp(j.target-j.pos, -limit, limit)
		j.pos += delta
	}
}

// ReadState implements types.JointSource.
func (r *Robot) ReadState(ctx context.Context, joints []string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, errcode.Wrap(errcode.SourceUnavailable, "simbot.read", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, errcode.Wrap(errcode.SourceUnavailable, "simbot.read", r.readErr)
	}
	r.step()
	out := make(map[string]float64, len(joints))
	for _, n := range joints {
		j, ok := r.joints[n]
		if !ok {
			return nil, errcode.New(errcode.UnknownJoint, "simbot.read", n)
		}
		out[n] = j.pos
	}
	return out, nil
}

// WriteCommand implements types.JointSink. Commands are accepted with
// torque off, but the joint only follows once torque is on again.
func (r *Robot) WriteCommand(ctx context.Context, positions map[string]float64, _ types.Gains) error {
	if err := ctx.Err(); err != nil {
		return errcode.Wrap(errcode.SinkError, "simbot.write", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return errcode.Wrap(errcode.SinkError, "simbot.write", r.writeErr)
	}
	r.step()
	for n, p := range positions {
		j, ok := r.joints[n]
		if !ok {
			return errcode.New(errcode.UnknownJoint, "simbot.write", n)
		}
		j.target = p
	}
	return nil
}

// SetTorque implements types.JointSink. Disabling torque freezes the
// joint where it stands; re-enabling resumes tracking the last target.
func (r *Robot) SetTorque(ctx context.Context, joints []string, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return errcode.Wrap(errcode.SinkError, "simbot.torque", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return errcode.Wrap(errcode.SinkError, "simbot.torque", r.writeErr)
	}
	r.step()
	for _, n := range joints {
		j, ok := r.joints[n]
		if !ok {
			return errcode.New(errcode.UnknownJoint, "simbot.torque", n)
		}
		j.torque = enabled
		if enabled {
			// Hold the current pose rather than lunging at a stale target.
			j.target = j.pos
		}
	}
	return nil
}

// Pose moves joints directly, bypassing torque and the velocity bound.
// This is the simulated equivalent of an operator posing the arm by
// hand in manual mode.
func (r *Robot) Pose(positions map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	for n, p := range positions {
		if j, ok := r.joints[n]; ok {
			j.pos = p
			j.target = p
		}
	}
}

// FailReads makes subsequent ReadState calls fail with the given cause
// (nil restores normal operation).
func (r *Robot) FailReads(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readErr = cause
}

// FailWrites makes subsequent WriteCommand/SetTorque calls fail with
// the given cause (nil restores normal operation).
func (r *Robot) FailWrites(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErr = cause
}
