// Package types holds the shared data model for skill capture and playback.
package types

import (
	"math"
	"time"

	"skillcode-go/errcode"
)

// JointSample is one feedback reading for a single joint.
// Position is in degrees. Samples are never mutated after creation.
type JointSample struct {
	Name     string
	Position float64
	At       time.Time
}

// Frame is one composite joint-position snapshot plus the delay (seconds)
// to hold or transition before the next frame. Immutable once buffered.
type Frame struct {
	Positions map[string]float64 `json:"joint_positions" msgpack:"p"`
	Delay     float64            `json:"delay" msgpack:"d"`
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	p := make(map[string]float64, len(f.Positions))
	for k, v := range f.Positions {
		p[k] = v
	}
	return Frame{Positions: p, Delay: f.Delay}
}

// Equal reports frame-for-frame equality, exact on positions and delay.
func (f Frame) Equal(o Frame) bool {
	if f.Delay != o.Delay || len(f.Positions) != len(o.Positions) {
		return false
	}
	for k, v := range f.Positions {
		ov, ok := o.Positions[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Skill is a named, replayable ordered frame sequence.
type Skill struct {
	Name   string  `json:"name" msgpack:"n"`
	Frames []Frame `json:"frames" msgpack:"f"`
}

// Validate checks the persistence invariants: at least one frame, and every
// delay positive and finite.
func (s Skill) Validate() error {
	if s.Name == "" {
		return errcode.New(errcode.CorruptSkill, "skill.validate", "empty name")
	}
	if len(s.Frames) == 0 {
		return errcode.New(errcode.CorruptSkill, "skill.validate", "zero frames")
	}
	for _, f := range s.Frames {
		if len(f.Positions) == 0 {
			return errcode.New(errcode.CorruptSkill, "skill.validate", "frame without positions")
		}
		if f.Delay <= 0 || math.IsInf(f.Delay, 0) || math.IsNaN(f.Delay) {
			return errcode.New(errcode.CorruptSkill, "skill.validate", "non-positive frame delay")
		}
		for _, p := range f.Positions {
			if math.IsInf(p, 0) || math.IsNaN(p) {
				return errcode.New(errcode.CorruptSkill, "skill.validate", "non-finite position")
			}
		}
	}
	return nil
}

// Equal reports skill equality, used by the round-trip and idempotence tests.
func (s Skill) Equal(o Skill) bool {
	if s.Name != o.Name || len(s.Frames) != len(o.Frames) {
		return false
	}
	for i := range s.Frames {
		if !s.Frames[i].Equal(o.Frames[i]) {
			return false
		}
	}
	return true
}

// Gains is a proportional/derivative pair plus a torque ceiling,
// selected per target (simulated vs physical) and per phase (gentle
// approach/return vs normal running).
type Gains struct {
	KP        float64 `yaml:"kp" json:"kp"`
	KD        float64 `yaml:"kd" json:"kd"`
	MaxTorque float64 `yaml:"max_torque" json:"max_torque"`
}

// CommandOp enumerates operator commands accepted during a session.
type CommandOp string

const (
	OpSave   CommandOp = "save"   // flush buffer to a named skill, keep recording
	OpStop   CommandOp = "stop"   // flush and terminate the session
	OpManual CommandOp = "manual" // toggle torque-disabled manual mode
)

// Command is the payload carried on the record/command bus topic.
type Command struct {
	Op   CommandOp
	Name string // skill name for OpSave
}
