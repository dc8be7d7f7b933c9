// Package config loads and validates the robot configuration: the joint
// map, joint groups, per-target gains, motion limits, and the capture and
// playback tunables.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"skillcode-go/errcode"
	"skillcode-go/types"
)

// Thresholds holds the per-joint significance thresholds, in degrees.
// Sensitive joints (grippers, wrists) use the smaller threshold.
type Thresholds struct {
	Default   float64  `yaml:"default"`
	Sensitive float64  `yaml:"sensitive"`
	Joints    []string `yaml:"sensitive_joints"`
}

// For returns the threshold for a joint name.
func (t Thresholds) For(name string) float64 {
	for _, j := range t.Joints {
		if j == name {
			return t.Sensitive
		}
	}
	return t.Default
}

// Recorder tunables.
type Recorder struct {
	Hz              float64 `yaml:"hz"`
	SourceTimeoutMS int     `yaml:"source_timeout_ms"`
	MaxFailures     int     `yaml:"max_failures"`   // consecutive source failures before abort
	RetryBackoffMS  int     `yaml:"retry_backoff_ms"`
	Capture         Thresholds `yaml:"capture"`
}

// Optimizer tunables.
type Optimizer struct {
	Significance Thresholds `yaml:"significance"`
	MaxGap       float64    `yaml:"max_gap"`   // seconds between retained frames before a forced keep
	MinDelay     float64    `yaml:"min_delay"` // seconds, floor for normalized delays
	MaxDelay     float64    `yaml:"max_delay"` // seconds, cap for idle stretches
}

// Player tunables.
type Player struct {
	Hz                float64 `yaml:"hz"`
	ApproachSteps     int     `yaml:"approach_steps"`
	ApproachTimeoutMS int     `yaml:"approach_timeout_ms"`
	ToleranceDeg      float64 `yaml:"tolerance_deg"`
	ReturnSteps       int     `yaml:"return_steps"`
}

// Robot is the full configuration. Loaded once per session and read-only
// thereafter; the recorder and player share it but never mutate it.
type Robot struct {
	Joints map[string]int      `yaml:"joints"`
	Groups map[string][]string `yaml:"groups"`

	SimGains    types.Gains `yaml:"sim_gains"`
	RealGains   types.Gains `yaml:"real_gains"`
	GentleGains types.Gains `yaml:"gentle_gains"` // approach/return staging

	MaxVelocity float64 `yaml:"max_velocity"` // degrees per second

	Recorder  Recorder  `yaml:"recorder"`
	Optimizer Optimizer `yaml:"optimizer"`
	Player    Player    `yaml:"player"`
}

// Default returns the built-in configuration for the stock humanoid.
func Default() Robot {
	joints := map[string]int{
		// Left arm.
		"left_shoulder_yaw":   11,
		"left_shoulder_pitch": 12,
		"left_elbow":          13,
		"left_gripper":        14,
		// Right arm.
		"right_shoulder_yaw":   21,
		"right_shoulder_pitch": 22,
		"right_elbow":          23,
		"right_gripper":        24,
		// Left leg.
		"left_hip_yaw":   31,
		"left_hip_roll":  32,
		"left_hip_pitch": 33,
		"left_knee":      34,
		"left_ankle":     35,
		// Right leg.
		"right_hip_yaw":   41,
		"right_hip_roll":  42,
		"right_hip_pitch": 43,
		"right_knee":      44,
		"right_ankle":     45,
	}
	groups := map[string][]string{
		"left_arm":  {"left_shoulder_yaw", "left_shoulder_pitch", "left_elbow", "left_gripper"},
		"right_arm": {"right_shoulder_yaw", "right_shoulder_pitch", "right_elbow", "right_gripper"},
		"left_leg":  {"left_hip_yaw", "left_hip_roll", "left_hip_pitch", "left_knee", "left_ankle"},
		"right_leg": {"right_hip_yaw", "right_hip_roll", "right_hip_pitch", "right_knee", "right_ankle"},
		"arms": {"left_shoulder_yaw", "left_shoulder_pitch", "left_elbow", "left_gripper",
			"right_shoulder_yaw", "right_shoulder_pitch", "right_elbow", "right_gripper"},
		"legs": {"left_hip_yaw", "left_hip_roll", "left_hip_pitch", "left_knee", "left_ankle",
			"right_hip_yaw", "right_hip_roll", "right_hip_pitch", "right_knee", "right_ankle"},
	}
	return Robot{
		Joints:      joints,
		Groups:      groups,
		SimGains:    types.Gains{KP: 120, KD: 30, MaxTorque: 100},
		RealGains:   types.Gains{KP: 32, KD: 32, MaxTorque: 90},
		GentleGains: types.Gains{KP: 16, KD: 16, MaxTorque: 50},
		MaxVelocity: 120,
		Recorder: Recorder{
			Hz:              50,
			SourceTimeoutMS: 40,
			MaxFailures:     5,
			RetryBackoffMS:  15,
			Capture: Thresholds{
				Default:   2.0,
				Sensitive: 0.5,
				Joints:    []string{"left_gripper", "right_gripper"},
			},
		},
		Optimizer: Optimizer{
			Significance: Thresholds{
				Default:   5.0,
				Sensitive: 1.0,
				Joints:    []string{"left_gripper", "right_gripper"},
			},
			MaxGap:   0.5,
			MinDelay: 0.02,
			MaxDelay: 2.0,
		},
		Player: Player{
			Hz:                50,
			ApproachSteps:     40,
			ApproachTimeoutMS: 10000,
			ToleranceDeg:      2.0,
			ReturnSteps:       20,
		},
	}
}

// Load reads a YAML config file over the defaults. Missing fields keep
// their default values; the result is validated before use.
func Load(path string) (Robot, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Robot{}, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Robot{}, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}
	if err := cfg.Validate(); err != nil {
		return Robot{}, err
	}
	return cfg, nil
}

// JointSet builds the validated joint universe from the joint map.
func (r Robot) JointSet() (*types.JointSet, error) {
	return types.NewJointSet(r.Joints)
}

// Gains returns the running gains for the chosen target.
func (r Robot) Gains(sim bool) types.Gains {
	if sim {
		return r.SimGains
	}
	return r.RealGains
}

// Validate rejects configurations that would break capture or playback
// invariants.
func (r Robot) Validate() error {
	const op = "config.validate"
	if len(r.Joints) == 0 {
		return errcode.New(errcode.InvalidConfig, op, "no joints")
	}
	js, err := r.JointSet()
	if err != nil {
		return err
	}
	for name, members := range r.Groups {
		if _, err := js.Subset(members); err != nil {
			return errcode.Wrap(errcode.InvalidConfig, op+": group "+name, err)
		}
	}
	for _, j := range r.Recorder.Capture.Joints {
		if !js.Contains(j) {
			return errcode.New(errcode.UnknownJoint, op, "sensitive joint "+j)
		}
	}
	if r.MaxVelocity <= 0 {
		return errcode.New(errcode.InvalidConfig, op, "max_velocity must be positive")
	}
	if r.Recorder.Hz <= 0 || r.Player.Hz <= 0 {
		return errcode.New(errcode.InvalidConfig, op, "sampling rates must be positive")
	}
	if r.Recorder.Capture.Default <= 0 || r.Recorder.Capture.Sensitive <= 0 {
		return errcode.New(errcode.InvalidConfig, op, "capture thresholds must be positive")
	}
	if r.Optimizer.MinDelay <= 0 {
		return errcode.New(errcode.InvalidConfig, op, "optimizer min_delay must be positive")
	}
	if r.Optimizer.MaxDelay < r.Optimizer.MinDelay {
		return errcode.New(errcode.InvalidConfig, op, "optimizer max_delay below min_delay")
	}
	// Gap-retained frames must survive re-optimization, so the delay cap
	// may never undercut the gap.
	if r.Optimizer.MaxDelay < r.Optimizer.MaxGap {
		return errcode.New(errcode.InvalidConfig, op, "optimizer max_delay below max_gap")
	}
	if r.Player.ApproachSteps < 1 || r.Player.ReturnSteps < 1 {
		return errcode.New(errcode.InvalidConfig, op, "player step counts must be at least 1")
	}
	return nil
}
