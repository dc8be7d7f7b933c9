package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"skillcode-go/errcode"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestThresholdsFor(t *testing.T) {
	th := Thresholds{Default: 2, Sensitive: 0.5, Joints: []string{"left_gripper"}}
	if th.For("left_gripper") != 0.5 {
		t.Fatal("sensitive joint should use the sensitive threshold")
	}
	if th.For("left_hip_pitch") != 2 {
		t.Fatal("bulk joint should use the default threshold")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robot.yaml")
	body := []byte("max_velocity: 60\nrecorder:\n  hz: 25\n  source_timeout_ms: 40\n  max_failures: 5\n  capture:\n    default: 2\n    sensitive: 0.5\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxVelocity != 60 {
		t.Fatalf("max_velocity: got %v", cfg.MaxVelocity)
	}
	if cfg.Recorder.Hz != 25 {
		t.Fatalf("recorder hz: got %v", cfg.Recorder.Hz)
	}
	// Untouched sections keep defaults.
	if cfg.Optimizer.MaxGap != 0.5 {
		t.Fatalf("optimizer max_gap default lost: %v", cfg.Optimizer.MaxGap)
	}
	if len(cfg.Joints) == 0 {
		t.Fatal("default joint map lost")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestValidateRejectsBadGroup(t *testing.T) {
	cfg := Default()
	cfg.Groups["broken"] = []string{"no_such_joint"}
	if err := cfg.Validate(); !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestValidateRejectsCapBelowGap(t *testing.T) {
	cfg := Default()
	cfg.Optimizer.MaxDelay = 0.1 // below the 0.5 gap
	if err := cfg.Validate(); !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestValidateRejectsUnknownSensitiveJoint(t *testing.T) {
	cfg := Default()
	cfg.Recorder.Capture.Joints = append(cfg.Recorder.Capture.Joints, "third_arm")
	if err := cfg.Validate(); !errors.Is(err, errcode.UnknownJoint) {
		t.Fatalf("expected unknown_joint, got %v", err)
	}
}
