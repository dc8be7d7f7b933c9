package types

import (
	"errors"
	"testing"

	"skillcode-go/errcode"
)

func TestJointSetOrderAndLookup(t *testing.T) {
	js, err := NewJointSet(map[string]int{
		"right_elbow":   23,
		"left_elbow":    13,
		"left_shoulder": 11,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := []string{"left_elbow", "left_shoulder", "right_elbow"}
	got := js.Names()
	if len(got) != len(want) {
		t.Fatalf("names: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
	id, err := js.ID("left_elbow")
	if err != nil || id != 13 {
		t.Fatalf("id: got %d, %v", id, err)
	}
}

func TestJointSetRejectsUnknownAtConstruction(t *testing.T) {
	js, err := NewJointSet(map[string]int{"left_knee": 34, "right_knee": 44})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := js.Subset([]string{"left_knee", "tail"}); !errors.Is(err, errcode.UnknownJoint) {
		t.Fatalf("expected unknown_joint, got %v", err)
	}
}

func TestJointSetRejectsDuplicateActuatorID(t *testing.T) {
	_, err := NewJointSet(map[string]int{"a": 1, "b": 1})
	if !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestJointSetRejectsEmpty(t *testing.T) {
	if _, err := NewJointSet(nil); !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}
