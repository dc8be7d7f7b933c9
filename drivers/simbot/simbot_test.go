package simbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillcode-go/errcode"
	"skillcode-go/types"
)

// fakeClock steps simulated time manually.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newSim(t *testing.T) (*Robot, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Unix(0, 0)}
	r := New([]string{"left_elbow", "right_elbow"}, Config{MaxVelocity: 100, Now: clk.now})
	return r, clk
}

func TestTrackingBoundedByMaxVelocity(t *testing.T) {
	ctx := context.Background()
	r, clk := newSim(t)
	if err := r.SetTorque(ctx, []string{"left_elbow"}, true); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteCommand(ctx, map[string]float64{"left_elbow": 90}, types.Gains{}); err != nil {
		t.Fatal(err)
	}

	// 100 deg/s for 0.5 s reaches at most 50 degrees.
	clk.advance(500 * time.Millisecond)
	got, err := r.ReadState(ctx, []string{"left_elbow"})
	if err != nil {
		t.Fatal(err)
	}
	if got["left_elbow"] != 50 {
		t.Fatalf("after 0.5s want 50, got %v", got["left_elbow"])
	}

	// Plenty of time converges exactly on the target, no overshoot.
	clk.advance(2 * time.Second)
	got, err = r.ReadState(ctx, []string{"left_elbow"})
	if err != nil {
		t.Fatal(err)
	}
	if got["left_elbow"] != 90 {
		t.Fatalf("want 90 at target, got %v", got["left_elbow"])
	}
}

func TestTorqueOffHoldsPose(t *testing.T) {
	ctx := context.Background()
	r, clk := newSim(t)
	if err := r.WriteCommand(ctx, map[string]float64{"left_elbow": 90}, types.Gains{}); err != nil {
		t.Fatal(err)
	}
	clk.advance(5 * time.Second)
	got, err := r.ReadState(ctx, []string{"left_elbow"})
	if err != nil {
		t.Fatal(err)
	}
	if got["left_elbow"] != 0 {
		t.Fatalf("torque off must not move, got %v", got["left_elbow"])
	}
}

func TestTorqueOnHoldsCurrentPose(t *testing.T) {
	ctx := context.Background()
	r, clk := newSim(t)
	r.Pose(map[string]float64{"left_elbow": 33})
	if err := r.SetTorque(ctx, []string{"left_elbow"}, true); err != nil {
		t.Fatal(err)
	}
	clk.advance(time.Second)
	got, err := r.ReadState(ctx, []string{"left_elbow"})
	if err != nil {
		t.Fatal(err)
	}
	if got["left_elbow"] != 33 {
		t.Fatalf("enabling torque must hold the pose, got %v", got["left_elbow"])
	}
}

func TestUnknownJoint(t *testing.T) {
	ctx := context.Background()
	r, _ := newSim(t)
	if _, err := r.ReadState(ctx, []string{"tail"}); !errors.Is(err, errcode.UnknownJoint) {
		t.Fatalf("expected unknown_joint, got %v", err)
	}
	if err := r.WriteCommand(ctx, map[string]float64{"tail": 1}, types.Gains{}); !errors.Is(err, errcode.UnknownJoint) {
		t.Fatalf("expected unknown_joint, got %v", err)
	}
}

func TestFaultInjection(t *testing.T) {
	ctx := context.Background()
	r, _ := newSim(t)
	r.FailReads(errors.New("cable pulled"))
	if _, err := r.ReadState(ctx, []string{"left_elbow"}); !errors.Is(err, errcode.SourceUnavailable) {
		t.Fatalf("expected source_unavailable, got %v", err)
	}
	r.FailReads(nil)
	if _, err := r.ReadState(ctx, []string{"left_elbow"}); err != nil {
		t.Fatalf("recovery: %v", err)
	}

	r.FailWrites(errors.New("cable pulled"))
	if err := r.WriteCommand(ctx, map[string]float64{"left_elbow": 1}, types.Gains{}); !errors.Is(err, errcode.SinkError) {
		t.Fatalf("expected sink_error, got %v", err)
	}
}

func TestScriptReplaysDeterministically(t *testing.T) {
	ctx := context.Background()
	s := NewScript([]types.Frame{
		{Positions: map[string]float64{"a": 0}},
		{Positions: map[string]float64{"a": 10}},
		{Positions: map[string]float64{"a": 20}},
	})
	want := []float64{0, 10, 20, 20, 20}
	for i, w := range want {
		got, err := s.ReadState(ctx, []string{"a"})
		if err != nil {
			t.Fatal(err)
		}
		if got["a"] != w {
			t.Fatalf("call %d: want %v, got %v", i, w, got["a"])
		}
	}
}
