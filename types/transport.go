package types

import "context"

// JointSource yields joint feedback for a named set of joints.
// Implementations report errcode.SourceUnavailable on transport loss.
type JointSource interface {
	// ReadState returns the current position (degrees) of each requested joint.
	ReadState(ctx context.Context, joints []string) (map[string]float64, error)
}

// JointSink accepts joint position commands and torque configuration.
// Implementations report errcode.SinkError on transport loss.
type JointSink interface {
	// WriteCommand drives the given joints toward the given positions
	// under the given gains.
	WriteCommand(ctx context.Context, positions map[string]float64, g Gains) error

	// SetTorque enables or disables holding torque on the given joints.
	// Disabled torque is manual mode: the operator can move the robot by hand.
	SetTorque(ctx context.Context, joints []string, enabled bool) error
}

// Transport is a full duplex joint interface: feedback in, commands out.
type Transport interface {
	JointSource
	JointSink
}
