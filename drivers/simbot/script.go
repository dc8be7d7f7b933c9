package simbot

import (
	"context"
	"sync"

	"skillcode-go/errcode"
	"skillcode-go/types"
)

// Script is a deterministic JointSource that replays a fixed sequence
// of frames, one frame per ReadState call, holding the final frame
// afterwards. Useful for demos and recorder tests where the motion must
// be exactly reproducible.
type Script struct {
	mu     sync.Mutex
	frames []types.Frame
	idx    int
}

// NewScript builds a script over the given frames. The frame delays are
// ignored; the caller's sampling rate sets the pace.
func NewScript(frames []types.Frame) *Script {
	return &Script{frames: frames}
}

// ReadState implements types.JointSource.
func (s *Script) ReadState(ctx context.Context, joints []string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, errcode.Wrap(errcode.SourceUnavailable, "simbot.script", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil, errcode.New(errcode.SourceUnavailable, "simbot.script", "empty script")
	}
	f := s.frames[s.idx]
	if s.idx < len(s.frames)-1 {
		s.idx++
	}
	out := make(map[string]float64, len(joints))
	for _, n := range joints {
		p, ok := f.Positions[n]
		if !ok {
			return nil, errcode.New(errcode.UnknownJoint, "simbot.script", n)
		}
		out[n] = p
	}
	return out, nil
}
