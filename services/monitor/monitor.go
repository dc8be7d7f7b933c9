// Package monitor logs capture and playback state transitions. It is
// purely observational: it subscribes, it never publishes.
package monitor

import (
	"context"
	"log/slog"

	"skillcode-go/bus"
	"skillcode-go/services/player"
	"skillcode-go/services/recorder"
)

type Service struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log}
}

// Start launches the watch loop and returns; it stops when ctx ends.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.loop(ctx, conn)
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection) {
	recSub := conn.Subscribe(bus.TopicRecordState)
	defer recSub.Unsubscribe()
	playSub := conn.Subscribe(bus.TopicPlayState)
	defer playSub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-recSub.Channel():
			if st, ok := msg.Payload.(recorder.State); ok {
				s.log.Info("monitor: record",
					"session", st.Session, "skill", st.Skill,
					"status", st.Status, "frames", st.Frames, "manual", st.Manual)
			}
		case msg := <-playSub.Channel():
			if st, ok := msg.Payload.(player.State); ok {
				s.log.Info("monitor: play", "skill", st.Skill, "phase", string(st.Phase))
			}
		}
	}
}
