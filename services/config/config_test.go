package config

import (
	"errors"
	"testing"

	"skillcode-go/bus"
	robotcfg "skillcode-go/config"
	"skillcode-go/errcode"
)

func TestPublishRetained(t *testing.T) {
	b := bus.New(4)
	s := New(robotcfg.Default(), nil)
	if err := s.Publish(b.NewConnection("config")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// A late subscriber still receives the retained config.
	sub := b.NewConnection("late").Subscribe(bus.TopicConfigRobot)
	msg, ok := sub.TryRecv()
	if !ok {
		t.Fatal("retained config not delivered to late subscriber")
	}
	got, ok := msg.Payload.(robotcfg.Robot)
	if !ok {
		t.Fatalf("payload type: %T", msg.Payload)
	}
	if len(got.Joints) == 0 {
		t.Fatal("published config has no joints")
	}
}

func TestPublishRejectsInvalidConfig(t *testing.T) {
	cfg := robotcfg.Default()
	cfg.Joints = nil
	s := New(cfg, nil)
	err := s.Publish(bus.New(4).NewConnection("config"))
	if !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("want invalid_config, got %v", err)
	}
}
