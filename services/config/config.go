// Package config publishes the loaded robot configuration on the bus as
// a retained message, so services that connect later still see it.
package config

import (
	"log/slog"

	"skillcode-go/bus"
	robotcfg "skillcode-go/config"
)

type Service struct {
	cfg robotcfg.Robot
	log *slog.Logger
}

func New(cfg robotcfg.Robot, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfg: cfg, log: log}
}

// Publish validates and publishes the configuration retained on
// config/robot.
func (s *Service) Publish(conn *bus.Connection) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	conn.Publish(conn.NewMessage(bus.TopicConfigRobot, s.cfg, true))
	s.log.Info("config: published", "joints", len(s.cfg.Joints), "groups", len(s.cfg.Groups))
	return nil
}
