package service

import (
	"context"

	"timelapse/internal/config"
	"timelapse/internal/hardware"
	"timelapse/internal/logger"
	"timelapse/internal/repository"
)

// Camera is everything the controller needs from the device.
type Camera interface {
	hardware.Sensor
	hardware.Exposer
	hardware.Lens
}

// Capture runs the unattended capture loop to completion.
type Capture interface {
	Run(ctx context.Context) Stats
}

// Focus fixes the lens once before capturing starts.
type Focus interface {
	FixFocus(ctx context.Context) error
}

// Service aggregates the controller's sub-services.
type Service struct {
	Capture
	Focus
}

// NewService wires the camera, its event queue and the image repository
// into the focus and capture services.
func NewService(cfg *config.Config, cam Camera, events hardware.EventSource, repos *repository.Repository,
	log *logger.Logger, opts ...Option) *Service {
	return &Service{
		Capture: NewScheduler(cfg, cam, cam, events, repos.Images, log, opts...),
		Focus:   NewFocusService(cam, cfg.Focus.MaxAttempts, cfg.Focus.PollInterval, log),
	}
}
