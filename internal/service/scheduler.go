package service

import (
	"context"
	"time"

	"timelapse/internal/config"
	"timelapse/internal/hardware"
	"timelapse/internal/logger"
	"timelapse/internal/models"
	"timelapse/internal/repository"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Stats counts what a run did.
type Stats struct {
	Iterations      int
	Adjustments     int
	Pictures        int
	CaptureFailures int
	SaveFailures    int
	HardwareErrors  int
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithSleeper replaces the pacing sleeper.
func WithSleeper(sl Sleeper) Option {
	return func(s *Scheduler) { s.sleeper = sl }
}

// Scheduler alternates between metering exposure and committing pictures
// until the configured end date has passed. It is not safe for concurrent
// use: one goroutine owns the sensor and the schedule state.
type Scheduler struct {
	cfg     *config.Config
	window  DayWindow
	sensor  hardware.Sensor
	exposer hardware.Exposer
	events  hardware.EventSource
	images  repository.ImageRepo
	log     *logger.Logger
	clock   Clock
	sleeper Sleeper

	state    ScheduleState
	settings models.ExposureSettings
	// held is the last metered frame; a picture takes it over.
	held  *models.Frame
	stats Stats
}

func NewScheduler(cfg *config.Config, sensor hardware.Sensor, exposer hardware.Exposer, events hardware.EventSource,
	images repository.ImageRepo, log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		window:  DayWindow{Start: cfg.DayStart, End: cfg.DayEnd},
		sensor:  sensor,
		exposer: exposer,
		events:  events,
		images:  images,
		log:     log,
		clock:   systemClock{},
		settings: models.ExposureSettings{
			Exposure:     MaxExposure(cfg.Interval.Day, cfg.Exposure.MaxFraction),
			Gain:         cfg.Exposure.MaxGain,
			WhiteBalance: models.DefaultWhiteBalance,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the schedule state.
func (s *Scheduler) State() ScheduleState { return s.state }

// Settings returns the current exposure settings.
func (s *Scheduler) Settings() models.ExposureSettings { return s.settings }

// Run loops until the date range is exhausted or ctx is cancelled, then
// stops the sensor. Hardware errors are logged and never end the run.
func (s *Scheduler) Run(ctx context.Context) Stats {
	sleeper := s.sleeper
	if sleeper == nil {
		sleeper = wallSleeper{done: ctx.Done()}
	}
	pacer := NewPacer(sleeper, s.log)

	for {
		if ctx.Err() != nil {
			s.log.Infow("capture loop cancelled")
			break
		}
		if !s.Step(ctx) {
			s.log.Infow("end of date range reached", "end_date", s.cfg.EndDate.String())
			break
		}
		pacer.Pace(ctx, s.cfg.Pacing.Delay)
	}

	s.shutdown()
	return s.stats
}

// Step runs one iteration and reports whether the run should continue.
func (s *Scheduler) Step(ctx context.Context) bool {
	s.update()
	if !WithinDateRange(s.state.Now, s.cfg.EndDate) {
		return false
	}
	s.stats.Iterations++

	if s.cfg.Run.EnforceStartDate && !OnOrAfterStart(s.state.Now, s.cfg.StartDate) {
		s.log.Tracew("before start date; idling", "start_date", s.cfg.StartDate.String())
		s.drainErrors()
		return true
	}

	switch s.state.Decide(s.held != nil) {
	case TakePicture:
		s.takePicture(ctx)
	default:
		s.adjust(ctx)
	}

	s.drainErrors()
	return true
}

func (s *Scheduler) update() {
	s.log.Tracew("updating ...")
	s.state.Update(s.clock.Now(), s.window, s.cfg.Interval.Day, s.cfg.Interval.Night)

	if s.state.ModeJustChanged {
		s.log.Tracew("state change", "daytime", s.state.IsDaytime)
	}
	s.log.Tracew("updating interval",
		"interval", s.state.ActiveInterval,
		"day_interval", s.cfg.Interval.Day,
		"night_interval", s.cfg.Interval.Night)
}

// maxExposure is the shutter ceiling for the current time of day. Night
// allows longer exposures on the assumption the camera is not moving.
func (s *Scheduler) maxExposure() time.Duration {
	if s.state.IsDaytime {
		return MaxExposure(s.cfg.Interval.Day, s.cfg.Exposure.MaxFraction)
	}
	return MaxExposure(s.cfg.Interval.Night, s.cfg.Exposure.MaxFraction)
}

// adjust captures a metering frame and derives new exposure settings from it.
func (s *Scheduler) adjust(ctx context.Context) {
	s.stats.Adjustments++

	if err := s.sensor.Capture(ctx, s.settings); err != nil {
		s.stats.CaptureFailures++
		s.log.Errorw("capture failed", "err", err)
		return
	}
	frame, err := s.sensor.Frame()
	if err != nil {
		s.stats.CaptureFailures++
		s.log.Errorw("fetch frame failed", "err", err)
		return
	}

	s.log.Tracew("exposing picture",
		"frame", frame.ID,
		"exposure", frame.Settings.Exposure,
		"gain", frame.Settings.Gain)

	s.exposer.AutoExpose(&s.settings, frame, s.cfg.Exposure.MaxGain, s.maxExposure())
	s.exposer.AutoWhiteBalance(&s.settings, frame)
	s.held = &frame
}

// takePicture resets the interval clock and hands the held frame to storage.
func (s *Scheduler) takePicture(ctx context.Context) {
	s.log.Debugw("taking picture")
	s.state.LastCapture = s.state.Now

	frame := *s.held
	s.held = nil

	s.log.Tracew("saving file",
		"path", repository.PathFor(s.cfg.Storage.Dir, s.state.Now),
		"width", frame.Width,
		"height", frame.Height)

	path, err := s.images.Save(ctx, frame, s.state.Now)
	if err != nil {
		s.stats.SaveFailures++
		s.log.Errorw("save picture failed", "err", err)
		return
	}
	s.stats.Pictures++
	s.log.Debugw("picture saved", "path", path)
}

// maxDrain caps how many events one iteration drains, so a producer that
// keeps posting cannot hold the loop.
const maxDrain = 256

// drainErrors logs every error event pending right now.
func (s *Scheduler) drainErrors() {
	for i := 0; i < maxDrain; i++ {
		ev, ok := s.events.NextEvent(models.EventError)
		if !ok {
			return
		}
		s.stats.HardwareErrors++
		s.log.Errorw("Error: "+ev.Description, "event_id", ev.EventID, "occurred_at", ev.OccurredAt)
	}
}

func (s *Scheduler) shutdown() {
	if err := s.sensor.Stop(); err != nil {
		s.log.Errorw("stop sensor failed", "err", err)
	}
	s.held = nil
}
