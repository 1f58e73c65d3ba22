// Package hardware describes the camera collaborators the capture scheduler
// drives, plus an in-memory event queue and a software camera that stands in
// for a real sensor driver.
package hardware

import (
	"context"
	"time"

	"timelapse/internal/models"
)

// Sensor captures frames.
type Sensor interface {
	// Capture triggers one exposure with the given settings.
	Capture(ctx context.Context, settings models.ExposureSettings) error
	// Frame returns the result of the last Capture. Each call hands out a
	// fresh frame the caller owns.
	Frame() (models.Frame, error)
	// Stop releases the sensor.
	Stop() error
}

// Exposer derives new exposure settings from a reference frame.
type Exposer interface {
	AutoExpose(settings *models.ExposureSettings, frame models.Frame, maxGain float64, maxExposure time.Duration)
	AutoWhiteBalance(settings *models.ExposureSettings, frame models.Frame)
}

// Lens moves the focus motor.
type Lens interface {
	FarFocus() float64
	MaxFocusSpeed() float64
	SetFocus(diopters, speed float64)
	FocusChanging() bool
}

// EventSource yields pending hardware events without blocking.
type EventSource interface {
	NextEvent(kind string) (models.DeviceEvent, bool)
}
