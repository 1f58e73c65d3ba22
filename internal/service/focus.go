package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timelapse/internal/hardware"
	"timelapse/internal/logger"
)

// ErrFocusTimeout means the lens was still moving after the allowed polls.
var ErrFocusTimeout = errors.New("lens focus did not settle")

// FocusService drives the lens to infinity once at startup.
type FocusService struct {
	lens        hardware.Lens
	maxAttempts int
	poll        time.Duration
	log         *logger.Logger
}

func NewFocusService(lens hardware.Lens, maxAttempts int, poll time.Duration, log *logger.Logger) *FocusService {
	return &FocusService{lens: lens, maxAttempts: maxAttempts, poll: poll, log: log}
}

// FixFocus sets far focus at full speed and polls until the motor stops,
// giving up with ErrFocusTimeout after maxAttempts polls.
func (f *FocusService) FixFocus(ctx context.Context) error {
	f.lens.SetFocus(f.lens.FarFocus(), f.lens.MaxFocusSpeed())

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if !f.lens.FocusChanging() {
			f.log.Tracew("set focus to infinity", "polls", attempt)
			return nil
		}
		if f.poll <= 0 {
			continue
		}
		t := time.NewTimer(f.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("%w after %d polls", ErrFocusTimeout, f.maxAttempts)
}
