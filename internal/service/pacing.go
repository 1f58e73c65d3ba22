package service

import (
	"context"
	"time"

	"timelapse/internal/logger"
)

// Sleeper blocks for up to d and returns whatever part of d it did not sleep.
type Sleeper interface {
	Sleep(d time.Duration) time.Duration
}

// wallSleeper sleeps on a timer and wakes early when done closes.
type wallSleeper struct {
	done <-chan struct{}
}

func (w wallSleeper) Sleep(d time.Duration) time.Duration {
	start := time.Now()
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-w.done:
	}
	if left := d - time.Since(start); left > 0 {
		return left
	}
	return 0
}

// Pacer inserts the short delay between loop iterations.
type Pacer struct {
	sleeper Sleeper
	log     *logger.Logger
}

func NewPacer(sleeper Sleeper, log *logger.Logger) *Pacer {
	return &Pacer{sleeper: sleeper, log: log}
}

// Pace sleeps for d. An interrupted sleep is resumed with the remainder
// until nothing is left or ctx is done. A negative d is logged and skipped.
func (p *Pacer) Pace(ctx context.Context, d time.Duration) {
	if d < 0 {
		p.log.Errorw("passed a negative sleep time", "duration", d)
		return
	}
	p.log.Tracew("sleeping", "duration", d)

	remaining := d
	for remaining > 0 {
		left := p.sleeper.Sleep(remaining)
		if left <= 0 {
			return
		}
		if ctx.Err() != nil {
			return
		}
		p.log.Errorw("did not finish sleep")
		p.log.Debugw("resuming sleep", "remainder", left)
		remaining = left
	}
}
