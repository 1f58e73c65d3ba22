package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"timelapse/internal/logger"
)

type stubLens struct {
	movingPolls int
	polls       int
	target      float64
	speed       float64
}

func (l *stubLens) FarFocus() float64      { return 0 }
func (l *stubLens) MaxFocusSpeed() float64 { return 20 }
func (l *stubLens) SetFocus(d, s float64)  { l.target, l.speed = d, s }
func (l *stubLens) FocusChanging() bool {
	l.polls++
	return l.polls <= l.movingPolls
}

func TestFixFocus_SettlesWithinBudget(t *testing.T) {
	lens := &stubLens{movingPolls: 5, target: 10}
	f := NewFocusService(lens, 10, 0, logger.Nop())

	if err := f.FixFocus(context.Background()); err != nil {
		t.Fatalf("FixFocus: %v", err)
	}
	if lens.target != 0 || lens.speed != 20 {
		t.Fatalf("lens set to %.1f at %.1f, want far focus at max speed", lens.target, lens.speed)
	}
	if lens.polls != 6 {
		t.Fatalf("polls = %d, want 6", lens.polls)
	}
}

func TestFixFocus_TimesOut(t *testing.T) {
	lens := &stubLens{movingPolls: 1 << 30}
	f := NewFocusService(lens, 25, 0, logger.Nop())

	err := f.FixFocus(context.Background())
	if !errors.Is(err, ErrFocusTimeout) {
		t.Fatalf("expected ErrFocusTimeout, got %v", err)
	}
	if lens.polls != 25 {
		t.Fatalf("polls = %d, want 25", lens.polls)
	}
}

func TestFixFocus_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lens := &stubLens{movingPolls: 1 << 30}
	f := NewFocusService(lens, 1000, time.Hour, logger.Nop())

	if err := f.FixFocus(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
