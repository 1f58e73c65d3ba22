package hardware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"timelapse/internal/models"

	"github.com/google/uuid"
)

// ----------- Simulation constants -----------
const (
	NoonScene        = 1.0    // relative scene luminance at solar noon
	NightScene       = 0.0004 // relative scene luminance with no sun
	SensorResponse   = 230.0  // full-scale fraction per (scene * second * gain); noon at 1/500s gain 1 is mid-grey
	TargetLuma       = 118.0  // mid-grey the auto-exposure aims for
	MinWhiteBalanceK = 3200
	MaxWhiteBalanceK = 7000
	NearFocus        = 10.0                  // diopters, where the lens rests at power-on
	FocusStep        = 10 * time.Millisecond // lens motor advance per FocusChanging poll
)

var (
	ErrSensorStopped = errors.New("sensor stopped")
	ErrNoFrame       = errors.New("no frame pending")
)

// SimulatorOptions tunes the software camera.
type SimulatorOptions struct {
	Width, Height int
	// Now supplies the scene clock. Defaults to time.Now.
	Now func() time.Time
	// FaultEvery posts a sensor ERROR event on every Nth capture. Zero disables.
	FaultEvery int
	// LensStuck keeps the focus motor from ever settling.
	LensStuck bool
}

// Simulator is a software camera: it implements Sensor, Exposer and Lens.
// Scene brightness follows the sun; hardware faults go to the event queue.
type Simulator struct {
	opts   SimulatorOptions
	events *EventQueue

	mu       sync.Mutex
	stopped  bool
	captures int
	pending  *models.Frame

	focusPos    float64
	focusTarget float64
	focusSpeed  float64
}

// NewSimulator returns a simulator posting faults to events.
func NewSimulator(events *EventQueue, opts SimulatorOptions) *Simulator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Simulator{
		opts:        opts,
		events:      events,
		focusPos:    NearFocus,
		focusTarget: NearFocus,
	}
}

// Capture renders a frame for the current scene with the given settings.
func (s *Simulator) Capture(ctx context.Context, settings models.ExposureSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSensorStopped
	}
	s.captures++
	now := s.opts.Now()

	if s.opts.FaultEvery > 0 && s.captures%s.opts.FaultEvery == 0 {
		s.events.Post(models.DeviceEvent{
			OccurredAt:  now.UTC(),
			Kind:        models.EventError,
			Description: "sensor timeout; frame repeated",
			Metadata:    map[string]any{"capture": s.captures},
		})
	}

	f := s.render(now, settings)
	s.pending = &f
	return nil
}

// Frame hands over the frame produced by the last Capture.
func (s *Simulator) Frame() (models.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return models.Frame{}, ErrNoFrame
	}
	f := *s.pending
	s.pending = nil
	return f, nil
}

// Stop releases the sensor. Later captures fail.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = nil
	return nil
}

// Captures is the number of exposures taken so far.
func (s *Simulator) Captures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captures
}

// render produces a luma plane with a left-to-right falloff.
func (s *Simulator) render(now time.Time, settings models.ExposureSettings) models.Frame {
	w, h := s.opts.Width, s.opts.Height
	signal := SceneLevel(now) * settings.Exposure.Seconds() * settings.Gain * SensorResponse * 255

	luma := make([]byte, w*h)
	row := make([]byte, w)
	for x := 0; x < w; x++ {
		falloff := 0.6 + 0.8*float64(x)/float64(maxInt(w-1, 1))
		row[x] = clampByte(signal * falloff)
	}
	for y := 0; y < h; y++ {
		copy(luma[y*w:(y+1)*w], row)
	}

	return models.Frame{
		ID:         uuid.NewString(),
		CapturedAt: now,
		Width:      w,
		Height:     h,
		Settings:   settings,
		ColorTempK: sceneColorTemp(now),
		Luma:       luma,
	}
}

// SceneLevel is the relative brightness of the scene at t: a sine arc
// between 06:00 and 18:00 on top of a constant night floor.
func SceneLevel(t time.Time) float64 {
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	sun := math.Sin((hours - 6) / 12 * math.Pi)
	if sun < 0 {
		sun = 0
	}
	return NightScene + (NoonScene-NightScene)*sun
}

func sceneColorTemp(t time.Time) int {
	switch h := t.Hour(); {
	case h >= 8 && h < 17:
		return 5500
	case h >= 6 && h < 19:
		return 3800
	default:
		return 3300
	}
}

// AutoExpose scales exposure x gain so the frame's mean luma moves to
// TargetLuma, preferring shutter time over gain.
func (s *Simulator) AutoExpose(settings *models.ExposureSettings, frame models.Frame, maxGain float64, maxExposure time.Duration) {
	mean := frame.MeanLuma()
	total := settings.Exposure.Seconds() * math.Max(settings.Gain, 1)

	switch {
	case mean < 1:
		total *= 8
	case mean > 250:
		total /= 2
	default:
		total *= TargetLuma / mean
	}

	exposure := total
	gain := 1.0
	if limit := maxExposure.Seconds(); exposure > limit {
		exposure = limit
		gain = math.Min(total/limit, maxGain)
	}
	if exposure < 1e-6 {
		exposure = 1e-6
	}

	settings.Exposure = time.Duration(math.Round(exposure * float64(time.Second)))
	settings.Gain = gain
}

// AutoWhiteBalance moves the white point halfway toward the frame's estimate.
func (s *Simulator) AutoWhiteBalance(settings *models.ExposureSettings, frame models.Frame) {
	if frame.ColorTempK == 0 {
		return
	}
	current := settings.WhiteBalance
	if current == 0 {
		current = models.DefaultWhiteBalance
	}
	wb := current + (frame.ColorTempK-current)/2
	if wb < MinWhiteBalanceK {
		wb = MinWhiteBalanceK
	}
	if wb > MaxWhiteBalanceK {
		wb = MaxWhiteBalanceK
	}
	settings.WhiteBalance = wb
}

// FarFocus is infinity, in diopters.
func (s *Simulator) FarFocus() float64 { return 0 }

// MaxFocusSpeed is in diopters per second.
func (s *Simulator) MaxFocusSpeed() float64 { return 20 }

// SetFocus starts moving the lens toward diopters.
func (s *Simulator) SetFocus(diopters, speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusTarget = diopters
	s.focusSpeed = speed
}

// FocusChanging advances the motor one step and reports whether it is still moving.
func (s *Simulator) FocusChanging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.LensStuck {
		return true
	}
	step := s.focusSpeed * FocusStep.Seconds()
	diff := s.focusTarget - s.focusPos
	if math.Abs(diff) <= step || step <= 0 {
		s.focusPos = s.focusTarget
		return false
	}
	s.focusPos += math.Copysign(step, diff)
	return true
}

// FocusPosition is the current lens position in diopters.
func (s *Simulator) FocusPosition() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusPos
}

func (s *Simulator) String() string {
	return fmt.Sprintf("simulator %dx%d", s.opts.Width, s.opts.Height)
}

// helpers
func clampByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

func maxInt(a, b int) int {
	if a >= b {
		return a
	}
	return b
}
