package service

import "time"

// Decision is what one loop iteration does.
type Decision int

const (
	AdjustExposure Decision = iota
	TakePicture
)

func (d Decision) String() string {
	switch d {
	case AdjustExposure:
		return "adjust"
	case TakePicture:
		return "take"
	default:
		return "unknown"
	}
}

// ScheduleState is the scheduler's mutable per-run state.
type ScheduleState struct {
	IsDaytime       bool
	ActiveInterval  time.Duration
	ModeJustChanged bool
	LastCapture     time.Time // zero until the interval clock is seeded
	Now             time.Time

	classified bool
}

// Update refreshes the time and recomputes day/night, the change flag and
// the active interval.
func (st *ScheduleState) Update(now time.Time, window DayWindow, dayInterval, nightInterval time.Duration) {
	st.Now = now

	day := IsDay(now, window)
	st.ModeJustChanged = st.classified && day != st.IsDaytime
	st.IsDaytime = day
	st.classified = true

	if day {
		st.ActiveInterval = dayInterval
	} else {
		st.ActiveInterval = nightInterval
	}
}

// Decide picks the action for this iteration. The interval clock is seeded
// with Now on first use, so the first action is never a picture. A picture
// also needs a metered frame to commit; after a picture the frame has been
// handed to storage, so the next iteration always meters again.
func (st *ScheduleState) Decide(haveFrame bool) Decision {
	if st.LastCapture.IsZero() {
		st.LastCapture = st.Now
	}
	if !haveFrame {
		return AdjustExposure
	}
	if st.Now.Sub(st.LastCapture) >= st.ActiveInterval {
		return TakePicture
	}
	return AdjustExposure
}
