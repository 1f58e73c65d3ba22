package models

import "time"

// Frame is one captured image together with the settings it was taken with.
// Luma holds Width*Height 8-bit samples, row-major. A Frame owns its buffer;
// whoever holds the value holds the image.
type Frame struct {
	ID         string           `json:"id"`
	CapturedAt time.Time        `json:"captured_at"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Settings   ExposureSettings `json:"settings"`
	ColorTempK int              `json:"color_temp_k"` // estimated scene colour temperature
	Luma       []byte           `json:"-"`
}

// Empty reports whether the frame carries no image data.
func (f Frame) Empty() bool {
	return len(f.Luma) == 0
}

// MeanLuma is the average sample value in [0, 255].
func (f Frame) MeanLuma() float64 {
	if len(f.Luma) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range f.Luma {
		sum += uint64(v)
	}
	return float64(sum) / float64(len(f.Luma))
}

// Histogram buckets the luma samples into the given number of bins.
func (f Frame) Histogram(bins int) []int {
	if bins <= 0 {
		bins = 1
	}
	h := make([]int, bins)
	for _, v := range f.Luma {
		h[int(v)*bins/256]++
	}
	return h
}
