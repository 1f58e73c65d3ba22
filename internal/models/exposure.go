package models

import "time"

// ExposureSettings is what the sensor is asked to capture with.
type ExposureSettings struct {
	Exposure     time.Duration `json:"exposure"`
	Gain         float64       `json:"gain"`          // analog gain, 1.0 = ISO 100
	WhiteBalance int           `json:"white_balance"` // Kelvin
}

// DefaultWhiteBalance is daylight.
const DefaultWhiteBalance = 5500
