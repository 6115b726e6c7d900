package domain

import "time"

// TrackedPosition is a single live position reading. Each reading supersedes
// the previous one; readings are never merged.
type TrackedPosition struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	AccuracyM  float64   `json:"accuracy_m"`
	Timestamp  time.Time `json:"timestamp"`
	SpeedMps   *float64  `json:"speed_mps,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty"`
}

// Point returns the reading coordinate.
func (p TrackedPosition) Point() Point {
	return Point{Lat: p.Lat, Lon: p.Lon}
}

// PredictedPosition is a short-horizon extrapolation of the user's position
// along the current heading at the current speed.
type PredictedPosition struct {
	Point   Point         `json:"point"`
	Horizon time.Duration `json:"horizon"`
	At      time.Time     `json:"at"`
}

// TrackingStats are movement statistics accumulated over a tracking session.
type TrackingStats struct {
	Readings        int       `json:"readings"`
	Dropped         int       `json:"dropped"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	AverageSpeedMps float64   `json:"average_speed_mps"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	LastReadingAt   time.Time `json:"last_reading_at,omitzero"`
}
