package domain

import "time"

// Stream names (shared with publishers outside this service)
const (
	StreamPositions   = "stream:positions"
	StreamDiscoveries = "stream:discoveries"
)

// StreamMessage is a raw message read from a stream.
type StreamMessage struct {
	ID   string
	Data string
}

// PositionEvent is an incoming live position reading for one device.
type PositionEvent struct {
	DeviceID   string    `json:"device_id"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	AccuracyM  float64   `json:"accuracy_m"`
	Timestamp  time.Time `json:"timestamp"`
	SpeedMps   *float64  `json:"speed_mps,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty"`
}

// Reading converts the event into a tracker reading.
func (e *PositionEvent) Reading() TrackedPosition {
	return TrackedPosition{
		Lat:        e.Lat,
		Lon:        e.Lon,
		AccuracyM:  e.AccuracyM,
		Timestamp:  e.Timestamp,
		SpeedMps:   e.SpeedMps,
		HeadingDeg: e.HeadingDeg,
	}
}

// DiscoveryEvent is published when a tracked device comes within the
// discovery radius of an entity for the first time in its session.
type DiscoveryEvent struct {
	DeviceID     string    `json:"device_id"`
	EntityID     string    `json:"entity_id"`
	EntityName   string    `json:"entity_name"`
	DistanceKm   float64   `json:"distance_km"`
	DiscoveredAt time.Time `json:"discovered_at"`
}
