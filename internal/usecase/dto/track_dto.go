package dto

import (
	"time"

	"github.com/discovery-engine/internal/domain"
)

// TrackClientMessage is sent by a websocket client while tracking.
// Type "position" carries a reading; "stop" ends the session; "reset"
// clears the discovery record so entities can be re-discovered.
type TrackClientMessage struct {
	Type       string   `json:"type"`
	Lat        float64  `json:"lat,omitempty"`
	Lon        float64  `json:"lon,omitempty"`
	AccuracyM  float64  `json:"accuracy_m,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	SpeedMps   *float64 `json:"speed_mps,omitempty"`
	HeadingDeg *float64 `json:"heading_deg,omitempty"`
}

// Reading converts a position message into a tracker reading. A missing or
// malformed timestamp falls back to now.
func (m TrackClientMessage) Reading(now time.Time) domain.TrackedPosition {
	ts := now
	if m.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
			ts = parsed
		}
	}
	return domain.TrackedPosition{
		Lat:        m.Lat,
		Lon:        m.Lon,
		AccuracyM:  m.AccuracyM,
		Timestamp:  ts,
		SpeedMps:   m.SpeedMps,
		HeadingDeg: m.HeadingDeg,
	}
}

// TrackServerFrame is pushed to the websocket client. One frame per event:
// "discovery" when an entity is newly discovered, "update" after every
// accepted reading, "error" on terminal failures.
type TrackServerFrame struct {
	Type string `json:"type"`

	// discovery
	Entity     *NearbyEntityDTO `json:"entity,omitempty"`
	DistanceKm float64          `json:"distance_km,omitempty"`

	// update
	Nearby    []NearbyEntityDTO         `json:"nearby,omitempty"`
	Predicted *domain.PredictedPosition `json:"predicted,omitempty"`
	Stats     *domain.TrackingStats     `json:"stats,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
