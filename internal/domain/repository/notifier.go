package repository

import "github.com/discovery-engine/internal/domain"

// DiscoveryNotifier receives discovery events. Presentation (toast, push,
// log line) is entirely the notifier's job; the engine's contract ends at
// firing the event exactly once per entity per tracking session.
type DiscoveryNotifier interface {
	EntityDiscovered(entity domain.Entity, distanceKm float64)
}

// DataQualityReporter is notified once per entity that fails coordinate
// validation. Such entities are excluded from all geospatial computation but
// stay in the original list for non-spatial use.
type DataQualityReporter interface {
	InvalidCoordinate(entityID string, lat, lon float64)
}
