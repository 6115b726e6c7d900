package repository

import "github.com/discovery-engine/internal/domain"

// PositionSource acquires live positions, e.g. a device geolocation API or a
// stream of readings. The engine does not know how positions are acquired:
// onUpdate delivers readings, onError delivers a terminal failure.
type PositionSource interface {
	// Start begins delivering readings. It returns an error only for
	// immediate startup failures; acquisition failures after Start are
	// reported through onError.
	Start(onUpdate func(domain.TrackedPosition), onError func(error)) error

	// Stop cancels the subscription. No callbacks fire after Stop returns.
	Stop()
}
