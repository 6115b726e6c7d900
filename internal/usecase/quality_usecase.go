package usecase

import (
	"sync"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/geo"
)

// QualityUseCase screens an entity list for unusable coordinates. Invalid
// entities are excluded from the locatable set but each is reported at most
// once per instance, so re-screening the same list on every refresh does not
// spam the reporter. Safe for concurrent use by request handlers.
type QualityUseCase struct {
	reporter repository.DataQualityReporter
	logger   *zap.Logger

	mu       sync.Mutex
	reported map[string]struct{}
}

func NewQualityUseCase(reporter repository.DataQualityReporter, logger *zap.Logger) *QualityUseCase {
	return &QualityUseCase{
		reporter: reporter,
		logger:   logger,
		reported: make(map[string]struct{}),
	}
}

// Screen splits entities into locatable and unlocatable. Newly seen
// unlocatable entities are surfaced through the reporter.
func (uc *QualityUseCase) Screen(entities []domain.Entity) (locatable, unlocatable []domain.Entity) {
	locatable = make([]domain.Entity, 0, len(entities))

	for _, e := range entities {
		if geo.IsValid(e.Point()) {
			locatable = append(locatable, e)
			continue
		}

		unlocatable = append(unlocatable, e)

		uc.mu.Lock()
		_, seen := uc.reported[e.ID]
		if !seen {
			uc.reported[e.ID] = struct{}{}
		}
		uc.mu.Unlock()
		if seen {
			continue
		}

		uc.logger.Warn("Entity has no usable coordinate",
			zap.String("entity_id", e.ID),
			zap.Float64("lat", e.Lat),
			zap.Float64("lon", e.Lon),
		)
		if uc.reporter != nil {
			uc.reporter.InvalidCoordinate(e.ID, e.Lat, e.Lon)
		}
	}

	return locatable, unlocatable
}
