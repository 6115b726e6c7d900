package usecase

import (
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/pkg/geo"
)

// ViewportUseCase computes the subset of entities visible in a viewport.
//
// Filter is pure, synchronous and idempotent, so calling it for every
// camera-move event is harmless. It is still cheap-per-call only: callers
// driving it from a drag gesture are expected to debounce upstream at
// roughly 100-200ms. The engine does not rate-limit internally.
type ViewportUseCase struct {
	logger *zap.Logger
}

func NewViewportUseCase(logger *zap.Logger) *ViewportUseCase {
	return &ViewportUseCase{logger: logger}
}

// Filter returns the entities whose coordinate lies inside the viewport.
// Unlocatable entities are never visible.
func (uc *ViewportUseCase) Filter(entities []domain.Entity, viewport domain.Viewport) []domain.Entity {
	viewport = viewport.Normalize()

	visible := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		p := e.Point()
		if !geo.IsValid(p) {
			continue
		}
		if geo.Contains(viewport, p) {
			visible = append(visible, e)
		}
	}
	return visible
}
