package repository

import (
	"context"

	"github.com/discovery-engine/internal/domain"
)

// EntitySource supplies the full entity list on demand. The engine never
// fetches, paginates, or caches entities itself; it recomputes derived state
// whenever the list changes.
type EntitySource interface {
	// List returns all entities, including unlocatable ones.
	List(ctx context.Context) ([]domain.Entity, error)

	// GetByID returns one entity by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
}
