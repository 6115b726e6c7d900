package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/pkg/errors"
	"github.com/discovery-engine/internal/pkg/geo"
)

// EntityRepository is an in-memory EntitySource. The list is fixed at
// construction: entities are immutable inputs and the engine recomputes
// derived state from the full list, so there is nothing to synchronize.
type EntityRepository struct {
	entities []domain.Entity
	byID     map[string]domain.Entity
}

// NewEntityRepository wraps a literal entity slice.
func NewEntityRepository(entities []domain.Entity) *EntityRepository {
	byID := make(map[string]domain.Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	return &EntityRepository{entities: entities, byID: byID}
}

// NewEntityRepositoryFromFile loads a JSON array of entities from disk.
func NewEntityRepositoryFromFile(path string) (*EntityRepository, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity file: %w", err)
	}

	var entities []domain.Entity
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entity file: %w", err)
	}

	return NewEntityRepository(entities), nil
}

func (r *EntityRepository) List(ctx context.Context) ([]domain.Entity, error) {
	out := make([]domain.Entity, len(r.entities))
	copy(out, r.entities)
	return out, nil
}

func (r *EntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, errors.ErrEntityNotFound
	}
	return &e, nil
}

// Unlocatable returns the entities that carry no usable coordinate. They are
// kept in the list (and in List results) but never render on the map.
func (r *EntityRepository) Unlocatable() []domain.Entity {
	var out []domain.Entity
	for _, e := range r.entities {
		if !geo.IsValid(e.Point()) {
			out = append(out, e)
		}
	}
	return out
}
