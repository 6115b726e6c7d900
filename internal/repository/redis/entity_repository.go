package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/errors"
)

// Key layout shared with the ingest pipeline: one hash per entity plus a set
// of all identifiers.
const (
	keyEntitiesAll = "entities:all"
	keyEntityFmt   = "entity:%s"
)

// entityRepository is a read-only EntitySource over the Redis layout written
// by the data pipeline. The engine never writes entities.
type entityRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewEntityRepository(client *redis.Client, logger *zap.Logger) repository.EntitySource {
	return &entityRepository{
		client: client,
		logger: logger,
	}
}

func (r *entityRepository) List(ctx context.Context) ([]domain.Entity, error) {
	ids, err := r.client.SMembers(ctx, keyEntitiesAll).Result()
	if err != nil {
		r.logger.Error("Failed to list entity IDs", zap.Error(err))
		return nil, fmt.Errorf("failed to list entity ids: %w", err)
	}

	entities := make([]domain.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := r.GetByID(ctx, id)
		if err == errors.ErrEntityNotFound {
			// Set and hash can drift while the pipeline runs; skip.
			r.logger.Warn("Entity in index but hash missing", zap.String("entity_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}

	return entities, nil
}

func (r *entityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	fields, err := r.client.HGetAll(ctx, fmt.Sprintf(keyEntityFmt, id)).Result()
	if err != nil {
		r.logger.Error("Failed to read entity hash", zap.String("entity_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to read entity %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, errors.ErrEntityNotFound
	}

	return decodeEntity(id, fields), nil
}

// decodeEntity maps the pipeline's stringly-typed hash fields onto an
// Entity. Unparseable coordinates are kept as written; the quality screen
// downstream rejects them.
func decodeEntity(id string, fields map[string]string) *domain.Entity {
	e := domain.Entity{
		ID:   id,
		Name: fields["name"],
	}
	e.Lat, _ = strconv.ParseFloat(fields["lat"], 64)
	e.Lon, _ = strconv.ParseFloat(fields["lon"], 64)

	if raw, ok := fields["categories"]; ok && raw != "" {
		var cats []string
		if err := json.Unmarshal([]byte(raw), &cats); err == nil {
			e.Categories = cats
		}
	}

	setOptional := func(dst **string, key string) {
		if v, ok := fields[key]; ok && v != "" {
			*dst = &v
		}
	}
	setOptional(&e.Description, "description")
	setOptional(&e.Address, "address")
	setOptional(&e.Postcode, "postcode")
	setOptional(&e.Website, "website")
	setOptional(&e.Phone, "phone")

	return &e
}
