package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/errors"
)

// entityRepository is a read-only EntitySource over the directory's entities
// table. Schema ownership and writes live with the ingest pipeline.
type entityRepository struct {
	db     *DB
	logger *zap.Logger
}

func NewEntityRepository(db *DB, logger *zap.Logger) repository.EntitySource {
	return &entityRepository{
		db:     db,
		logger: logger,
	}
}

const entityColumns = `
	id, name, lat, lon, categories,
	description, address, postcode, website, phone,
	created_at, updated_at
`

func (r *entityRepository) List(ctx context.Context) ([]domain.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM entities ORDER BY id`, entityColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list entities", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			r.logger.Error("Failed to scan entity row", zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
		entities = append(entities, *e)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Entity row iteration failed", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return entities, nil
}

func (r *entityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM entities WHERE id = $1`, entityColumns)

	row := r.db.QueryRowContext(ctx, query, id)
	e, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrEntityNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get entity by ID", zap.String("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return e, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(row rowScanner) (*domain.Entity, error) {
	var e domain.Entity
	var categoriesJSON []byte

	err := row.Scan(
		&e.ID, &e.Name, &e.Lat, &e.Lon, &categoriesJSON,
		&e.Description, &e.Address, &e.Postcode, &e.Website, &e.Phone,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(categoriesJSON) > 0 {
		if err := json.Unmarshal(categoriesJSON, &e.Categories); err != nil {
			return nil, fmt.Errorf("failed to parse categories: %w", err)
		}
	}

	return &e, nil
}
