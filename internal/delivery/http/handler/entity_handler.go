package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/errors"
	"github.com/discovery-engine/internal/pkg/utils"
	"github.com/discovery-engine/internal/pkg/validator"
	"github.com/discovery-engine/internal/usecase"
	"github.com/discovery-engine/internal/usecase/dto"
)

// EntityHandler serves the entity catalogue and distance-ranked lookups.
type EntityHandler struct {
	entitySource repository.EntitySource
	rankUC       *usecase.RankUseCase
	qualityUC    *usecase.QualityUseCase
	logger       *zap.Logger
}

func NewEntityHandler(
	entitySource repository.EntitySource,
	rankUC *usecase.RankUseCase,
	qualityUC *usecase.QualityUseCase,
	logger *zap.Logger,
) *EntityHandler {
	return &EntityHandler{
		entitySource: entitySource,
		rankUC:       rankUC,
		qualityUC:    qualityUC,
		logger:       logger,
	}
}

// List returns the full entity catalogue.
// GET /api/v1/entities
func (h *EntityHandler) List(c *fiber.Ctx) error {
	entities, err := h.entitySource.List(c.Context())
	if err != nil {
		h.logger.Error("Failed to load entities", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, entities, &utils.Meta{Total: len(entities)})
}

// GetByID returns a single entity.
// GET /api/v1/entities/:id
func (h *EntityHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	entity, err := h.entitySource.GetByID(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, entity, nil)
}

// Nearby returns entities ranked by distance from a point, each annotated
// with an arrival estimate. An optional radius_km bounds the result; an
// optional speed_mps overrides the walking-speed ETA default.
// GET /api/v1/entities/nearby?lat=&lon=&radius_km=&speed_mps=&limit=
func (h *EntityHandler) Nearby(c *fiber.Ctx) error {
	var req dto.NearbyRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if req.RadiusKm < 0 || req.RadiusKm > 100 {
		return utils.SendError(c, errors.ErrInvalidRadius.WithDetails(map[string]interface{}{
			"radius_km": req.RadiusKm,
		}))
	}
	if err := validator.Validate(req); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		}))
	}

	entities, err := h.entitySource.List(c.Context())
	if err != nil {
		h.logger.Error("Failed to load entities", zap.Error(err))
		return utils.SendError(c, err)
	}
	locatable, _ := h.qualityUC.Screen(entities)

	origin := domain.Point{Lat: req.Lat, Lon: req.Lon}
	ranked := h.rankUC.Rank(locatable, origin, false)

	out := make([]dto.NearbyEntityDTO, 0, len(ranked))
	for _, r := range ranked {
		if req.RadiusKm > 0 && r.DistanceKm > req.RadiusKm {
			break // ranked ascending
		}
		out = append(out, dto.NearbyEntityDTO{
			ID:         r.Entity.ID,
			Name:       r.Entity.Name,
			Lat:        r.Entity.Lat,
			Lon:        r.Entity.Lon,
			Categories: r.Entity.Categories,
			DistanceKm: r.DistanceKm,
			EtaMinutes: h.rankUC.EstimateArrivalMinutes(r.DistanceKm, req.SpeedMps),
		})
		if req.Limit > 0 && len(out) >= req.Limit {
			break
		}
	}

	return utils.SendSuccess(c, dto.NearbyResponse{
		Entities: out,
		Total:    len(out),
	}, nil)
}
