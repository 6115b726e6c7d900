package handler

import (
	"encoding/json"
	"fmt"
	"time"

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

// MapHandler serves the viewport clustering endpoint: the render set for the
// current camera. The computation itself is pure; the handler adds a short
// response cache because drag gestures re-request the same rounded bounds.
type MapHandler struct {
	entitySource repository.EntitySource
	viewportUC   *usecase.ViewportUseCase
	clusterUC    *usecase.ClusterUseCase
	qualityUC    *usecase.QualityUseCase
	cacheRepo    repository.CacheRepository
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewMapHandler(
	entitySource repository.EntitySource,
	viewportUC *usecase.ViewportUseCase,
	clusterUC *usecase.ClusterUseCase,
	qualityUC *usecase.QualityUseCase,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *MapHandler {
	return &MapHandler{
		entitySource: entitySource,
		viewportUC:   viewportUC,
		clusterUC:    clusterUC,
		qualityUC:    qualityUC,
		cacheRepo:    cacheRepo,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// GetClusters returns the clustered render set for a viewport and zoom.
// GET /api/v1/map/clusters?west=&south=&east=&north=&zoom=
func (h *MapHandler) GetClusters(c *fiber.Ctx) error {
	var req dto.ClustersRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if req.Zoom < 0 || req.Zoom > 22 {
		return utils.SendError(c, errors.ErrInvalidZoom.WithDetails(map[string]interface{}{
			"zoom": req.Zoom,
		}))
	}
	if err := validator.Validate(req); err != nil {
		return utils.SendError(c, errors.ErrInvalidViewport.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		}))
	}

	cacheKey := fmt.Sprintf("clusters:%.5f:%.5f:%.5f:%.5f:%.2f",
		req.West, req.South, req.East, req.North, req.Zoom)

	if h.cacheRepo != nil {
		if cached, err := h.cacheRepo.Get(c.Context(), cacheKey); err == nil && cached != nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}
	}

	entities, err := h.entitySource.List(c.Context())
	if err != nil {
		h.logger.Error("Failed to load entities", zap.Error(err))
		return utils.SendError(c, err)
	}
	locatable, _ := h.qualityUC.Screen(entities)

	viewport := domain.Viewport{West: req.West, South: req.South, East: req.East, North: req.North}
	visible := h.viewportUC.Filter(locatable, viewport)
	clusters := h.clusterUC.Clusters(visible, req.Zoom)

	byID := make(map[string]domain.Entity, len(visible))
	for _, e := range visible {
		byID[e.ID] = e
	}

	out := make([]dto.ClusterDTO, 0, len(clusters))
	for _, cl := range clusters {
		item := dto.ClusterDTO{
			Lat:       cl.Centroid.Lat,
			Lon:       cl.Centroid.Lon,
			Count:     cl.Count,
			MemberIDs: cl.MemberIDs,
		}
		if cl.Count == 1 {
			e := byID[cl.MemberIDs[0]]
			item.EntityID = e.ID
			item.Name = e.Name
		} else {
			members := make([]domain.Entity, 0, cl.Count)
			for _, id := range cl.MemberIDs {
				members = append(members, byID[id])
			}
			ez := h.clusterUC.ExpansionZoom(members, req.Zoom)
			item.ExpansionZoom = &ez
		}
		out = append(out, item)
	}

	resp := utils.SuccessResponse{
		Data: dto.ClustersResponse{
			Clusters: out,
			Visible:  len(visible),
			Zoom:     req.Zoom,
		},
		Meta: &utils.Meta{Total: len(out)},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("Failed to marshal clusters response", zap.Error(err))
		return utils.SendError(c, errors.ErrInternalServer)
	}

	if h.cacheRepo != nil {
		if err := h.cacheRepo.Set(c.Context(), cacheKey, body, h.cacheTTL); err != nil {
			h.logger.Warn("Failed to cache clusters response", zap.Error(err))
		}
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
