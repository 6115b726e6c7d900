package handler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/errors"
	"github.com/discovery-engine/internal/tracker"
	"github.com/discovery-engine/internal/usecase"
	"github.com/discovery-engine/internal/usecase/dto"
)

// TrackHandler runs a live tracking session over a websocket. Each
// connection gets its own tracker and push source; the client streams
// position readings in, the server streams discovery and update frames out.
type TrackHandler struct {
	entitySource repository.EntitySource
	trackerCfg   tracker.Config
	rankUC       *usecase.RankUseCase
	logger       *zap.Logger
}

func NewTrackHandler(
	entitySource repository.EntitySource,
	trackerCfg tracker.Config,
	rankUC *usecase.RankUseCase,
	logger *zap.Logger,
) *TrackHandler {
	return &TrackHandler{
		entitySource: entitySource,
		trackerCfg:   trackerCfg,
		rankUC:       rankUC,
		logger:       logger,
	}
}

// frameSender delivers server frames to the client.
type frameSender interface {
	send(frame dto.TrackServerFrame) error
}

// wsWriter serialises frame writes. The tracker notifies discoveries from
// inside Push while the read loop also writes update frames, so writes from
// both paths go through one mutex.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(frame dto.TrackServerFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(frame)
}

// wsNotifier pushes discovery frames to the client as they happen.
type wsNotifier struct {
	writer frameSender
	rankUC *usecase.RankUseCase
	logger *zap.Logger
}

func (n *wsNotifier) EntityDiscovered(entity domain.Entity, distanceKm float64) {
	frame := dto.TrackServerFrame{
		Type:       "discovery",
		DistanceKm: distanceKm,
		Entity: &dto.NearbyEntityDTO{
			ID:         entity.ID,
			Name:       entity.Name,
			Lat:        entity.Lat,
			Lon:        entity.Lon,
			Categories: entity.Categories,
			DistanceKm: distanceKm,
			EtaMinutes: n.rankUC.EstimateArrivalMinutes(distanceKm, nil),
		},
	}
	if err := n.writer.send(frame); err != nil {
		n.logger.Warn("Failed to push discovery frame", zap.Error(err))
	}
}

// Handle is the websocket connection loop for GET /ws/track.
func (h *TrackHandler) Handle(c *websocket.Conn) {
	writer := &wsWriter{conn: c}

	entities, err := h.entitySource.List(context.Background())
	if err != nil {
		h.logger.Error("Failed to load entities for tracking session", zap.Error(err))
		h.sendError(writer, errors.ErrInternalServer)
		return
	}

	cfg := h.trackerCfg
	cfg.OnError = func(err error) {
		h.sendAppError(writer, err)
	}

	source := tracker.NewPushSource()
	notifier := &wsNotifier{writer: writer, rankUC: h.rankUC, logger: h.logger}
	tr := tracker.New(cfg, source, notifier, h.logger)
	tr.SetEntities(entities)

	if err := tr.Start(); err != nil {
		h.sendAppError(writer, err)
		return
	}
	defer tr.Stop()

	h.logger.Info("Tracking session started",
		zap.String("session_id", tr.SessionID()),
		zap.String("remote", c.RemoteAddr().String()),
	)

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("Tracking connection closed", zap.Error(err))
			return
		}

		var msg dto.TrackClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(writer, errors.ErrInvalidRequest)
			continue
		}

		switch msg.Type {
		case "position":
			if tr.State() == tracker.StateIdle {
				h.sendError(writer, errors.ErrTrackerNotTracking)
				continue
			}
			source.Push(msg.Reading(time.Now()))
			h.sendUpdate(writer, tr)

		case "reset":
			if err := h.handleReset(writer, tr); err != nil {
				return
			}

		case "stop":
			return

		default:
			h.sendError(writer, errors.ErrInvalidRequest)
		}
	}
}

// handleReset clears the session's discovery record so previously discovered
// entities fire again. A live tracker keeps its subscription; one that went
// idle after an acquisition failure is started again.
func (h *TrackHandler) handleReset(writer frameSender, tr *tracker.Tracker) error {
	tr.Reset()
	if tr.State() != tracker.StateIdle {
		return nil
	}
	if err := tr.Start(); err != nil {
		h.sendAppError(writer, err)
		return err
	}
	return nil
}

func (h *TrackHandler) sendUpdate(writer frameSender, tr *tracker.Tracker) {
	nearby := tr.Nearby()
	out := make([]dto.NearbyEntityDTO, 0, len(nearby))
	for _, r := range nearby {
		out = append(out, dto.NearbyEntityDTO{
			ID:         r.Entity.ID,
			Name:       r.Entity.Name,
			Lat:        r.Entity.Lat,
			Lon:        r.Entity.Lon,
			Categories: r.Entity.Categories,
			DistanceKm: r.DistanceKm,
			EtaMinutes: h.rankUC.EstimateArrivalMinutes(r.DistanceKm, nil),
		})
	}

	stats := tr.Stats()
	frame := dto.TrackServerFrame{
		Type:      "update",
		Nearby:    out,
		Predicted: tr.Predicted(),
		Stats:     &stats,
	}
	if err := writer.send(frame); err != nil {
		h.logger.Warn("Failed to push update frame", zap.Error(err))
	}
}

func (h *TrackHandler) sendAppError(writer frameSender, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		h.sendError(writer, appErr)
		return
	}
	h.sendError(writer, errors.ErrInternalServer)
}

func (h *TrackHandler) sendError(writer frameSender, appErr *errors.AppError) {
	frame := dto.TrackServerFrame{
		Type:    "error",
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	if err := writer.send(frame); err != nil {
		h.logger.Warn("Failed to push error frame", zap.Error(err))
	}
}
