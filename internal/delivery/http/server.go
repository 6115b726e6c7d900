package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/config"
	"github.com/discovery-engine/internal/delivery/http/handler"
	"github.com/discovery-engine/internal/delivery/http/middleware"
)

// Server is the Fiber HTTP server hosting the discovery API.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	mapHandler    *handler.MapHandler
	entityHandler *handler.EntityHandler
	trackHandler  *handler.TrackHandler
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	mapHandler *handler.MapHandler,
	entityHandler *handler.EntityHandler,
	trackHandler *handler.TrackHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Discovery Engine",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:           app,
		config:        cfg,
		logger:        logger,
		mapHandler:    mapHandler,
		entityHandler: entityHandler,
		trackHandler:  trackHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Entity routes. /entities/nearby must come before /entities/:id.
	api.Get("/entities", s.entityHandler.List)
	api.Get("/entities/nearby", s.entityHandler.Nearby)
	api.Get("/entities/:id", s.entityHandler.GetByID)

	// Map routes
	api.Get("/map/clusters", s.mapHandler.GetClusters)

	// Live tracking over websocket
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/track", websocket.New(s.trackHandler.Handle))
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
