package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/pkg/geo"
	"github.com/discovery-engine/internal/repository/memory"
	"github.com/discovery-engine/internal/usecase"
)

func testApp() *fiber.App {
	logger := zap.NewNop()
	entitySource := memory.NewEntityRepository([]domain.Entity{
		{ID: "f1", Name: "Hilltop Farm", Lat: 51.50, Lon: -0.10, Categories: []string{"dairy"}},
		{ID: "f2", Name: "Riverside Farm", Lat: 51.51, Lon: -0.12},
		{ID: "far", Name: "Northern Croft", Lat: 57.48, Lon: -4.22},
		{ID: "broken", Name: "Unmapped Farm"},
	})

	rankUC := usecase.NewRankUseCase(logger)
	viewportUC := usecase.NewViewportUseCase(logger)
	qualityUC := usecase.NewQualityUseCase(nil, logger)
	clusterUC := usecase.NewClusterUseCase(usecase.DefaultClusterConfig(), geo.NewWebMercator(), logger)

	mapH := NewMapHandler(entitySource, viewportUC, clusterUC, qualityUC, nil, 0, logger)
	entityH := NewEntityHandler(entitySource, rankUC, qualityUC, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/entities", entityH.List)
	api.Get("/entities/nearby", entityH.Nearby)
	api.Get("/entities/:id", entityH.GetByID)
	api.Get("/map/clusters", mapH.GetClusters)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestEntityHandler_List(t *testing.T) {
	app := testApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/entities", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp.Body)
	assert.Len(t, out["data"], 4)
}

func TestEntityHandler_GetByID(t *testing.T) {
	app := testApp()

	t.Run("found", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/entities/f1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := decode(t, resp.Body)
		data := out["data"].(map[string]interface{})
		assert.Equal(t, "Hilltop Farm", data["name"])
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/entities/nope", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestEntityHandler_Nearby(t *testing.T) {
	app := testApp()

	t.Run("ranked ascending with ETA", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/entities/nearby?lat=51.50&lon=-0.10", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := decode(t, resp.Body)
		data := out["data"].(map[string]interface{})
		entities := data["entities"].([]interface{})
		require.Len(t, entities, 3) // unlocatable excluded

		first := entities[0].(map[string]interface{})
		assert.Equal(t, "f1", first["id"])
		assert.Equal(t, 0.0, first["distance_km"])

		prev := -1.0
		for _, raw := range entities {
			e := raw.(map[string]interface{})
			d := e["distance_km"].(float64)
			assert.GreaterOrEqual(t, d, prev)
			prev = d
		}
	})

	t.Run("radius bounds the result", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/entities/nearby?lat=51.50&lon=-0.10&radius_km=5", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := decode(t, resp.Body)
		data := out["data"].(map[string]interface{})
		assert.Len(t, data["entities"], 2)
	})

	t.Run("invalid latitude rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/entities/nearby?lat=95&lon=-0.10", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("negative radius rejected with radius code", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/entities/nearby?lat=51.50&lon=-0.10&radius_km=-1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		out := decode(t, resp.Body)
		errObj := out["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_RADIUS", errObj["code"])
	})
}

func TestMapHandler_GetClusters(t *testing.T) {
	app := testApp()

	t.Run("merges nearby entities at low zoom", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/map/clusters?west=-1&south=51&east=1&north=52&zoom=10", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := decode(t, resp.Body)
		data := out["data"].(map[string]interface{})
		clusters := data["clusters"].([]interface{})
		require.Len(t, clusters, 1)

		c := clusters[0].(map[string]interface{})
		assert.Equal(t, 2.0, c["count"])
		assert.NotNil(t, c["expansion_zoom"])
		assert.Equal(t, 2.0, data["visible"].(float64))
	})

	t.Run("singletons carry the entity identity", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/map/clusters?west=-1&south=51&east=1&north=52&zoom=16", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := decode(t, resp.Body)
		data := out["data"].(map[string]interface{})
		clusters := data["clusters"].([]interface{})
		require.Len(t, clusters, 2)

		for _, raw := range clusters {
			c := raw.(map[string]interface{})
			assert.Equal(t, 1.0, c["count"])
			assert.NotEmpty(t, c["entity_id"])
			assert.NotEmpty(t, c["name"])
			assert.Nil(t, c["expansion_zoom"])
		}
	})

	t.Run("invalid viewport rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/map/clusters?west=-200&south=51&east=1&north=52&zoom=10", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("out-of-range zoom rejected with zoom code", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/map/clusters?west=-1&south=51&east=1&north=52&zoom=25", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		out := decode(t, resp.Body)
		errObj := out["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_ZOOM", errObj["code"])
	})
}
