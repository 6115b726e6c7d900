package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/pkg/geo"
)

var (
	london    = domain.Point{Lat: 51.5074, Lon: -0.1278}
	edinburgh = domain.Point{Lat: 55.9533, Lon: -3.1883}
)

func TestDistance(t *testing.T) {
	t.Run("known distance London-Edinburgh", func(t *testing.T) {
		d := geo.Distance(london, edinburgh)
		// ~534 km great-circle
		assert.InDelta(t, 534.0, d, 5.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := []struct{ a, b domain.Point }{
			{london, edinburgh},
			{domain.Point{Lat: -33.86, Lon: 151.2}, domain.Point{Lat: 35.68, Lon: 139.69}},
			{domain.Point{Lat: 0.01, Lon: -179.99}, domain.Point{Lat: 0.01, Lon: 179.99}},
		}
		for _, p := range pairs {
			assert.InDelta(t, geo.Distance(p.a, p.b), geo.Distance(p.b, p.a), 1e-9)
		}
	})

	t.Run("zero for identical points", func(t *testing.T) {
		assert.InDelta(t, 0, geo.Distance(london, london), 1e-9)
	})

	t.Run("non-negative", func(t *testing.T) {
		assert.GreaterOrEqual(t, geo.Distance(london, edinburgh), 0.0)
	})
}

func TestBearing(t *testing.T) {
	t.Run("due north", func(t *testing.T) {
		b := geo.Bearing(domain.Point{Lat: 50, Lon: 0}, domain.Point{Lat: 51, Lon: 0})
		assert.InDelta(t, 0, b, 1e-9)
	})

	t.Run("due south", func(t *testing.T) {
		b := geo.Bearing(domain.Point{Lat: 51, Lon: 0}, domain.Point{Lat: 50, Lon: 0})
		assert.InDelta(t, 180, b, 1e-9)
	})

	t.Run("roughly east on the equator", func(t *testing.T) {
		b := geo.Bearing(domain.Point{Lat: 0.0001, Lon: 0}, domain.Point{Lat: 0.0001, Lon: 1})
		assert.InDelta(t, 90, b, 0.1)
	})

	t.Run("range is [0,360)", func(t *testing.T) {
		b := geo.Bearing(domain.Point{Lat: 51, Lon: 0}, domain.Point{Lat: 50, Lon: -1})
		assert.GreaterOrEqual(t, b, 0.0)
		assert.Less(t, b, 360.0)
	})
}

func TestContains(t *testing.T) {
	vp := domain.Viewport{West: -1, South: 51, East: 1, North: 52}

	t.Run("inside", func(t *testing.T) {
		assert.True(t, geo.Contains(vp, domain.Point{Lat: 51.5, Lon: 0.2}))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		assert.True(t, geo.Contains(vp, domain.Point{Lat: 51, Lon: -1}))
		assert.True(t, geo.Contains(vp, domain.Point{Lat: 52, Lon: 1}))
	})

	t.Run("outside each edge", func(t *testing.T) {
		assert.False(t, geo.Contains(vp, domain.Point{Lat: 50.9, Lon: 0}))
		assert.False(t, geo.Contains(vp, domain.Point{Lat: 52.1, Lon: 0}))
		assert.False(t, geo.Contains(vp, domain.Point{Lat: 51.5, Lon: -1.1}))
		assert.False(t, geo.Contains(vp, domain.Point{Lat: 51.5, Lon: 1.1}))
	})

	t.Run("antimeridian wrap", func(t *testing.T) {
		wrapped := domain.Viewport{West: 179, South: -10, East: -179, North: 10}
		assert.True(t, geo.Contains(wrapped, domain.Point{Lat: 0, Lon: 179.5}))
		assert.True(t, geo.Contains(wrapped, domain.Point{Lat: 0, Lon: -179.5}))
		assert.False(t, geo.Contains(wrapped, domain.Point{Lat: 0, Lon: 0.0001}))
	})

	t.Run("inverted south/north is normalized", func(t *testing.T) {
		inverted := domain.Viewport{West: -1, South: 52, East: 1, North: 51}
		assert.True(t, geo.Contains(inverted, domain.Point{Lat: 51.5, Lon: 0}))
	})
}

func TestIsValid(t *testing.T) {
	valid := []domain.Point{
		london,
		{Lat: -90, Lon: 0.1},
		{Lat: 90, Lon: -180},
		{Lat: 0, Lon: 1},
	}
	for _, p := range valid {
		assert.True(t, geo.IsValid(p), "expected valid: %+v", p)
	}

	invalid := []domain.Point{
		{Lat: 0, Lon: 0}, // missing-data sentinel
		{Lat: 91, Lon: 0},
		{Lat: -91, Lon: 0},
		{Lat: 0, Lon: 181},
		{Lat: 0, Lon: -181},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(1)},
	}
	for _, p := range invalid {
		assert.False(t, geo.IsValid(p), "expected invalid: %+v", p)
	}
}

func TestDestination(t *testing.T) {
	t.Run("north adds latitude only", func(t *testing.T) {
		p := geo.Destination(london, 0, kmPerDegreeApprox())
		assert.InDelta(t, london.Lat+1, p.Lat, 0.01)
		assert.InDelta(t, london.Lon, p.Lon, 1e-9)
	})

	t.Run("distance is approximately preserved", func(t *testing.T) {
		p := geo.Destination(london, 45, 2.0)
		assert.InDelta(t, 2.0, geo.Distance(london, p), 0.05)
	})

	t.Run("longitude wraps at the antimeridian", func(t *testing.T) {
		start := domain.Point{Lat: 0, Lon: 179.999}
		p := geo.Destination(start, 90, 50)
		assert.LessOrEqual(t, p.Lon, 180.0)
		assert.GreaterOrEqual(t, p.Lon, -180.0)
	})
}

func kmPerDegreeApprox() float64 { return 111.32 }
