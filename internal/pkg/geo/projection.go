package geo

import (
	"math"

	"github.com/discovery-engine/internal/domain"
)

// Web-mercator latitude clamp; poles project to infinity.
const maxMercatorLat = 85.05112878

// WebMercator projects coordinates into screen-space pixels using the
// standard web-mercator tiling scheme: the world is TileSize pixels wide at
// zoom 0 and doubles per zoom level.
type WebMercator struct {
	TileSize float64
}

// NewWebMercator returns a projector with the conventional 256px tile size.
func NewWebMercator() WebMercator {
	return WebMercator{TileSize: 256}
}

// Project returns the pixel position of p at the given zoom.
func (m WebMercator) Project(p domain.Point, zoom float64) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.Lat))
	lon := math.Max(-180, math.Min(180, p.Lon))

	latRad := toRad(lat)
	scale := m.TileSize * math.Exp2(zoom)

	x = (lon + 180) / 360 * scale
	y = (0.5 - math.Log(math.Tan(latRad/2+math.Pi/4))/(2*math.Pi)) * scale
	return x, y
}
