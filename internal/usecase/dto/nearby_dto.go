package dto

// NearbyRequest is the query for distance-ranked discovery around a point.
type NearbyRequest struct {
	Lat      float64  `query:"lat" validate:"min=-90,max=90"`
	Lon      float64  `query:"lon" validate:"min=-180,max=180"`
	RadiusKm float64  `query:"radius_km" validate:"omitempty,gt=0,max=100"`
	SpeedMps *float64 `query:"speed_mps" validate:"omitempty,gte=0"`
	Limit    int      `query:"limit" validate:"omitempty,gt=0,max=500"`
}

// NearbyEntityDTO is an entity annotated with distance and estimated time
// of arrival from the requested origin.
type NearbyEntityDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Categories []string `json:"categories,omitempty"`
	DistanceKm float64  `json:"distance_km"`
	EtaMinutes float64  `json:"eta_minutes"`
}

type NearbyResponse struct {
	Entities []NearbyEntityDTO `json:"entities"`
	Total    int               `json:"total"`
}
