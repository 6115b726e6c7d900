package dto

// ClustersRequest is the query for the viewport clustering endpoint.
// West > East is allowed and means the viewport wraps the antimeridian.
type ClustersRequest struct {
	West  float64 `query:"west" validate:"min=-180,max=180"`
	South float64 `query:"south" validate:"min=-90,max=90"`
	East  float64 `query:"east" validate:"min=-180,max=180"`
	North float64 `query:"north" validate:"min=-90,max=90"`
	Zoom  float64 `query:"zoom" validate:"min=0,max=22"`
}

// ClusterDTO is one rendered marker: a bare entity when Count == 1, a
// cluster bubble otherwise. ExpansionZoom is set only for real clusters.
type ClusterDTO struct {
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	Count         int      `json:"count"`
	MemberIDs     []string `json:"member_ids"`
	EntityID      string   `json:"entity_id,omitempty"`
	Name          string   `json:"name,omitempty"`
	ExpansionZoom *float64 `json:"expansion_zoom,omitempty"`
}

type ClustersResponse struct {
	Clusters []ClusterDTO `json:"clusters"`
	Visible  int          `json:"visible"`
	Zoom     float64      `json:"zoom"`
}
