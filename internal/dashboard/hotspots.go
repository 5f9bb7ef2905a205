package dashboard

import (
	"sort"

	"SecuroHub/internal/models"
	"SecuroHub/pkg/geo"
)

// Default map viewport over San Francisco.
var (
	DefaultCenter = geo.Point{Lat: 37.77, Lng: -122.42}
	DefaultZoom   = 12
)

// HotspotRadiusKm is the distance from a cluster seed within which alerts
// join its hotspot.
const HotspotRadiusKm = 0.5

type Marker struct {
	ID          string    `json:"id"`
	Position    geo.Point `json:"position"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	Shared      bool      `json:"shared"`
	Tooltip     string    `json:"tooltip"`
}

type Hotspot struct {
	Center   geo.Point `json:"center"`
	Count    int       `json:"count"`
	AlertIDs []string  `json:"alertIds"`
}

type MapView struct {
	Center   geo.Point `json:"center"`
	Zoom     int       `json:"zoom"`
	Markers  []Marker  `json:"markers"`
	Hotspots []Hotspot `json:"hotspots"`
}

func markerFor(a models.Alert) Marker {
	return Marker{
		ID:          a.ID,
		Position:    a.Point(),
		Description: a.Description,
		Location:    a.Location,
		Status:      a.Status,
		Shared:      a.Shared,
		Tooltip:     a.Description + " (" + a.Status + ")",
	}
}

// Cluster groups alerts greedily: the oldest unassigned alert seeds a
// hotspot that takes every unassigned alert within radiusKm of it. Hotspots
// are returned largest first.
func Cluster(alerts []models.Alert, radiusKm float64) []Hotspot {
	ordered := append([]models.Alert(nil), alerts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	assigned := make([]bool, len(ordered))
	hotspots := make([]Hotspot, 0)
	for i, seed := range ordered {
		if assigned[i] {
			continue
		}
		var points []geo.Point
		var ids []string
		for j := i; j < len(ordered); j++ {
			if assigned[j] || !geo.IsWithinRadiusKm(seed.Point(), ordered[j].Point(), radiusKm) {
				continue
			}
			assigned[j] = true
			points = append(points, ordered[j].Point())
			ids = append(ids, ordered[j].ID)
		}
		hotspots = append(hotspots, Hotspot{Center: geo.Centroid(points), Count: len(ids), AlertIDs: ids})
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].Count > hotspots[j].Count
	})
	return hotspots
}
