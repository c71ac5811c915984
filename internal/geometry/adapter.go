// Package geometry converts between GeoJSON shapes supplied by callers and
// the esri geometry format expected by the feature services.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kmurflow98/landsage-app/internal/arcgis"
)

// ErrInvalidGeometry classifies malformed caller input: a missing geometry,
// a type other than Polygon/MultiPolygon, an empty ring list, or an outer
// ring too short to close.
var ErrInvalidGeometry = errors.New("invalid geometry")

type geoJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometry    *geoJSON        `json:"geometry"`
}

// ToQueryGeometry translates a GeoJSON Polygon, MultiPolygon, or a Feature
// wrapping one of those into an esri polygon geometry tagged WGS84. Ring
// order and point counts are preserved exactly; no reprojection happens.
// For a MultiPolygon only the first member polygon's rings are used.
func ToQueryGeometry(raw json.RawMessage) (arcgis.Geometry, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return arcgis.Geometry{}, fmt.Errorf("%w: geometry is required", ErrInvalidGeometry)
	}

	var g geoJSON
	if err := json.Unmarshal(raw, &g); err != nil {
		return arcgis.Geometry{}, fmt.Errorf("%w: parse geojson: %v", ErrInvalidGeometry, err)
	}

	// unwrap a feature before inspecting the geometry type
	if g.Type == "Feature" {
		if g.Geometry == nil {
			return arcgis.Geometry{}, fmt.Errorf("%w: feature has no geometry", ErrInvalidGeometry)
		}
		g = *g.Geometry
	}

	var rings [][][]float64
	switch g.Type {
	case "Polygon":
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return arcgis.Geometry{}, fmt.Errorf("%w: parse polygon coordinates: %v", ErrInvalidGeometry, err)
		}
	case "MultiPolygon":
		var multi [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &multi); err != nil {
			return arcgis.Geometry{}, fmt.Errorf("%w: parse multipolygon coordinates: %v", ErrInvalidGeometry, err)
		}
		if len(multi) == 0 {
			return arcgis.Geometry{}, fmt.Errorf("%w: multipolygon is empty", ErrInvalidGeometry)
		}
		rings = multi[0]
	default:
		return arcgis.Geometry{}, fmt.Errorf("%w: unsupported type %q (want Polygon or MultiPolygon)", ErrInvalidGeometry, g.Type)
	}

	if len(rings) == 0 {
		return arcgis.Geometry{}, fmt.Errorf("%w: geometry has no rings", ErrInvalidGeometry)
	}
	// a closed ring needs four positions at minimum
	if len(rings[0]) < 4 {
		return arcgis.Geometry{}, fmt.Errorf("%w: outer ring has %d positions, need at least 4", ErrInvalidGeometry, len(rings[0]))
	}

	return arcgis.Geometry{
		Rings:            rings,
		SpatialReference: &arcgis.SpatialReference{WKID: arcgis.WGS84},
	}, nil
}
